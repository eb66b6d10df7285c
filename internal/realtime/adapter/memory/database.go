// Package memory is an in-process realtime database.
package memory

import (
	"context"
	"sync"

	"firebase-kit/internal/realtime/tree"
)

// Database holds the whole tree under one lock
type Database struct {
	mu   sync.RWMutex
	root any
}

// NewDatabase creates an empty tree
func NewDatabase() *Database {
	return &Database{}
}

func (d *Database) Set(ctx context.Context, path string, value any) error {
	segments, err := tree.Split(path)
	if err != nil {
		return err
	}
	normalized, err := tree.Normalize(value)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = tree.Set(d.root, segments, normalized)
	return nil
}

func (d *Database) Get(ctx context.Context, path string) (any, error) {
	segments, err := tree.Split(path)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	return tree.Copy(tree.Get(d.root, segments)), nil
}

func (d *Database) Update(ctx context.Context, path string, patch map[string]any) error {
	segments, err := tree.Split(path)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Apply to a copy so a rejected key leaves the tree untouched
	updated, err := tree.Update(tree.Copy(d.root), segments, patch)
	if err != nil {
		return err
	}
	d.root = updated
	return nil
}

func (d *Database) Delete(ctx context.Context, path string) error {
	return d.Set(ctx, path, nil)
}

func (d *Database) Push(ctx context.Context, path string, value any) (string, error) {
	key, err := tree.NewPushKey()
	if err != nil {
		return "", err
	}
	segments, err := tree.Split(path)
	if err != nil {
		return "", err
	}
	if err := d.Set(ctx, tree.Join(append(segments, key)), value); err != nil {
		return "", err
	}
	return key, nil
}
