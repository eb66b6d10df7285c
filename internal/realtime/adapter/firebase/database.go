// Package firebase backs the realtime wrapper with a Firebase Realtime
// Database.
package firebase

import (
	"context"

	"firebase.google.com/go/v4/db"

	"firebase-kit/internal/realtime/tree"
)

// Database implements repository.Database on a db.Client
type Database struct {
	client *db.Client
}

// NewDatabase wraps client
func NewDatabase(client *db.Client) *Database {
	return &Database{client: client}
}

// ref validates path with the local rules before handing it to the SDK,
// which would otherwise silently address a different node.
func (d *Database) ref(path string) (*db.Ref, error) {
	segments, err := tree.Split(path)
	if err != nil {
		return nil, err
	}
	return d.client.NewRef("/" + tree.Join(segments)), nil
}

func (d *Database) Set(ctx context.Context, path string, value any) error {
	ref, err := d.ref(path)
	if err != nil {
		return err
	}
	if value == nil {
		return ref.Delete(ctx)
	}
	return ref.Set(ctx, value)
}

func (d *Database) Get(ctx context.Context, path string) (any, error) {
	ref, err := d.ref(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := ref.Get(ctx, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Database) Update(ctx context.Context, path string, patch map[string]any) error {
	ref, err := d.ref(path)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}
	return ref.Update(ctx, patch)
}

func (d *Database) Delete(ctx context.Context, path string) error {
	ref, err := d.ref(path)
	if err != nil {
		return err
	}
	return ref.Delete(ctx)
}

func (d *Database) Push(ctx context.Context, path string, value any) (string, error) {
	ref, err := d.ref(path)
	if err != nil {
		return "", err
	}
	child, err := ref.Push(ctx, value)
	if err != nil {
		return "", err
	}
	return child.Key, nil
}
