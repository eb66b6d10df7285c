// Package redis stores the realtime tree in Redis. Each top-level child is
// one JSON string key; writes run under WATCH/MULTI on the keys they touch
// and retry when another writer got there first.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"firebase-kit/internal/realtime/tree"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/logger"
)

const (
	// DefaultPrefix namespaces the tree's keys
	DefaultPrefix = "rtdb:"

	maxTxRetries = 32
	scanCount    = 100
)

// ErrTooMuchContention is returned when optimistic writes keep conflicting
var ErrTooMuchContention = errors.New("realtime write conflicted too many times")

// Database implements repository.Database on a Redis client
type Database struct {
	client redis.UniversalClient
	prefix string
	log    logger.Logger
}

// NewDatabase creates a Redis backed tree. An empty prefix uses DefaultPrefix.
func NewDatabase(client redis.UniversalClient, prefix string, log logger.Logger) *Database {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Database{client: client, prefix: prefix, log: log.WithComponent("realtime.redis")}
}

func (d *Database) key(top string) string {
	return d.prefix + top
}

func (d *Database) Get(ctx context.Context, path string) (any, error) {
	segments, err := tree.Split(path)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return d.getRoot(ctx)
	}

	sub, err := d.read(ctx, d.client, segments[0])
	if err != nil {
		return nil, err
	}
	return tree.Get(sub, segments[1:]), nil
}

func (d *Database) getRoot(ctx context.Context) (any, error) {
	tops, err := d.topKeys(ctx)
	if err != nil {
		return nil, err
	}
	var root any
	for _, top := range tops {
		sub, err := d.read(ctx, d.client, top)
		if err != nil {
			return nil, err
		}
		root = tree.Set(root, []string{top}, sub)
	}
	return root, nil
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

	if len(segments) == 0 {
		tops, err := d.topKeys(ctx)
		if err != nil {
			return err
		}
		if m, ok := normalized.(map[string]any); ok {
			for k := range m {
				tops = append(tops, k)
			}
		} else if normalized != nil {
			return fmt.Errorf("root value must be an object, got %T", normalized)
		}
		return d.mutate(ctx, tops, func(current map[string]any) error {
			for top := range current {
				current[top] = tree.Get(normalized, []string{top})
			}
			return nil
		})
	}

	top := segments[0]
	return d.mutate(ctx, []string{top}, func(current map[string]any) error {
		current[top] = tree.Set(current[top], segments[1:], normalized)
		return nil
	})
}

func (d *Database) Update(ctx context.Context, path string, patch map[string]any) error {
	segments, err := tree.Split(path)
	if err != nil {
		return err
	}

	var tops []string
	if len(segments) > 0 {
		tops = []string{segments[0]}
	} else {
		for k := range patch {
			rel, err := tree.Split(k)
			if err != nil {
				return err
			}
			if len(rel) == 0 {
				return fmt.Errorf("%w: empty update key", apperrors.ErrInvalidPath)
			}
			tops = append(tops, rel[0])
		}
	}

	return d.mutate(ctx, tops, func(current map[string]any) error {
		var root any = map[string]any{}
		for top, sub := range current {
			root = tree.Set(root, []string{top}, sub)
		}
		updated, err := tree.Update(root, segments, patch)
		if err != nil {
			return err
		}
		for top := range current {
			current[top] = tree.Get(updated, []string{top})
		}
		return nil
	})
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

// mutate watches the keys of tops, hands their current subtrees to fn and
// writes back whatever fn leaves in the map. A nil subtree deletes its key.
func (d *Database) mutate(ctx context.Context, tops []string, fn func(current map[string]any) error) error {
	seen := make(map[string]bool, len(tops))
	keys := make([]string, 0, len(tops))
	unique := tops[:0:0]
	for _, top := range tops {
		if !seen[top] {
			seen[top] = true
			unique = append(unique, top)
			keys = append(keys, d.key(top))
		}
	}
	if len(keys) == 0 {
		return nil
	}

	txf := func(tx *redis.Tx) error {
		current := make(map[string]any, len(unique))
		for _, top := range unique {
			sub, err := d.read(ctx, tx, top)
			if err != nil {
				return err
			}
			current[top] = sub
		}
		if err := fn(current); err != nil {
			return err
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for top, sub := range current {
				if sub == nil {
					pipe.Del(ctx, d.key(top))
					continue
				}
				raw, err := json.Marshal(sub)
				if err != nil {
					return err
				}
				pipe.Set(ctx, d.key(top), raw, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := d.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		d.log.Debugf("Optimistic write on %v conflicted, retrying", unique)
	}
	return ErrTooMuchContention
}

// getter is satisfied by both the client and a watched transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (d *Database) read(ctx context.Context, c getter, top string) (any, error) {
	raw, err := c.Get(ctx, d.key(top)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("corrupt value at %s: %w", d.key(top), err)
	}
	return v, nil
}

func (d *Database) topKeys(ctx context.Context) ([]string, error) {
	var tops []string
	iter := d.client.Scan(ctx, 0, d.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		tops = append(tops, strings.TrimPrefix(iter.Val(), d.prefix))
	}
	return tops, iter.Err()
}
