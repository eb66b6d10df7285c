// Package usecase exposes the realtime database wrapper.
package usecase

import (
	"context"

	"firebase-kit/internal/realtime/domain/repository"
	"firebase-kit/internal/realtime/tree"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
	"firebase-kit/internal/shared/outcome"
)

const eventSource = "realtime"

// Database wraps a repository.Database
type Database struct {
	db  repository.Database
	log logger.Logger
	bus eventbus.Publisher
}

// NewDatabase creates the wrapper
func NewDatabase(db repository.Database, log logger.Logger, bus eventbus.Publisher) *Database {
	if log == nil {
		log = logger.NopLogger{}
	}
	if bus == nil {
		bus = eventbus.NopPublisher{}
	}
	return &Database{db: db, log: log.WithComponent("realtime"), bus: bus}
}

// Set replaces the value at path
func (d *Database) Set(ctx context.Context, path string, value any) outcome.Outcome[outcome.None] {
	const op = "realtime.set"
	return outcome.CaptureNone(op, func() error {
		if err := d.db.Set(ctx, path, value); err != nil {
			d.logFor(ctx, op, path).Errorf("Failed to set value: %v", err)
			return err
		}
		d.publish(ctx, eventbus.EventTypeValueSet, path, map[string]any{"value": value})
		return nil
	})
}

// Get reads the value at path; an absent path succeeds with nil
func (d *Database) Get(ctx context.Context, path string) outcome.Outcome[any] {
	const op = "realtime.get"
	return outcome.Capture(op, func() (any, error) {
		v, err := d.db.Get(ctx, path)
		if err != nil {
			d.logFor(ctx, op, path).Debugf("Read failed: %v", err)
			return nil, err
		}
		return v, nil
	})
}

// Update merges patch into the value at path
func (d *Database) Update(ctx context.Context, path string, patch map[string]any) outcome.Outcome[outcome.None] {
	const op = "realtime.update"
	return outcome.CaptureNone(op, func() error {
		if err := d.db.Update(ctx, path, patch); err != nil {
			d.logFor(ctx, op, path).Errorf("Failed to update value: %v", err)
			return err
		}
		d.publish(ctx, eventbus.EventTypeValueUpdated, path, map[string]any{"patch": patch})
		return nil
	})
}

// Delete removes the value at path
func (d *Database) Delete(ctx context.Context, path string) outcome.Outcome[outcome.None] {
	const op = "realtime.delete"
	return outcome.CaptureNone(op, func() error {
		if err := d.db.Delete(ctx, path); err != nil {
			d.logFor(ctx, op, path).Errorf("Failed to delete value: %v", err)
			return err
		}
		d.publish(ctx, eventbus.EventTypeValueDeleted, path, nil)
		return nil
	})
}

// Push appends value under a generated key and returns the key
func (d *Database) Push(ctx context.Context, path string, value any) outcome.Outcome[string] {
	const op = "realtime.push"
	return outcome.Capture(op, func() (string, error) {
		key, err := d.db.Push(ctx, path, value)
		if err != nil {
			d.logFor(ctx, op, path).Errorf("Failed to push value: %v", err)
			return "", err
		}
		d.publish(ctx, eventbus.EventTypeValuePushed, canonical(path)+"/"+key, map[string]any{"key": key, "value": value})
		return key, nil
	})
}

func (d *Database) logFor(ctx context.Context, op, path string) logger.Logger {
	return d.log.WithContext(ctx).WithFields(map[string]interface{}{
		"operation": op,
		"path":      path,
	})
}

func (d *Database) publish(ctx context.Context, eventType, path string, data map[string]any) {
	path = canonical(path)
	if err := d.bus.Publish(ctx, eventbus.NewEvent(eventType, eventSource, path, data)); err != nil {
		d.log.WithContext(ctx).Warnf("Failed to publish %s for %s: %v", eventType, path, err)
	}
}

// canonical strips redundant slashes so listeners can match by prefix. It
// runs after a successful write, so the path is already known to be valid.
func canonical(path string) string {
	segments, _ := tree.Split(path)
	return tree.Join(segments)
}
