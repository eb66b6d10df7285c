// Package repository declares the realtime database collaborator.
package repository

import "context"

// Database is a JSON tree addressed by slash-separated paths. Reading an
// absent path yields nil rather than an error. Writing nil, or a value that
// normalizes to nothing, deletes.
type Database interface {
	Set(ctx context.Context, path string, value any) error
	Get(ctx context.Context, path string) (any, error)
	// Update writes each patch entry relative to path; keys may be nested
	// paths and nil values delete.
	Update(ctx context.Context, path string, patch map[string]any) error
	Delete(ctx context.Context, path string) error
	// Push stores value under a new time-ordered child key and returns it.
	Push(ctx context.Context, path string, value any) (string, error)
}
