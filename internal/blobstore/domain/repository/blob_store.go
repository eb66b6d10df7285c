// Package repository declares the blob store collaborator.
package repository

import (
	"context"
	"io"
	"time"

	"firebase-kit/internal/blobstore/domain/model"
)

// BlobStore keeps named binary objects. Missing objects are reported with
// errors matching apperrors.ErrObjectNotFound.
type BlobStore interface {
	// Upload stores the content of r under name, replacing any existing object.
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (*model.Object, error)
	Download(ctx context.Context, name string) (*model.Blob, error)
	// DownloadURL returns a URL that fetches the object without credentials
	// until ttl elapses.
	DownloadURL(ctx context.Context, name string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, name string) error
}
