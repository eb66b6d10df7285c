// Package firebase stores blobs in the Cloud Storage bucket of a Firebase
// project.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"

	"firebase-kit/internal/blobstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

// Store wraps a bucket handle, usually the project's default bucket
type Store struct {
	bucket *storage.BucketHandle
}

// NewStore creates a store over bucket
func NewStore(bucket *storage.BucketHandle) *Store {
	return &Store{bucket: bucket}
}

func (s *Store) Upload(ctx context.Context, name string, r io.Reader, contentType string) (*model.Object, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = model.DefaultContentType
	}

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return nil, mapError(name, err)
	}

	return toObject(w.Attrs()), nil
}

func (s *Store) Download(ctx context.Context, name string) (*model.Blob, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, mapError(name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", name, err)
	}
	return &model.Blob{
		Object: model.Object{
			Name:        name,
			ContentType: r.Attrs.ContentType,
			Size:        r.Attrs.Size,
			Updated:     r.Attrs.LastModified.UTC(),
		},
		Data: data,
	}, nil
}

// DownloadURL signs a V4 GET URL with the credentials the bucket was opened
// with. The object must exist.
func (s *Store) DownloadURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", apperrors.NewValidationError("url ttl must be positive").WithCause(apperrors.ErrInvalidInput)
	}
	if _, err := s.bucket.Object(name).Attrs(ctx); err != nil {
		return "", mapError(name, err)
	}

	url, err := s.bucket.SignedURL(name, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", name, err)
	}
	return url, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.bucket.Object(name).Delete(ctx); err != nil {
		return mapError(name, err)
	}
	return nil
}

func toObject(attrs *storage.ObjectAttrs) *model.Object {
	if attrs == nil {
		return &model.Object{}
	}
	return &model.Object{
		Name:        attrs.Name,
		ContentType: attrs.ContentType,
		Size:        attrs.Size,
		Updated:     attrs.Updated.UTC(),
	}
}

func mapError(name string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return apperrors.NewNotFoundError("object").WithDetail("name", name).WithCause(apperrors.ErrObjectNotFound)
	}
	return err
}
