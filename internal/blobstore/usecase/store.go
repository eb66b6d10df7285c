// Package usecase exposes the blob store wrapper.
package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"firebase-kit/internal/blobstore/domain/model"
	"firebase-kit/internal/blobstore/domain/repository"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
	"firebase-kit/internal/shared/outcome"
)

const (
	eventSource = "blobstore"

	// DefaultURLTTL is used when neither the caller nor the store sets one
	DefaultURLTTL = 15 * time.Minute
)

// Store wraps a repository.BlobStore
type Store struct {
	store repository.BlobStore
	log   logger.Logger
	bus   eventbus.Publisher
	ttl   time.Duration
}

// NewStore creates the wrapper. urlTTL <= 0 uses DefaultURLTTL.
func NewStore(store repository.BlobStore, log logger.Logger, bus eventbus.Publisher, urlTTL time.Duration) *Store {
	if log == nil {
		log = logger.NopLogger{}
	}
	if bus == nil {
		bus = eventbus.NopPublisher{}
	}
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &Store{store: store, log: log.WithComponent("blobstore"), bus: bus, ttl: urlTTL}
}

// Upload stores the content of r under name
func (s *Store) Upload(ctx context.Context, name string, r io.Reader, contentType string) outcome.Outcome[*model.Object] {
	const op = "blobstore.upload"
	return outcome.Capture(op, func() (*model.Object, error) {
		return s.upload(ctx, op, name, r, contentType)
	})
}

// UploadBytes stores data under name
func (s *Store) UploadBytes(ctx context.Context, name string, data []byte, contentType string) outcome.Outcome[*model.Object] {
	const op = "blobstore.upload"
	return outcome.Capture(op, func() (*model.Object, error) {
		return s.upload(ctx, op, name, bytes.NewReader(data), contentType)
	})
}

// UploadFile stores the local file at localPath. An empty name uses the
// file's base name; the content type is guessed from the extension.
func (s *Store) UploadFile(ctx context.Context, localPath, name string) outcome.Outcome[*model.Object] {
	const op = "blobstore.upload_file"
	return outcome.Capture(op, func() (*model.Object, error) {
		f, err := os.Open(localPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, apperrors.NewNotFoundError("local file").WithDetail("path", localPath).WithCause(err)
			}
			return nil, fmt.Errorf("failed to open %s: %w", localPath, err)
		}
		defer f.Close()

		if name == "" {
			name = filepath.Base(localPath)
		}
		contentType := mime.TypeByExtension(filepath.Ext(localPath))
		return s.upload(ctx, op, name, f, contentType)
	})
}

func (s *Store) upload(ctx context.Context, op, name string, r io.Reader, contentType string) (*model.Object, error) {
	log := s.logFor(ctx, op, name)
	if err := model.ValidateName(name); err != nil {
		return nil, err
	}

	obj, err := s.store.Upload(ctx, name, r, contentType)
	if err != nil {
		log.Errorf("Failed to upload object: %v", err)
		return nil, err
	}

	log.WithFields(map[string]interface{}{"size": obj.Size}).Info("Object uploaded")
	s.publish(ctx, eventbus.EventTypeBlobUploaded, name, map[string]any{
		"contentType": obj.ContentType,
		"size":        obj.Size,
	})
	return obj, nil
}

// Download returns the object and its content
func (s *Store) Download(ctx context.Context, name string) outcome.Outcome[*model.Blob] {
	const op = "blobstore.download"
	return outcome.Capture(op, func() (*model.Blob, error) {
		blob, err := s.store.Download(ctx, name)
		if err != nil {
			s.logFor(ctx, op, name).Debugf("Download failed: %v", err)
			return nil, err
		}
		return blob, nil
	})
}

// DownloadURL returns a time-limited URL for the object. ttl <= 0 uses the
// store's default.
func (s *Store) DownloadURL(ctx context.Context, name string, ttl time.Duration) outcome.Outcome[string] {
	const op = "blobstore.download_url"
	if ttl <= 0 {
		ttl = s.ttl
	}
	return outcome.Capture(op, func() (string, error) {
		url, err := s.store.DownloadURL(ctx, name, ttl)
		if err != nil {
			s.logFor(ctx, op, name).Debugf("Download URL failed: %v", err)
			return "", err
		}
		return url, nil
	})
}

// Delete removes the object
func (s *Store) Delete(ctx context.Context, name string) outcome.Outcome[outcome.None] {
	const op = "blobstore.delete"
	return outcome.CaptureNone(op, func() error {
		log := s.logFor(ctx, op, name)
		if err := s.store.Delete(ctx, name); err != nil {
			log.Errorf("Failed to delete object: %v", err)
			return err
		}
		log.Info("Object deleted")
		s.publish(ctx, eventbus.EventTypeBlobDeleted, name, nil)
		return nil
	})
}

func (s *Store) logFor(ctx context.Context, op, name string) logger.Logger {
	return s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"operation": op,
		"object":    name,
	})
}

func (s *Store) publish(ctx context.Context, eventType, name string, data map[string]any) {
	if err := s.bus.Publish(ctx, eventbus.NewEvent(eventType, eventSource, name, data)); err != nil {
		s.log.WithContext(ctx).Warnf("Failed to publish %s for %s: %v", eventType, name, err)
	}
}
