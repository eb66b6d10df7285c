// Package memory is an in-process blob store. Download URLs carry an opaque
// token that Resolve exchanges for the object until it expires.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"firebase-kit/internal/blobstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

type grant struct {
	name    string
	expires time.Time
}

// Store keeps blobs in a map
type Store struct {
	mu      sync.RWMutex
	blobs   map[string]*model.Blob
	grants  map[string]grant
	baseURL string
	now     func() time.Time
}

// NewStore creates an empty store issuing URLs beneath baseURL
func NewStore(baseURL string) *Store {
	return &Store{
		blobs:   make(map[string]*model.Blob),
		grants:  make(map[string]grant),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *Store) Upload(ctx context.Context, name string, r io.Reader, contentType string) (*model.Object, error) {
	if err := model.ValidateName(name); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if contentType == "" {
		contentType = model.DefaultContentType
	}

	blob := &model.Blob{
		Object: model.Object{
			Name:        name,
			ContentType: contentType,
			Size:        int64(len(data)),
			Updated:     s.now().UTC(),
		},
		Data: data,
	}

	s.mu.Lock()
	s.blobs[name] = blob
	s.mu.Unlock()

	obj := blob.Object
	return &obj, nil
}

func (s *Store) Download(ctx context.Context, name string) (*model.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyOf(name)
}

// DownloadURL issues a token URL for an existing object
func (s *Store) DownloadURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", apperrors.NewValidationError("url ttl must be positive").WithCause(apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; !ok {
		return "", notFound(name)
	}

	s.sweep()
	token := uuid.NewString()
	s.grants[token] = grant{name: name, expires: s.now().Add(ttl)}
	return s.baseURL + "/" + token, nil
}

// Resolve returns the object a download token was issued for. Expired or
// unknown tokens, and tokens whose object was deleted, are not found.
func (s *Store) Resolve(ctx context.Context, token string) (*model.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grants[token]
	if !ok || !s.now().Before(g.expires) {
		return nil, apperrors.NewNotFoundError("download token").WithCause(apperrors.ErrObjectNotFound)
	}
	return s.copyOf(g.name)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; !ok {
		return notFound(name)
	}
	delete(s.blobs, name)
	return nil
}

// copyOf must be called with the lock held
func (s *Store) copyOf(name string) (*model.Blob, error) {
	blob, ok := s.blobs[name]
	if !ok {
		return nil, notFound(name)
	}
	out := *blob
	out.Data = append([]byte(nil), blob.Data...)
	return &out, nil
}

// sweep drops expired grants; the write lock must be held.
func (s *Store) sweep() {
	now := s.now()
	for token, g := range s.grants {
		if !now.Before(g.expires) {
			delete(s.grants, token)
		}
	}
}

func notFound(name string) error {
	return apperrors.NewNotFoundError("object").WithDetail("name", name).WithCause(apperrors.ErrObjectNotFound)
}
