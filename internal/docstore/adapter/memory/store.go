// Package memory is an in-process DocumentStore. Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"

	"firebase-kit/internal/docstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

// Store keeps documents keyed by full path. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]model.Record
	newID func() string
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the generator used for collection creates.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		docs:  make(map[string]model.Record),
		newID: model.NewAutoID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) CreateDocument(ctx context.Context, ref model.Reference, record model.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ref.IsZero() {
		return "", fmt.Errorf("%w: empty reference", apperrors.ErrInvalidPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := ref
	if ref.IsCollection() {
		doc = ref.Child(s.newID())
	}
	if _, exists := s.docs[doc.Path()]; exists {
		return "", apperrors.NewConflictError(fmt.Sprintf("document %s already exists", doc.Path())).WithCause(apperrors.ErrConflict)
	}
	s.docs[doc.Path()] = record.Clone()
	return doc.ID(), nil
}

func (s *Store) GetDocument(ctx context.Context, ref model.Reference) (model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ref.IsDocument() {
		return nil, notADocument(ref)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[ref.Path()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, ref.Path())
	}
	return rec.Clone(), nil
}

func (s *Store) UpdateDocument(ctx context.Context, ref model.Reference, patch model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ref.IsDocument() {
		return notADocument(ref)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[ref.Path()]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, ref.Path())
	}
	s.docs[ref.Path()] = rec.Merge(patch)
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, ref model.Reference) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ref.IsDocument() {
		return notADocument(ref)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, ref.Path())
	return nil
}

// ChildDocumentIDs yields ids in lexical order, including ids that only exist
// as parents of sub-collection documents. The id set is captured when ranging
// starts.
func (s *Store) ChildDocumentIDs(ctx context.Context, ref model.Reference) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !ref.IsCollection() {
			yield("", fmt.Errorf("%w: %q is not a collection", apperrors.ErrInvalidPath, ref.Path()))
			return
		}
		for _, id := range s.segmentsBelow(ref) {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

func (s *Store) SubCollectionIDs(ctx context.Context, ref model.Reference) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ref.IsDocument() {
		return nil, notADocument(ref)
	}
	return s.segmentsBelow(ref), nil
}

// segmentsBelow returns the distinct segments directly under ref.
func (s *Store) segmentsBelow(ref model.Reference) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := ref.Path() + "/"
	seen := map[string]struct{}{}
	for p := range s.docs {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		seen[rest] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func notADocument(ref model.Reference) error {
	return fmt.Errorf("%w: %q is not a document", apperrors.ErrDocumentNotFound, ref.Path())
}
