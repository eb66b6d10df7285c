// Package firestore adapts a Cloud Firestore client to repository.DocumentStore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"firebase-kit/internal/docstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/logger"
)

// Store implements repository.DocumentStore on Firestore. The client is owned
// by the caller.
type Store struct {
	client *firestore.Client
	log    logger.Logger
}

// NewStore wraps client
func NewStore(client *firestore.Client, log logger.Logger) *Store {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Store{client: client, log: log.WithComponent("firestore_store")}
}

func (s *Store) CreateDocument(ctx context.Context, ref model.Reference, record model.Record) (string, error) {
	if ref.IsCollection() {
		col := s.client.Collection(ref.Path())
		if col == nil {
			return "", invalidPath(ref)
		}
		doc, _, err := col.Add(ctx, map[string]interface{}(record))
		if err != nil {
			return "", mapError(ref, err)
		}
		return doc.ID, nil
	}

	doc, err := s.doc(ref)
	if err != nil {
		return "", err
	}
	if _, err := doc.Create(ctx, map[string]interface{}(record)); err != nil {
		return "", mapError(ref, err)
	}
	return doc.ID, nil
}

func (s *Store) GetDocument(ctx context.Context, ref model.Reference) (model.Record, error) {
	doc, err := s.doc(ref)
	if err != nil {
		return nil, err
	}
	snap, err := doc.Get(ctx)
	if err != nil {
		return nil, mapError(ref, err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, ref.Path())
	}
	return model.Record(snap.Data()), nil
}

// UpdateDocument writes each top-level key of patch as its own field path so
// keys containing dots are not split into nested fields.
func (s *Store) UpdateDocument(ctx context.Context, ref model.Reference, patch model.Record) error {
	doc, err := s.doc(ref)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		_, err := s.GetDocument(ctx, ref)
		return err
	}

	updates := make([]firestore.Update, 0, len(patch))
	for k, v := range patch {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	if _, err := doc.Update(ctx, updates); err != nil {
		return mapError(ref, err)
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, ref model.Reference) error {
	doc, err := s.doc(ref)
	if err != nil {
		return err
	}
	if _, err := doc.Delete(ctx); err != nil {
		return mapError(ref, err)
	}
	return nil
}

// ChildDocumentIDs lists document references, which includes missing
// documents that only hold sub-collections.
func (s *Store) ChildDocumentIDs(ctx context.Context, ref model.Reference) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		col := s.client.Collection(ref.Path())
		if !ref.IsCollection() || col == nil {
			yield("", invalidPath(ref))
			return
		}

		it := col.DocumentRefs(ctx)
		for {
			doc, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", mapError(ref, err))
				return
			}
			if !yield(doc.ID, nil) {
				return
			}
		}
	}
}

func (s *Store) SubCollectionIDs(ctx context.Context, ref model.Reference) ([]string, error) {
	doc, err := s.doc(ref)
	if err != nil {
		return nil, err
	}

	var ids []string
	it := doc.Collections(ctx)
	for {
		col, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError(ref, err)
		}
		ids = append(ids, col.ID)
	}
	return ids, nil
}

func (s *Store) doc(ref model.Reference) (*firestore.DocumentRef, error) {
	if !ref.IsDocument() {
		return nil, fmt.Errorf("%w: %q is not a document", apperrors.ErrDocumentNotFound, ref.Path())
	}
	doc := s.client.Doc(ref.Path())
	if doc == nil {
		return nil, invalidPath(ref)
	}
	return doc, nil
}

func invalidPath(ref model.Reference) error {
	return fmt.Errorf("%w: %q", apperrors.ErrInvalidPath, ref.Path())
}

// mapError translates gRPC status codes into the shared error taxonomy.
func mapError(ref model.Reference, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s: %v", apperrors.ErrDocumentNotFound, ref.Path(), err)
	case codes.AlreadyExists:
		return apperrors.NewConflictError(fmt.Sprintf("document %s already exists", ref.Path())).WithCause(err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidInput, ref.Path(), err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return apperrors.NewAuthenticationError(err.Error()).WithCause(err)
	}
	return err
}
