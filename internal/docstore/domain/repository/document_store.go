package repository

import (
	"context"
	"iter"

	"firebase-kit/internal/docstore/domain/model"
)

// DocumentStore is the document-store collaborator every wrapper delegates to.
// References to collections have an odd segment count and references to
// documents an even count; calls given the wrong kind return an error wrapping
// errors.ErrInvalidPath or errors.ErrDocumentNotFound.
type DocumentStore interface {
	// CreateDocument writes record. A collection reference gets a generated id,
	// a document reference is created with its own id and fails with a conflict
	// when it already exists. The id written is returned.
	CreateDocument(ctx context.Context, ref model.Reference, record model.Record) (string, error)

	// GetDocument reads a document, wrapping errors.ErrDocumentNotFound when absent.
	GetDocument(ctx context.Context, ref model.Reference) (model.Record, error)

	// UpdateDocument merges the top-level fields of patch into an existing document.
	UpdateDocument(ctx context.Context, ref model.Reference, patch model.Record) error

	// DeleteDocument removes a document. Deleting an absent document succeeds.
	DeleteDocument(ctx context.Context, ref model.Reference) error

	// ChildDocumentIDs lazily enumerates the ids of documents in a collection.
	ChildDocumentIDs(ctx context.Context, ref model.Reference) iter.Seq2[string, error]

	// SubCollectionIDs lists the names of the sub-collections beneath a document.
	SubCollectionIDs(ctx context.Context, ref model.Reference) ([]string, error)
}
