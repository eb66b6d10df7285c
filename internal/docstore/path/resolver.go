// Package path resolves a flat collection name plus an alternating
// document/sub-collection chain into a store reference.
package path

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"firebase-kit/internal/docstore/domain/model"
	"firebase-kit/internal/docstore/domain/repository"
	apperrors "firebase-kit/internal/shared/errors"
)

// CollectionPath is the nested chain beneath a root collection:
// [docID, subCollection, docID, subCollection, ...]. A trailing unpaired
// segment is a document id.
type CollectionPath struct {
	segments []string
}

// NewCollectionPath copies segments into an immutable path.
func NewCollectionPath(segments ...string) CollectionPath {
	return CollectionPath{segments: append([]string(nil), segments...)}
}

// Segments returns a copy of the segments.
func (p CollectionPath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Pairs returns the number of complete document/sub-collection pairs.
func (p CollectionPath) Pairs() int {
	return len(p.segments) / 2
}

// Dangling returns the unpaired trailing document id, if any.
func (p CollectionPath) Dangling() (string, bool) {
	if len(p.segments)%2 == 1 {
		return p.segments[len(p.segments)-1], true
	}
	return "", false
}

// Descend returns a new path extended with docID and subCollection.
func (p CollectionPath) Descend(docID, subCollection string) CollectionPath {
	segments := make([]string, 0, len(p.segments)+2)
	segments = append(segments, p.segments...)
	return CollectionPath{segments: append(segments, docID, subCollection)}
}

// ValidateSegment reports whether s can stand alone as one document id or
// collection name: it must be non-empty and contain no "/".
func ValidateSegment(s string) error {
	if s == "" {
		return apperrors.NewValidationError("path segment must not be empty").WithCause(apperrors.ErrInvalidPath)
	}
	if strings.Contains(s, "/") {
		return apperrors.NewValidationError(fmt.Sprintf("path segment %q must not contain '/'", s)).
			WithCause(apperrors.ErrInvalidPath)
	}
	return nil
}

// Validate checks every segment with ValidateSegment.
func (p CollectionPath) Validate() error {
	for _, s := range p.segments {
		if err := ValidateSegment(s); err != nil {
			return err
		}
	}
	return nil
}

// Resolve walks nested two segments at a time from basePath, descending into
// each document then its sub-collection. An unpaired trailing segment descends
// into that document only. A non-empty targetID is appended last.
//
// Resolve never fails: a shape that addresses the wrong kind of node is
// reported by the store when the reference is used.
func Resolve(basePath string, nested CollectionPath, targetID string) model.Reference {
	ref := model.ParseReference(basePath)
	for i := 0; i+1 < len(nested.segments); i += 2 {
		ref = ref.Child(nested.segments[i]).Child(nested.segments[i+1])
	}
	if docID, ok := nested.Dangling(); ok {
		ref = ref.Child(docID)
	}
	if targetID != "" {
		ref = ref.Child(targetID)
	}
	return ref
}

// FindIDByContent returns the id of the first document in the collection at
// ref whose stored record equals record. Duplicate content makes the match
// ambiguous; stores that return generated ids from CreateDocument avoid it.
func FindIDByContent(ctx context.Context, store repository.DocumentStore, ref model.Reference, record model.Record) (string, error) {
	for id, err := range EnumerateChildPaths(ctx, store, ref) {
		if err != nil {
			return "", err
		}
		stored, err := store.GetDocument(ctx, ref.Child(id))
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return "", err
		}
		if stored.Equal(record) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no document in %s matches the written content", apperrors.ErrDocumentNotFound, ref.Path())
}

// EnumerateChildPaths yields the ids of the documents directly inside the
// collection at ref. Each range over the sequence queries the store again.
// Enumeration stops after the first error.
func EnumerateChildPaths(ctx context.Context, store repository.DocumentStore, ref model.Reference) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !ref.IsCollection() {
			yield("", fmt.Errorf("%w: %q is not a collection", apperrors.ErrInvalidPath, ref.Path()))
			return
		}
		for id, err := range store.ChildDocumentIDs(ctx, ref) {
			if !yield(id, err) || err != nil {
				return
			}
		}
	}
}
