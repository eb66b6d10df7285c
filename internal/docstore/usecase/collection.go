// Package usecase exposes the document store wrapper. Every method returns an
// outcome.Outcome and never panics or returns a bare error.
package usecase

import (
	"context"

	"firebase-kit/internal/docstore/domain/model"
	"firebase-kit/internal/docstore/domain/repository"
	"firebase-kit/internal/docstore/path"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"
	"firebase-kit/internal/shared/outcome"
)

const (
	eventSource = "docstore"

	// DefaultMaxDepth bounds ReadAllDeep when neither the caller nor the
	// collection sets a depth.
	DefaultMaxDepth = 8
)

// Dependencies are the collaborators shared by every Collection.
type Dependencies struct {
	Store     repository.DocumentStore
	Logger    logger.Logger
	Publisher eventbus.Publisher
	MaxDepth  int
}

// Collection is an immutable handle on one collection, optionally scoped to a
// default document id and nested beneath other documents.
type Collection struct {
	name     string
	id       string
	nested   path.CollectionPath
	store    repository.DocumentStore
	log      logger.Logger
	bus      eventbus.Publisher
	maxDepth int
}

// Option configures a Collection
type Option func(*Collection)

// WithID sets the default document id used when a method is given "".
func WithID(id string) Option {
	return func(c *Collection) { c.id = id }
}

// WithNestedPath places the collection beneath [docID, subCollection, ...].
func WithNestedPath(segments ...string) Option {
	return func(c *Collection) { c.nested = path.NewCollectionPath(segments...) }
}

// NewCollection creates a wrapper for the collection called name.
func NewCollection(name string, deps Dependencies, opts ...Option) *Collection {
	c := &Collection{
		name:     name,
		store:    deps.Store,
		log:      deps.Logger,
		bus:      deps.Publisher,
		maxDepth: deps.MaxDepth,
	}
	if c.log == nil {
		c.log = logger.NopLogger{}
	}
	if c.bus == nil {
		c.bus = eventbus.NopPublisher{}
	}
	if c.maxDepth <= 0 {
		c.maxDepth = DefaultMaxDepth
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the root collection name.
func (c *Collection) Name() string { return c.name }

// ID returns the default document id, possibly empty.
func (c *Collection) ID() string { return c.id }

// Nested returns the nested path beneath the root collection.
func (c *Collection) Nested() path.CollectionPath { return c.nested }

// Ref resolves the reference the collection addresses without a target id.
func (c *Collection) Ref() model.Reference {
	return path.Resolve(c.name, c.nested, "")
}

// Scoped returns a copy whose default document id is id.
func (c *Collection) Scoped(id string) *Collection {
	clone := *c
	clone.id = id
	return &clone
}

// Sub returns a wrapper for subCollection beneath document id.
func (c *Collection) Sub(id, subCollection string) *Collection {
	clone := *c
	clone.id = ""
	clone.nested = c.nested.Descend(id, subCollection)
	return &clone
}

// Create writes record. With a default id the document is created under it,
// otherwise the store generates one.
func (c *Collection) Create(ctx context.Context, record model.Record) outcome.Outcome[string] {
	if c.id != "" {
		return c.CreateWithID(ctx, c.id, record)
	}

	const op = "docstore.create"
	return outcome.Capture(op, func() (string, error) {
		ref, err := c.collectionRef()
		if err != nil {
			return "", err
		}
		log := c.logFor(ctx, op, ref)

		id, err := c.store.CreateDocument(ctx, ref, record)
		if err != nil {
			log.Errorf("Failed to create document: %v", err)
			return "", err
		}
		if id == "" {
			log.Warn("Store returned no id, matching by content")
			if id, err = path.FindIDByContent(ctx, c.store, ref, record); err != nil {
				return "", err
			}
		}

		log.WithFields(map[string]interface{}{"document_id": id}).Info("Document created")
		c.publish(ctx, eventbus.EventTypeDocumentCreated, ref.Child(id), record)
		return id, nil
	})
}

// CreateWithID writes record under id, failing when it already exists.
func (c *Collection) CreateWithID(ctx context.Context, id string, record model.Record) outcome.Outcome[string] {
	const op = "docstore.create_with_id"
	return outcome.Capture(op, func() (string, error) {
		if id == "" {
			return "", apperrors.NewValidationError("document id is required").WithCause(apperrors.ErrInvalidInput)
		}
		ref, err := c.docRef(id)
		if err != nil {
			return "", err
		}
		log := c.logFor(ctx, op, ref)

		written, err := c.store.CreateDocument(ctx, ref, record)
		if err != nil {
			log.Errorf("Failed to create document: %v", err)
			return "", err
		}
		if written == "" {
			written = id
		}

		log.Info("Document created")
		c.publish(ctx, eventbus.EventTypeDocumentCreated, ref, record)
		return written, nil
	})
}

// Read returns the document id, or the default id when id is "".
func (c *Collection) Read(ctx context.Context, id string) outcome.Outcome[model.Record] {
	const op = "docstore.read"
	return outcome.Capture(op, func() (model.Record, error) {
		ref, err := c.docRef(id)
		if err != nil {
			return nil, err
		}
		rec, err := c.store.GetDocument(ctx, ref)
		if err != nil {
			c.logFor(ctx, op, ref).Debugf("Document read failed: %v", err)
			return nil, err
		}
		return rec, nil
	})
}

// Exists reports whether the document is stored. Not-found is a successful
// false, any other store error is a failure.
func (c *Collection) Exists(ctx context.Context, id string) outcome.Outcome[bool] {
	const op = "docstore.exists"
	return outcome.Capture(op, func() (bool, error) {
		ref, err := c.docRef(id)
		if err != nil {
			return false, err
		}
		if _, err := c.store.GetDocument(ctx, ref); err != nil {
			if apperrors.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
}

// Update merges the top-level fields of patch into the document. Nested maps
// in patch replace the stored value for that key.
func (c *Collection) Update(ctx context.Context, id string, patch model.Record) outcome.Outcome[outcome.None] {
	const op = "docstore.update"
	return outcome.CaptureNone(op, func() error {
		ref, err := c.docRef(id)
		if err != nil {
			return err
		}
		log := c.logFor(ctx, op, ref)

		if err := c.store.UpdateDocument(ctx, ref, patch); err != nil {
			log.Errorf("Failed to update document: %v", err)
			return err
		}

		log.Info("Document updated")
		c.publish(ctx, eventbus.EventTypeDocumentUpdated, ref, patch)
		return nil
	})
}

// Delete removes the document. Sub-collections are left in place.
func (c *Collection) Delete(ctx context.Context, id string) outcome.Outcome[outcome.None] {
	const op = "docstore.delete"
	return outcome.CaptureNone(op, func() error {
		ref, err := c.docRef(id)
		if err != nil {
			return err
		}
		log := c.logFor(ctx, op, ref)

		if err := c.store.DeleteDocument(ctx, ref); err != nil {
			log.Errorf("Failed to delete document: %v", err)
			return err
		}

		log.Info("Document deleted")
		c.publish(ctx, eventbus.EventTypeDocumentDeleted, ref, nil)
		return nil
	})
}

// collectionRef resolves the collection after checking that the name and
// every nested segment is a single path segment.
func (c *Collection) collectionRef() (model.Reference, error) {
	if err := path.ValidateSegment(c.name); err != nil {
		return model.Reference{}, err
	}
	if err := c.nested.Validate(); err != nil {
		return model.Reference{}, err
	}
	return c.Ref(), nil
}

// docRef resolves the document id, or the default id when id is "". An id
// holding "/" would address a document outside the collection and is rejected.
func (c *Collection) docRef(id string) (model.Reference, error) {
	if id == "" {
		id = c.id
	}
	if _, err := c.collectionRef(); err != nil {
		return model.Reference{}, err
	}
	if err := path.ValidateSegment(id); err != nil {
		return model.Reference{}, err
	}
	return path.Resolve(c.name, c.nested, id), nil
}

func (c *Collection) logFor(ctx context.Context, op string, ref model.Reference) logger.Logger {
	return c.log.WithContext(ctx).WithFields(map[string]interface{}{
		"operation": op,
		"path":      ref.Path(),
	})
}

// publish announces a successful write. Delivery failures are logged only.
func (c *Collection) publish(ctx context.Context, eventType string, ref model.Reference, record model.Record) {
	data := map[string]any{"id": ref.ID()}
	if record != nil {
		data["record"] = map[string]interface{}(record.Clone())
	}
	if err := c.bus.Publish(ctx, eventbus.NewEvent(eventType, eventSource, ref.Path(), data)); err != nil {
		c.log.WithContext(ctx).Warnf("Failed to publish %s for %s: %v", eventType, ref.Path(), err)
	}
}
