// Package mongodb stores documents in a single MongoDB collection keyed by
// their full path.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"firebase-kit/internal/docstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

// DocumentsCollection is the MongoDB collection holding every document.
const DocumentsCollection = "documents"

// documentEntry is the stored shape of one document.
type documentEntry struct {
	Path         string    `bson:"_id"`
	ParentPath   string    `bson:"parentPath"`
	ParentDoc    string    `bson:"parentDoc"`
	CollectionID string    `bson:"collectionID"`
	DocumentID   string    `bson:"documentID"`
	Fields       bson.M    `bson:"fields"`
	CreateTime   time.Time `bson:"createTime"`
	UpdateTime   time.Time `bson:"updateTime"`
}

// Store implements repository.DocumentStore on MongoDB. Listing returns only
// stored documents; a parent that was never written is not enumerated even
// when it has sub-collections.
type Store struct {
	documents *mongo.Collection
	newID     func() string
}

// NewStore prepares the documents collection and its indexes.
func NewStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	s := &Store{
		documents: db.Collection(DocumentsCollection),
		newID:     model.NewAutoID,
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentPath", Value: 1}, {Key: "documentID", Value: 1}}},
		{Keys: bson.D{{Key: "parentDoc", Value: 1}}},
	}
	if _, err := s.documents.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("create document indexes: %w", err)
	}
	return s, nil
}

func (s *Store) CreateDocument(ctx context.Context, ref model.Reference, record model.Record) (string, error) {
	if ref.IsZero() {
		return "", fmt.Errorf("%w: empty reference", apperrors.ErrInvalidPath)
	}
	if err := validateKeys(record); err != nil {
		return "", err
	}

	doc := ref
	if ref.IsCollection() {
		doc = ref.Child(s.newID())
	}

	now := time.Now().UTC()
	col := doc.Parent()
	entry := documentEntry{
		Path:         doc.Path(),
		ParentPath:   col.Path(),
		ParentDoc:    col.Parent().Path(),
		CollectionID: col.ID(),
		DocumentID:   doc.ID(),
		Fields:       bson.M(record.Clone()),
		CreateTime:   now,
		UpdateTime:   now,
	}

	if _, err := s.documents.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.NewConflictError(fmt.Sprintf("document %s already exists", doc.Path())).WithCause(err)
		}
		return "", err
	}
	return doc.ID(), nil
}

func (s *Store) GetDocument(ctx context.Context, ref model.Reference) (model.Record, error) {
	if !ref.IsDocument() {
		return nil, notADocument(ref)
	}

	var entry documentEntry
	err := s.documents.FindOne(ctx, bson.M{"_id": ref.Path()}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, ref.Path())
		}
		return nil, err
	}
	return fromBSON(entry.Fields).(model.Record), nil
}

func (s *Store) UpdateDocument(ctx context.Context, ref model.Reference, patch model.Record) error {
	if !ref.IsDocument() {
		return notADocument(ref)
	}
	if err := validateKeys(patch); err != nil {
		return err
	}

	set := bson.M{"updateTime": time.Now().UTC()}
	for k, v := range patch {
		set["fields."+k] = v
	}

	res, err := s.documents.UpdateOne(ctx, bson.M{"_id": ref.Path()}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, ref.Path())
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, ref model.Reference) error {
	if !ref.IsDocument() {
		return notADocument(ref)
	}
	_, err := s.documents.DeleteOne(ctx, bson.M{"_id": ref.Path()})
	return err
}

func (s *Store) ChildDocumentIDs(ctx context.Context, ref model.Reference) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !ref.IsCollection() {
			yield("", fmt.Errorf("%w: %q is not a collection", apperrors.ErrInvalidPath, ref.Path()))
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "documentID", Value: 1}}).
			SetProjection(bson.M{"documentID": 1})
		cursor, err := s.documents.Find(ctx, bson.M{"parentPath": ref.Path()}, opts)
		if err != nil {
			yield("", err)
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var entry struct {
				DocumentID string `bson:"documentID"`
			}
			if err := cursor.Decode(&entry); err != nil {
				yield("", err)
				return
			}
			if !yield(entry.DocumentID, nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield("", err)
		}
	}
}

func (s *Store) SubCollectionIDs(ctx context.Context, ref model.Reference) ([]string, error) {
	if !ref.IsDocument() {
		return nil, notADocument(ref)
	}

	values, err := s.documents.Distinct(ctx, "collectionID", bson.M{"parentDoc": ref.Path()})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// validateKeys rejects field names MongoDB cannot store as a single field.
func validateKeys(record model.Record) error {
	for k := range record {
		if k == "" || strings.Contains(k, ".") || strings.HasPrefix(k, "$") {
			return fmt.Errorf("%w: field name %q is not supported", apperrors.ErrInvalidInput, k)
		}
	}
	return nil
}

// fromBSON converts decoded driver types back to plain Go values.
func fromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		out := make(model.Record, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	default:
		return plain(v)
	}
}

func plain(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	default:
		return v
	}
}

func notADocument(ref model.Reference) error {
	return fmt.Errorf("%w: %q is not a document", apperrors.ErrDocumentNotFound, ref.Path())
}
