package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"firebase-kit/internal/docstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

type MongoStoreTestSuite struct {
	suite.Suite
	client   *mongo.Client
	database *mongo.Database
	store    *Store
}

func (s *MongoStoreTestSuite) SetupSuite() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		s.T().Skip("MongoDB not available for testing")
		return
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		s.T().Skip("MongoDB not available for testing")
		return
	}

	s.client = client
	s.database = client.Database("docstore_test_db")
	store, err := NewStore(ctx, s.database)
	s.Require().NoError(err)
	s.store = store
}

func (s *MongoStoreTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.database.Drop(context.Background())
		_ = s.client.Disconnect(context.Background())
	}
}

func (s *MongoStoreTestSuite) SetupTest() {
	_, err := s.database.Collection(DocumentsCollection).DeleteMany(context.Background(), bson.M{})
	s.Require().NoError(err)
}

func (s *MongoStoreTestSuite) TestCRUD() {
	ctx := context.Background()
	col := model.NewReference("users")

	id, err := s.store.CreateDocument(ctx, col, model.Record{"name": "Ada", "profile": map[string]interface{}{"lang": "en"}})
	s.Require().NoError(err)
	doc := col.Child(id)

	rec, err := s.store.GetDocument(ctx, doc)
	s.Require().NoError(err)
	s.Equal("Ada", rec["name"])
	s.Equal(map[string]interface{}{"lang": "en"}, rec["profile"])

	s.Require().NoError(s.store.UpdateDocument(ctx, doc, model.Record{"age": 36}))
	rec, err = s.store.GetDocument(ctx, doc)
	s.Require().NoError(err)
	s.True(rec.Equal(model.Record{"name": "Ada", "age": 36, "profile": map[string]interface{}{"lang": "en"}}))

	s.Require().NoError(s.store.DeleteDocument(ctx, doc))
	_, err = s.store.GetDocument(ctx, doc)
	s.True(apperrors.IsNotFound(err))
	s.NoError(s.store.DeleteDocument(ctx, doc))
}

func (s *MongoStoreTestSuite) TestCreateConflictAndUpdateMissing() {
	ctx := context.Background()
	doc := model.NewReference("users", "u1")

	_, err := s.store.CreateDocument(ctx, doc, model.Record{})
	s.Require().NoError(err)
	_, err = s.store.CreateDocument(ctx, doc, model.Record{})
	s.True(apperrors.IsConflict(err))

	err = s.store.UpdateDocument(ctx, model.NewReference("users", "missing"), model.Record{"a": 1})
	s.True(apperrors.IsNotFound(err))
}

func (s *MongoStoreTestSuite) TestListing() {
	ctx := context.Background()
	for _, p := range []string{"users/b", "users/a", "users/a/orders/o1", "users/a/carts/c1"} {
		_, err := s.store.CreateDocument(ctx, model.ParseReference(p), model.Record{"p": p})
		s.Require().NoError(err)
	}

	var ids []string
	for id, err := range s.store.ChildDocumentIDs(ctx, model.NewReference("users")) {
		s.Require().NoError(err)
		ids = append(ids, id)
	}
	s.Equal([]string{"a", "b"}, ids)

	subs, err := s.store.SubCollectionIDs(ctx, model.NewReference("users", "a"))
	s.Require().NoError(err)
	s.Equal([]string{"carts", "orders"}, subs)
}

func TestMongoStoreTestSuite(t *testing.T) {
	suite.Run(t, new(MongoStoreTestSuite))
}

func TestValidateKeys(t *testing.T) {
	assert.NoError(t, validateKeys(model.Record{"name": 1}))
	assert.ErrorIs(t, validateKeys(model.Record{"a.b": 1}), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, validateKeys(model.Record{"$set": 1}), apperrors.ErrInvalidInput)
}

func TestFromBSON(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := bson.M{
		"nested": bson.D{{Key: "k", Value: bson.A{int32(1), bson.M{"x": "y"}}}},
		"at":     primitive.NewDateTimeFromTime(when),
	}
	out := fromBSON(in).(model.Record)
	require.Equal(t, map[string]interface{}{"k": []interface{}{int32(1), map[string]interface{}{"x": "y"}}}, out["nested"])
	assert.Equal(t, when, out["at"])
}
