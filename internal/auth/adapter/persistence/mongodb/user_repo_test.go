package mongodb_test

import (
	"context"
	"testing"
	"time"

	"firebase-kit/internal/auth/adapter/persistence/mongodb"
	"firebase-kit/internal/auth/domain/model"
	apperrors "firebase-kit/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepoTestSuite struct {
	suite.Suite
	client     *mongo.Client
	database   *mongo.Database
	repository *mongodb.MongoUserRepository
}

func (suite *MongoRepoTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Connect to MongoDB test instance
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	if err != nil || client.Ping(ctx, nil) != nil {
		suite.T().Skip("MongoDB not available for testing")
		return
	}

	suite.client = client
	suite.database = client.Database("auth_test_db")

	repo, err := mongodb.NewMongoUserRepository(ctx, suite.database)
	if err != nil {
		suite.T().Skip("Failed to create repository for testing")
		return
	}
	suite.repository = repo
}

func (suite *MongoRepoTestSuite) TearDownSuite() {
	if suite.client != nil {
		// Clean up test database
		suite.database.Drop(context.Background())
		suite.client.Disconnect(context.Background())
	}
}

func (suite *MongoRepoTestSuite) TestCreateUser_NilUser() {
	err := suite.repository.CreateUser(context.Background(), nil)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "user cannot be nil")
}

func (suite *MongoRepoTestSuite) TestGetUserByEmail_EmptyEmail() {
	user, err := suite.repository.GetUserByEmail(context.Background(), "")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), user)
	assert.Contains(suite.T(), err.Error(), "email cannot be empty")
}

func (suite *MongoRepoTestSuite) TestGetUserByID_EmptyID() {
	user, err := suite.repository.GetUserByID(context.Background(), "")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), user)
	assert.Contains(suite.T(), err.Error(), "user ID cannot be empty")
}

func (suite *MongoRepoTestSuite) TestUserLifecycle() {
	ctx := context.Background()
	user := &model.User{UID: "mongo-u1", Email: "mongo@example.com", DisplayName: "Mongo"}
	suite.Require().NoError(suite.repository.CreateUser(ctx, user))

	dup := suite.repository.CreateUser(ctx, &model.User{UID: "mongo-u2", Email: "mongo@example.com"})
	assert.True(suite.T(), apperrors.IsConflict(dup))

	found, err := suite.repository.GetUserByEmail(ctx, "mongo@example.com")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "mongo-u1", found.UID)

	found.DisplayName = "Renamed"
	suite.Require().NoError(suite.repository.UpdateUser(ctx, found))

	users, err := suite.repository.ListUsers(ctx, "", 10)
	suite.Require().NoError(err)
	suite.Require().Len(users, 1)
	assert.Equal(suite.T(), "Renamed", users[0].DisplayName)

	suite.Require().NoError(suite.repository.DeleteUser(ctx, "mongo-u1"))
	_, err = suite.repository.GetUserByID(ctx, "mongo-u1")
	assert.ErrorIs(suite.T(), err, apperrors.ErrUserNotFound)
}

func TestMongoRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MongoRepoTestSuite))
}
