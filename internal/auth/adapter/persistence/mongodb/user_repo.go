package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase-kit/internal/auth/domain/model"
	apperrors "firebase-kit/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the UserRepository interface using MongoDB
type MongoUserRepository struct {
	db              *mongo.Database
	usersCollection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(ctx context.Context, db *mongo.Database) (*MongoUserRepository, error) {
	repo := &MongoUserRepository{
		db:              db,
		usersCollection: db.Collection("users"),
	}

	// Email index for users (unique, sparse because phone-only accounts have none)
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}

	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateUser creates a new user in the database
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if user.UID == "" {
		return errors.New("user ID cannot be empty")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.usersCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("user with this uid or email already exists").WithCause(apperrors.ErrConflict)
		}
		return err
	}

	return nil
}

// GetUserByEmail retrieves a user by email
func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByID retrieves a user by uid
func (r *MongoUserRepository) GetUserByID(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	return r.findOne(ctx, bson.M{"_id": uid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces the stored user
func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	if user == nil || user.UID == "" {
		return errors.New("user ID cannot be empty")
	}
	user.UpdatedAt = time.Now().UTC()

	res, err := r.usersCollection.ReplaceOne(ctx, bson.M{"_id": user.UID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("email already in use").WithCause(apperrors.ErrConflict)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user
func (r *MongoUserRepository) DeleteUser(ctx context.Context, uid string) error {
	res, err := r.usersCollection.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ListUsers returns up to limit users ordered by uid after afterUID
func (r *MongoUserRepository) ListUsers(ctx context.Context, afterUID string, limit int) ([]*model.User, error) {
	filter := bson.M{}
	if afterUID != "" {
		filter["_id"] = bson.M{"$gt": afterUID}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.usersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
