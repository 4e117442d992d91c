package users

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"docchat-backend/internal/shared/storage/mongodb"
)

const mongoCollection = "users"

type mongoUser struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash,omitempty"`
	Provider     string    `bson:"provider"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (m mongoUser) toUser() User {
	return User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Provider:     m.Provider,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// MongoRepo stores users in a MongoDB collection with a unique email index.
type MongoRepo struct {
	collection mongodb.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{collection: db.Collection(mongoCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, user User) error {
	now := time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, mongoUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        normalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Provider:     providerOrDefault(user.Provider),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *MongoRepo) UpsertByEmail(ctx context.Context, user User) (User, error) {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if user.Name != "" {
		set["name"] = user.Name
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":        user.ID,
			"provider":   providerOrDefault(user.Provider),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoUser
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"email": normalizeEmail(user.Email)}, update, opts).Decode(&doc)
	if err != nil {
		return User{}, err
	}
	return doc.toUser(), nil
}

func (r *MongoRepo) findOne(ctx context.Context, filter bson.M) (User, error) {
	var doc mongoUser
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return doc.toUser(), nil
}

var _ Repo = (*MongoRepo)(nil)
