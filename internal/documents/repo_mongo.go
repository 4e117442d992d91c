package documents

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"docchat-backend/internal/shared/storage/mongodb"
)

const mongoCollection = "documents"

type mongoDocument struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner_id"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (m mongoDocument) toDocument() Document {
	return Document{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// MongoRepo implements DocumentsRepo on a MongoDB collection.
type MongoRepo struct {
	collection mongodb.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{collection: db.Collection(mongoCollection)}
}

// EnsureIndexes creates the owner listing index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}},
		Options: options.Index().SetName("documents_owner_updated_idx"),
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, doc Document) error {
	_, err := r.collection.InsertOne(ctx, mongoDocument{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		Title:     doc.Title,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	})
	return err
}

func (r *MongoRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]Document, 0)
	for cursor.Next(ctx) {
		var m mongoDocument
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		docs = append(docs, m.toDocument())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *MongoRepo) Update(ctx context.Context, ownerID, id string, patch Patch) (Document, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var m mongoDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner_id": ownerID}, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return m.toDocument(), nil
}

func (r *MongoRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var _ DocumentsRepo = (*MongoRepo)(nil)
