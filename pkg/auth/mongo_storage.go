package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CredentialsCollection is the default collection name for MongoStorage.
const CredentialsCollection = "credentials"

// MongoStorage keeps credentials in a MongoDB collection with a unique
// index on email.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage wraps db.Collection(CredentialsCollection) and ensures the email index.
func NewMongoStorage(ctx context.Context, db *mongo.Database) (*MongoStorage, error) {
	coll := db.Collection(CredentialsCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create credentials email index: %w", err)
	}
	return &MongoStorage{coll: coll}, nil
}

func (s *MongoStorage) CreateCredential(ctx context.Context, c *Credential) error {
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *MongoStorage) GetCredentialByEmail(ctx context.Context, email string) (*Credential, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStorage) GetCredentialByID(ctx context.Context, id string) (*Credential, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStorage) DeleteCredential(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *MongoStorage) findOne(ctx context.Context, filter bson.M) (*Credential, error) {
	var c Credential
	if err := s.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &c, nil
}
