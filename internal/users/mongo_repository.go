package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection is the MongoDB collection holding user records.
const Collection = "users"

// MongoRepository stores users in MongoDB. Email is unique among records
// that have one.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository wraps db.Collection(Collection) and ensures its indexes.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (*MongoRepository, error) {
	coll := db.Collection(Collection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return nil, errors.Join(ErrDataAccess, fmt.Errorf("create users indexes: %w", err))
	}
	return &MongoRepository{coll: coll}, nil
}

func (r *MongoRepository) Insert(ctx context.Context, u *User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return errors.Join(ErrDataAccess, fmt.Errorf("insert user: %w", err))
	}
	return nil
}

func (r *MongoRepository) Replace(ctx context.Context, u *User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return errors.Join(ErrDataAccess, fmt.Errorf("replace user: %w", err))
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Join(ErrDataAccess, fmt.Errorf("delete user: %w", err))
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) List(ctx context.Context) ([]User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Join(ErrDataAccess, fmt.Errorf("find users: %w", err))
	}
	out := []User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrDataAccess, fmt.Errorf("decode users: %w", err))
	}
	return out, nil
}

// Watch follows the collection change stream. It needs a replica set and
// returns when ctx is done or the stream fails.
func (r *MongoRepository) Watch(ctx context.Context, onChange func()) error {
	cs, err := r.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return errors.Join(ErrDataAccess, fmt.Errorf("open users change stream: %w", err))
	}
	defer func() { _ = cs.Close(context.WithoutCancel(ctx)) }()

	for cs.Next(ctx) {
		onChange()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cs.Err(); err != nil {
		return errors.Join(ErrDataAccess, fmt.Errorf("users change stream: %w", err))
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Join(ErrDataAccess, fmt.Errorf("find user: %w", err))
	}
	return &u, nil
}
