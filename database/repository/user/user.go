package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counselbook/database"
	"counselbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository defines data access for student profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
	// Upsert records the student's display fields, creating the profile on first sight.
	Upsert(ctx context.Context, s models.Student) error
	SetFCMToken(ctx context.Context, id, token string) error
	EnsureIndexes(ctx context.Context) error
}

type MongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo() *MongoUserRepo {
	return &MongoUserRepo{coll: database.DB().Collection("users")}
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Student
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &s, nil
}

func (r *MongoUserRepo) Upsert(ctx context.Context, s models.Student) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set":         bson.M{"username": s.Username, "email": s.Email, "updatedAt": now},
		"$setOnInsert": bson.M{"id": s.ID, "createdAt": now},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": s.ID}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", s.ID, err)
	}
	return nil
}

func (r *MongoUserRepo) SetFCMToken(ctx context.Context, id, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":         bson.M{"fcmToken": token, "updatedAt": time.Now()},
		"$setOnInsert": bson.M{"id": id, "createdAt": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set user token: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
