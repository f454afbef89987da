package counselorRepo

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

var ErrCounselorNotFound = errors.New("counselor not found")

// CounselorRepository defines data access for counselor profiles.
type CounselorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Counselor, error)
	// UpdateProfile applies the non-nil fields of update.
	UpdateProfile(ctx context.Context, id string, update models.CounselorProfileUpdate) (*models.Counselor, error)
	SetFCMToken(ctx context.Context, id, token string) error
	EnsureIndexes(ctx context.Context) error
}

type MongoCounselorRepo struct {
	coll *mongo.Collection
}

func NewMongoCounselorRepo() *MongoCounselorRepo {
	return &MongoCounselorRepo{coll: database.DB().Collection("counselors")}
}

func (r *MongoCounselorRepo) GetByID(ctx context.Context, id string) (*models.Counselor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Counselor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCounselorNotFound
		}
		return nil, fmt.Errorf("failed to get counselor %s: %w", id, err)
	}
	return &c, nil
}

func (r *MongoCounselorRepo) UpdateProfile(ctx context.Context, id string, update models.CounselorProfileUpdate) (*models.Counselor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Initials != nil {
		set["initials"] = *update.Initials
	}
	if update.MeetingLink != nil {
		set["meetingLink"] = *update.MeetingLink
	}
	if update.Timezone != nil {
		set["timezone"] = *update.Timezone
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Counselor
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCounselorNotFound
		}
		return nil, fmt.Errorf("failed to update counselor %s: %w", id, err)
	}
	return &c, nil
}

func (r *MongoCounselorRepo) SetFCMToken(ctx context.Context, id, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"fcmToken": token, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to set counselor token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCounselorNotFound
	}
	return nil
}

func (r *MongoCounselorRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create counselor indexes: %w", err)
	}
	return nil
}
