package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"counselbook/database"
	"counselbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AvailabilityRepository stores the declared per-day windows shown on counselor pages.
type AvailabilityRepository interface {
	Upsert(ctx context.Context, window models.AvailabilityWindow) error
	List(ctx context.Context, counselorID, fromDate, toDate string) ([]models.AvailabilityWindow, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

func NewMongoAvailabilityRepo() AvailabilityRepository {
	return &mongoAvailabilityRepo{coll: database.DB().Collection("availability")}
}

func (r *mongoAvailabilityRepo) Upsert(ctx context.Context, window models.AvailabilityWindow) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	window.UpdatedAt = time.Now()
	filter := bson.M{"counselorId": window.CounselorID, "date": window.Date}
	if _, err := r.coll.ReplaceOne(ctx, filter, window, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) List(ctx context.Context, counselorID, fromDate, toDate string) ([]models.AvailabilityWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"counselorId": counselorID}
	dates := bson.M{}
	if fromDate != "" {
		dates["$gte"] = fromDate
	}
	if toDate != "" {
		dates["$lte"] = toDate
	}
	if len(dates) > 0 {
		filter["date"] = dates
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	defer cursor.Close(ctx)

	var windows []models.AvailabilityWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return windows, nil
}

func (r *mongoAvailabilityRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "counselorId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("counselor_date_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}
	return nil
}
