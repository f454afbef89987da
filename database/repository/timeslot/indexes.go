package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the timeslots collection.
func (r *mongoTimeSlotRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// One slot per counselor, date and minute; concurrent publishes collide here.
		{
			Keys:    bson.D{{Key: "counselorId", Value: 1}, {Key: "date", Value: 1}, {Key: "minuteOfDay", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("counselor_date_minute_unique"),
		},
		{
			Keys:    bson.D{{Key: "isBooked", Value: 1}, {Key: "date", Value: 1}, {Key: "minuteOfDay", Value: 1}},
			Options: options.Index().SetName("open_slots_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}
