package timeslotRepo

import (
	"context"
	"fmt"
	"time"

	"counselbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoTimeSlotRepo) GetByCounselorAndDate(ctx context.Context, counselorID, date string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "minuteOfDay", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"counselorId": counselorID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

// ListOpen returns unbooked slots that start after now, ordered by minute of day, date, counselor.
func (r *mongoTimeSlotRepo) ListOpen(ctx context.Context, q models.SlotQuery, now time.Time) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"isBooked": false,
		"startsAt": bson.M{"$gt": now},
	}
	dateRange := bson.M{}
	if q.FromDate != "" {
		dateRange["$gte"] = q.FromDate
	}
	if q.ToDate != "" {
		dateRange["$lte"] = q.ToDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	if len(q.CounselorIDs) > 0 {
		filter["counselorId"] = bson.M{"$in": q.CounselorIDs}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "minuteOfDay", Value: 1},
		{Key: "date", Value: 1},
		{Key: "counselorId", Value: 1},
	})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list open slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode open slots: %w", err)
	}
	return slots, nil
}
