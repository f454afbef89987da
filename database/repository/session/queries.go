package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"counselbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSessionRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.BookingSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.BookingSession, error) {
	defer cursor.Close(ctx)
	var sessions []models.BookingSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepo) ListByStudent(ctx context.Context, studentID string, statuses []models.SessionStatus) ([]models.BookingSession, error) {
	filter := bson.M{"student.uid": studentID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoSessionRepo) ListByCounselor(ctx context.Context, counselorID string, statuses []models.SessionStatus, from, to time.Time) ([]models.BookingSession, error) {
	filter := bson.M{"selectedSlot.counselorId": counselorID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	window := bson.M{}
	if !from.IsZero() {
		window["$gte"] = from
	}
	if !to.IsZero() {
		window["$lt"] = to
	}
	if len(window) > 0 {
		filter["sessionTimestamp"] = window
	}
	opts := options.Find().SetSort(bson.D{{Key: "sessionTimestamp", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoSessionRepo) ListStale(ctx context.Context, statuses []models.SessionStatus, updatedBefore time.Time) ([]models.BookingSession, error) {
	filter := bson.M{
		"status":    bson.M{"$in": statuses},
		"updatedAt": bson.M{"$lt": updatedBefore},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}).SetLimit(500)
	return r.find(ctx, filter, opts)
}
