package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"counselbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Upsert writes the record keyed by (studentId, sessionId).
func (r *mongoRecordRepo) Upsert(ctx context.Context, record models.BookingRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if record.SyncedAt.IsZero() {
		record.SyncedAt = time.Now()
	}
	filter := bson.M{"studentId": record.StudentID, "sessionId": record.SessionID}
	_, err := r.coll.ReplaceOne(ctx, filter, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert booking record %s: %w", record.SessionID, err)
	}
	return nil
}

// ListByStudent fetches all records for a student, newest session first.
func (r *mongoRecordRepo) ListByStudent(ctx context.Context, studentID string) ([]models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sessionTimestamp", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode booking records: %w", err)
	}
	return records, nil
}

func (r *mongoRecordRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "sessionId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("student_session_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking record indexes: %w", err)
	}
	return nil
}
