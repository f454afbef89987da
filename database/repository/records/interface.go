package recordsRepo

import (
	"context"

	"counselbook/database"
	"counselbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRecordRepository stores the student dashboard projection.
type BookingRecordRepository interface {
	Upsert(ctx context.Context, record models.BookingRecord) error
	ListByStudent(ctx context.Context, studentID string) ([]models.BookingRecord, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a new BookingRecordRepository instance using MongoDB.
func NewMongoRecordRepo() BookingRecordRepository {
	return &mongoRecordRepo{
		coll: database.DB().Collection("booking_records"),
	}
}
