package timeslotRepo

import (
	"context"
	"errors"
	"time"

	"counselbook/database"
	"counselbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotTaken is returned by Reserve when the slot is already booked or gone.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrSlotExists is returned by Insert when (counselor, date, minute) already has a slot.
	ErrSlotExists = errors.New("slot already exists")
)

type TimeSlotRepository interface {
	Insert(ctx context.Context, slot models.Slot) error
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	GetByCounselorAndDate(ctx context.Context, counselorID, date string) ([]models.Slot, error)
	ListOpen(ctx context.Context, q models.SlotQuery, now time.Time) ([]models.Slot, error)
	// Reserve marks the slot booked by sessionID iff it is currently unbooked.
	Reserve(ctx context.Context, slotID, sessionID string) error
	// DeleteUnbooked removes the slot only while it is unbooked and reports whether it did.
	DeleteUnbooked(ctx context.Context, slotID string) (bool, error)
	// Relabel rewrites the display label of an unbooked slot; a booked slot is ErrSlotTaken.
	Relabel(ctx context.Context, slotID, label string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoTimeSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
func NewMongoTimeSlotRepo() TimeSlotRepository {
	return &mongoTimeSlotRepo{
		coll: database.DB().Collection("timeslots"),
	}
}
