package sessionRepo

import (
	"context"
	"errors"
	"time"

	"counselbook/database"
	"counselbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrStatusConflict is returned when a conditional transition finds the
	// session in a status other than the expected ones.
	ErrStatusConflict = errors.New("session status changed")
)

// SessionRepository persists booking sessions. Every state change is a
// conditional update on the current status.
type SessionRepository interface {
	Create(ctx context.Context, s models.BookingSession) error
	GetByID(ctx context.Context, id string) (*models.BookingSession, error)

	SetDescription(ctx context.Context, id string, from []models.SessionStatus, text string) error
	StampSlot(ctx context.Context, id string, from []models.SessionStatus, stamp models.SlotStamp) error
	SetOrder(ctx context.Context, id string, from []models.SessionStatus, order models.PaymentOrder) error
	MarkPaid(ctx context.Context, id, orderID string, conf models.PaymentConfirmation) error
	MarkLive(ctx context.Context, id string, at time.Time) error
	MarkCompleted(ctx context.Context, id string, from []models.SessionStatus, at time.Time) error

	// ClaimReminder flips reminderScheduled false→true and reports whether this caller won.
	ClaimReminder(ctx context.Context, id string) (bool, error)
	SetReminderTask(ctx context.Context, id, taskID string) error
	ReleaseReminder(ctx context.Context, id string) error

	ListByStudent(ctx context.Context, studentID string, statuses []models.SessionStatus) ([]models.BookingSession, error)
	ListByCounselor(ctx context.Context, counselorID string, statuses []models.SessionStatus, from, to time.Time) ([]models.BookingSession, error)
	ListStale(ctx context.Context, statuses []models.SessionStatus, updatedBefore time.Time) ([]models.BookingSession, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo returns a SessionRepository backed by the sessions collection.
func NewMongoSessionRepo() SessionRepository {
	return &mongoSessionRepo{
		coll: database.DB().Collection("sessions"),
	}
}
