package sessionRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counselbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoSessionRepo) Create(ctx context.Context, s models.BookingSession) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) GetByID(ctx context.Context, id string) (*models.BookingSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.BookingSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return &s, nil
}

// transition applies set to the session iff filter matches; no match is ErrStatusConflict.
func (r *mongoSessionRepo) transition(ctx context.Context, filter bson.M, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updatedAt"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrStatusConflict
	}
	return nil
}

func statusIn(id string, from []models.SessionStatus) bson.M {
	return bson.M{"id": id, "status": bson.M{"$in": from}}
}

func (r *mongoSessionRepo) SetDescription(ctx context.Context, id string, from []models.SessionStatus, text string) error {
	return r.transition(ctx, statusIn(id, from), bson.M{
		"description": text,
		"status":      models.StatusDescriptionAdded,
	})
}

func (r *mongoSessionRepo) StampSlot(ctx context.Context, id string, from []models.SessionStatus, stamp models.SlotStamp) error {
	filter := statusIn(id, from)
	filter["selectedSlot"] = nil
	return r.transition(ctx, filter, bson.M{
		"selectedSlot":     stamp.Slot,
		"sessionTimestamp": stamp.SessionTimestamp,
		"meetingLink":      stamp.MeetingLink,
		"status":           models.StatusSlotSelected,
	})
}

func (r *mongoSessionRepo) SetOrder(ctx context.Context, id string, from []models.SessionStatus, order models.PaymentOrder) error {
	return r.transition(ctx, statusIn(id, from), bson.M{
		"paymentOrder": order,
		"status":       models.StatusPaymentPending,
	})
}

func (r *mongoSessionRepo) MarkPaid(ctx context.Context, id, orderID string, conf models.PaymentConfirmation) error {
	filter := bson.M{
		"id":                   id,
		"status":               models.StatusPaymentPending,
		"paymentOrder.orderId": orderID,
	}
	return r.transition(ctx, filter, bson.M{
		"status":              models.StatusPaid,
		"paymentId":           conf.PaymentID,
		"paymentVerifiedAt":   conf.VerifiedAt,
		"paymentOrder.status": "paid",
	})
}

func (r *mongoSessionRepo) MarkLive(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, bson.M{"id": id, "status": models.StatusPaid}, bson.M{
		"status":   models.StatusLive,
		"joinedAt": at,
	})
}

func (r *mongoSessionRepo) MarkCompleted(ctx context.Context, id string, from []models.SessionStatus, at time.Time) error {
	return r.transition(ctx, statusIn(id, from), bson.M{
		"status":      models.StatusCompleted,
		"completedAt": at,
	})
}

func (r *mongoSessionRepo) ClaimReminder(ctx context.Context, id string) (bool, error) {
	err := r.transition(ctx, bson.M{"id": id, "reminderScheduled": false}, bson.M{"reminderScheduled": true})
	if errors.Is(err, ErrStatusConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoSessionRepo) SetReminderTask(ctx context.Context, id, taskID string) error {
	return r.transition(ctx, bson.M{"id": id}, bson.M{"reminderTaskId": taskID})
}

func (r *mongoSessionRepo) ReleaseReminder(ctx context.Context, id string) error {
	return r.transition(ctx, bson.M{"id": id}, bson.M{"reminderScheduled": false, "reminderTaskId": ""})
}
