package timeslotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"counselbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoTimeSlotRepo) Insert(ctx context.Context, slot models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	now := time.Now()
	slot.CreatedAt, slot.UpdatedAt = now, now
	slot.IsBooked, slot.BookedBy = false, ""

	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotExists
		}
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

func (r *mongoTimeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to get slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *mongoTimeSlotRepo) Reserve(ctx context.Context, slotID, sessionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "isBooked": false}
	update := bson.M{"$set": bson.M{
		"isBooked":  true,
		"bookedBy":  sessionID,
		"updatedAt": time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (r *mongoTimeSlotRepo) DeleteUnbooked(ctx context.Context, slotID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": slotID, "isBooked": false})
	if err != nil {
		return false, fmt.Errorf("failed to delete slot %s: %w", slotID, err)
	}
	return res.DeletedCount == 1, nil
}

func (r *mongoTimeSlotRepo) Relabel(ctx context.Context, slotID, label string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": slotID, "isBooked": false},
		bson.M{"$set": bson.M{"time": label, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to relabel slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}
