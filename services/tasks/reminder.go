package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"counselbook/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// ReminderTaskID is deterministic so a duplicate enqueue for the same session is rejected by asynq.
func ReminderTaskID(sessionID string) string {
	return "reminder:" + sessionID
}

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(ReminderTaskID(payload.SessionID)),
		asynq.MaxRetry(5),
		// Keep the task id reserved after completion so a late re-enqueue is still a conflict.
		asynq.Retention(48 * time.Hour),
	}
	return task, opts, nil
}

// ReminderScheduler arms a one-shot reminder and returns a handle for it.
type ReminderScheduler interface {
	ScheduleAt(ctx context.Context, fireAt time.Time, payload models.ReminderPayload) (string, error)
}

// Enqueuer is the subset of *asynq.Client used for scheduling.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type AsynqReminderScheduler struct {
	Client Enqueuer
}

func NewAsynqReminderScheduler(client Enqueuer) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client}
}

// ScheduleAt enqueues the reminder. An already-enqueued reminder for the same
// session counts as scheduled and returns its id.
func (s *AsynqReminderScheduler) ScheduleAt(ctx context.Context, fireAt time.Time, payload models.ReminderPayload) (string, error) {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return "", fmt.Errorf("failed to build reminder task: %w", err)
	}
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return ReminderTaskID(payload.SessionID), nil
		}
		return "", fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return info.ID, nil
}
