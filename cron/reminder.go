package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sessionRepo "counselbook/database/repository/session"
	"counselbook/models"
	"counselbook/services/notification"
	"counselbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const sentMarkerTTL = 48 * time.Hour

// SessionReader loads the session a reminder refers to.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (*models.BookingSession, error)
}

// ReminderHandler delivers pre-session reminders. Delivery is at-least-once;
// a redis marker keeps redelivered tasks from notifying twice.
type ReminderHandler struct {
	Sessions SessionReader
	Notifier notification.NotificationService
	Dedupe   *redis.Client
	Metrics  *utils.BookingMetrics
	Logger   *zap.Logger
}

func sentMarker(sessionID string) string {
	return "reminder:sent:" + sessionID
}

func (h *ReminderHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil || p.SessionID == "" {
		h.Logger.Error("invalid reminder payload", zap.ByteString("payload", task.Payload()))
		return fmt.Errorf("invalid reminder payload: %w", asynq.SkipRetry)
	}

	sess, err := h.Sessions.GetByID(ctx, p.SessionID)
	if err != nil {
		if errors.Is(err, sessionRepo.ErrSessionNotFound) {
			h.Logger.Warn("reminder for unknown session", zap.String("sessionId", p.SessionID))
			return fmt.Errorf("session %s: %w", p.SessionID, asynq.SkipRetry)
		}
		return err
	}
	if sess.Status != models.StatusPaid && sess.Status != models.StatusLive {
		h.Metrics.ObserveReminder("skipped")
		h.Logger.Info("reminder skipped", zap.String("sessionId", sess.ID), zap.String("status", string(sess.Status)))
		return nil
	}

	first, err := h.Dedupe.SetNX(ctx, sentMarker(sess.ID), time.Now().Unix(), sentMarkerTTL).Result()
	if err != nil {
		return fmt.Errorf("reminder dedupe: %w", err)
	}
	if !first {
		h.Metrics.ObserveReminder("duplicate")
		return nil
	}

	if err := h.send(ctx, sess); err != nil {
		// let the retry deliver it
		if delErr := h.Dedupe.Del(ctx, sentMarker(sess.ID)).Err(); delErr != nil {
			h.Logger.Error("failed to clear reminder marker", zap.String("sessionId", sess.ID), zap.Error(delErr))
		}
		return err
	}
	h.Metrics.ObserveReminder("sent")
	return nil
}

// send notifies both participants; it fails only when nobody could be reached.
func (h *ReminderHandler) send(ctx context.Context, sess *models.BookingSession) error {
	when := ""
	if sess.SelectedSlot != nil {
		when = sess.SelectedSlot.Time
	}
	data := map[string]string{"type": "session_reminder", "sessionId": sess.ID}

	var errs []error
	if err := h.Notifier.Notify(ctx, models.TargetStudent, sess.Student.UID,
		"Your session starts soon", "Your counseling session starts at "+when+". You can join now.", data); err != nil {
		errs = append(errs, err)
	}
	if sess.SelectedSlot != nil {
		if err := h.Notifier.Notify(ctx, models.TargetCounselor, sess.SelectedSlot.CounselorID,
			"Upcoming session", "Your session with "+sess.Student.Username+" starts at "+when+".", data); err != nil {
			errs = append(errs, err)
		}
	}

	for _, err := range errs {
		h.Logger.Warn("reminder push failed", zap.String("sessionId", sess.ID), zap.Error(err))
	}
	if len(errs) == 2 || (sess.SelectedSlot == nil && len(errs) == 1) {
		return errors.Join(errs...)
	}
	return nil
}
