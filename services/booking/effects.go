package booking

import (
	"context"
	"time"

	"counselbook/models"

	"go.uber.org/zap"
)

const (
	notifyTimeout    = 10 * time.Second
	lifecycleTimeout = 5 * time.Second
)

// notifyAsync delivers pushes off the request path. Failures are logged only.
func (s *DefaultBookingService) notifyAsync(msgs ...models.PushMessage) {
	if s.Notifier == nil {
		return
	}
	for _, m := range msgs {
		go func(m models.PushMessage) {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := s.Notifier.Notify(ctx, m.Target, m.UserID, m.Title, m.Body, m.Data); err != nil {
				s.log().Warn("push notification failed",
					zap.String("target", m.Target),
					zap.String("userId", m.UserID),
					zap.Error(err),
				)
			}
		}(m)
	}
}

// ensureReminder arms the pre-session reminder at most once per session.
func (s *DefaultBookingService) ensureReminder(ctx context.Context, sess *models.BookingSession) {
	if s.Reminders == nil || sess.ReminderScheduled || sess.SessionTimestamp == nil {
		return
	}
	claimed, err := s.Sessions.ClaimReminder(ctx, sess.ID)
	if err != nil {
		s.log().Warn("reminder claim failed", zap.String("sessionId", sess.ID), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	fireAt := sess.SessionTimestamp.Add(-s.Settings.ReminderLead)
	if now := s.now(); fireAt.Before(now) {
		fireAt = now
	}
	taskID, err := s.Reminders.ScheduleAt(ctx, fireAt, models.ReminderPayload{SessionID: sess.ID})
	if err != nil {
		s.Metrics.ObserveReminder("schedule_failed")
		s.log().Error("reminder scheduling failed", zap.String("sessionId", sess.ID), zap.Error(err))
		if err := s.Sessions.ReleaseReminder(ctx, sess.ID); err != nil {
			s.log().Error("reminder claim release failed", zap.String("sessionId", sess.ID), zap.Error(err))
		}
		return
	}
	if err := s.Sessions.SetReminderTask(ctx, sess.ID, taskID); err != nil {
		s.log().Warn("failed to store reminder task id", zap.String("sessionId", sess.ID), zap.Error(err))
	}
	sess.ReminderScheduled = true
	sess.ReminderTaskID = taskID
	s.Metrics.ObserveReminder("scheduled")
}

// syncRecord refreshes the student's projection row. Reads repair drift, so failures are logged only.
func (s *DefaultBookingService) syncRecord(ctx context.Context, sess models.BookingSession) {
	if s.Records == nil || !sess.Status.IsPaid() {
		return
	}
	if err := s.Records.Upsert(ctx, models.RecordFromSession(sess, s.now())); err != nil {
		s.log().Warn("booking record upsert failed", zap.String("sessionId", sess.ID), zap.Error(err))
	}
}

// emitLifecycle publishes the session's new status off the request path.
func (s *DefaultBookingService) emitLifecycle(sess models.BookingSession) {
	if s.Lifecycle == nil {
		return
	}
	evt := models.SessionEvent{
		SessionID: sess.ID,
		StudentID: sess.Student.UID,
		Status:    sess.Status,
		At:        s.now(),
	}
	if sess.SelectedSlot != nil {
		evt.CounselorID = sess.SelectedSlot.CounselorID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer cancel()
		if err := s.Lifecycle.PublishSessionEvent(ctx, evt); err != nil {
			s.log().Warn("lifecycle event dropped", zap.String("sessionId", evt.SessionID), zap.Error(err))
		}
	}()
}

func (s *DefaultBookingService) emitSlotChange(ctx context.Context, evt models.SlotEvent) {
	if s.SlotFeed == nil {
		return
	}
	if err := s.SlotFeed.Publish(ctx, evt); err != nil {
		s.log().Warn("slot change event dropped", zap.String("slotId", evt.SlotID), zap.Error(err))
	}
}
