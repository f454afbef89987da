package booking

import (
	"context"
	"errors"
	"time"

	sessionRepo "counselbook/database/repository/session"
	"counselbook/models"

	"go.uber.org/zap"
)

// transitions is the single source of truth for allowed status changes.
var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.StatusEmotionsSelected: {models.StatusDescriptionAdded, models.StatusSlotSelected},
	models.StatusDescriptionAdded: {models.StatusDescriptionAdded, models.StatusSlotSelected},
	models.StatusSlotSelected:     {models.StatusPaymentPending},
	models.StatusPaymentPending:   {models.StatusPaymentPending, models.StatusPaid},
	models.StatusPaid:             {models.StatusLive, models.StatusCompleted},
	models.StatusLive:             {models.StatusCompleted},
}

// CanTransition reports whether a session may move from one status to another.
func CanTransition(from, to models.SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// sourcesOf lists every status that may move to target, for conditional updates.
func sourcesOf(target models.SessionStatus) []models.SessionStatus {
	var from []models.SessionStatus
	for _, status := range statusOrder {
		if CanTransition(status, target) {
			from = append(from, status)
		}
	}
	return from
}

var statusOrder = []models.SessionStatus{
	models.StatusEmotionsSelected,
	models.StatusDescriptionAdded,
	models.StatusSlotSelected,
	models.StatusPaymentPending,
	models.StatusPaid,
	models.StatusLive,
	models.StatusCompleted,
}

var (
	prePaymentStatuses = []models.SessionStatus{
		models.StatusEmotionsSelected,
		models.StatusDescriptionAdded,
		models.StatusSlotSelected,
		models.StatusPaymentPending,
	}
	paidStatuses = []models.SessionStatus{
		models.StatusPaid,
		models.StatusLive,
		models.StatusCompleted,
	}
)

// CanJoin reports whether now is inside the join window of a session starting at sessionTS.
// The window opens exactly window before the start and never closes.
func CanJoin(sessionTS, now time.Time, window time.Duration) bool {
	return !now.Before(sessionTS.Add(-window))
}

func (s *DefaultBookingService) Join(ctx context.Context, id models.Identity, sessionID string) (*models.JoinResponse, error) {
	sess, err := s.loadOwned(ctx, id, sessionID)
	if err != nil {
		return nil, err
	}

	switch sess.Status {
	case models.StatusLive:
		return joinResponse(sess), nil
	case models.StatusPaid:
	default:
		return nil, withDetail(ErrInvalidTransition, "cannot join a session in %s", sess.Status)
	}

	if sess.SessionTimestamp == nil || sess.MeetingLink == nil {
		return nil, withDetail(ErrInvalidTransition, "session %s has no schedule", sessionID)
	}
	now := s.now()
	if !CanJoin(*sess.SessionTimestamp, now, s.Settings.JoinWindow) {
		return nil, ErrJoinWindowClosed
	}

	if err := s.Sessions.MarkLive(ctx, sessionID, now); err != nil {
		if !errors.Is(err, sessionRepo.ErrStatusConflict) {
			return nil, err
		}
		current, err := s.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if current.Status == models.StatusLive {
			return joinResponse(current), nil
		}
		return nil, withDetail(ErrInvalidTransition, "session moved to %s", current.Status)
	}

	sess.Status = models.StatusLive
	sess.JoinedAt = &now
	s.syncRecord(ctx, *sess)
	s.emitLifecycle(*sess)
	return joinResponse(sess), nil
}

func joinResponse(sess *models.BookingSession) *models.JoinResponse {
	resp := &models.JoinResponse{Status: sess.Status}
	if sess.MeetingLink != nil {
		resp.MeetingLink = *sess.MeetingLink
	}
	return resp
}

// Complete is performed by the counselor of the booked slot. The slot stays booked.
func (s *DefaultBookingService) Complete(ctx context.Context, id models.Identity, sessionID string) (*models.BookingSession, error) {
	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if id.Role != models.RoleCounselor || sess.SelectedSlot == nil || sess.SelectedSlot.CounselorID != id.UID {
		return nil, ErrForbidden
	}
	if sess.Status == models.StatusCompleted {
		return sess, nil
	}
	if !CanTransition(sess.Status, models.StatusCompleted) {
		return nil, withDetail(ErrInvalidTransition, "cannot complete a session in %s", sess.Status)
	}

	now := s.now()
	if err := s.Sessions.MarkCompleted(ctx, sessionID, sourcesOf(models.StatusCompleted), now); err != nil {
		if !errors.Is(err, sessionRepo.ErrStatusConflict) {
			return nil, err
		}
		current, err := s.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if current.Status == models.StatusCompleted {
			return current, nil
		}
		return nil, withDetail(ErrInvalidTransition, "session moved to %s", current.Status)
	}

	sess.Status = models.StatusCompleted
	sess.CompletedAt = &now
	s.syncRecord(ctx, *sess)
	s.emitLifecycle(*sess)
	s.log().Info("session completed", zap.String("sessionId", sessionID), zap.String("counselorId", id.UID))
	return sess, nil
}

func (s *DefaultBookingService) ListCounselorSessions(ctx context.Context, id models.Identity, from, to time.Time) ([]models.CounselorSession, error) {
	if id.Role != models.RoleCounselor {
		return nil, ErrForbidden
	}
	sessions, err := s.Sessions.ListByCounselor(ctx, id.UID, paidStatuses, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]models.CounselorSession, 0, len(sessions))
	for _, sess := range sessions {
		view := models.CounselorSession{
			SessionID:       sess.ID,
			StudentUsername: sess.Student.Username,
			Status:          sess.Status,
			Emotions:        sess.Emotions,
		}
		if sess.SelectedSlot != nil {
			view.Date, view.Time = sess.SelectedSlot.Date, sess.SelectedSlot.Time
		}
		if sess.SessionTimestamp != nil {
			view.SessionTimestamp = *sess.SessionTimestamp
		}
		if sess.Description != nil {
			view.Description = *sess.Description
		}
		out = append(out, view)
	}
	return out, nil
}

// ListAbandoned lists unpaid sessions untouched for olderThan. Their slots stay booked.
func (s *DefaultBookingService) ListAbandoned(ctx context.Context, id models.Identity, olderThan time.Duration) ([]models.BookingSession, error) {
	if !id.IsAdmin() {
		return nil, ErrForbidden
	}
	if olderThan <= 0 {
		return nil, withDetail(ErrInvalidInput, "olderThan must be positive")
	}
	return s.Sessions.ListStale(ctx, prePaymentStatuses, s.now().Add(-olderThan))
}
