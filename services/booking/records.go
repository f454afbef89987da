package booking

import (
	"context"
	"sort"

	"counselbook/models"

	"go.uber.org/zap"
)

// ListStudentBookings serves the dashboard projection, repairing it from sessions.
// Sessions win on conflict; records with no paid session behind them are hidden.
func (s *DefaultBookingService) ListStudentBookings(ctx context.Context, id models.Identity) (*models.BookingList, error) {
	if id.Role != models.RoleStudent {
		return nil, ErrForbidden
	}

	records, recErr := s.Records.ListByStudent(ctx, id.UID)
	if recErr != nil {
		s.log().Warn("booking records unavailable", zap.String("uid", id.UID), zap.Error(recErr))
	}
	sessions, sessErr := s.Sessions.ListByStudent(ctx, id.UID, paidStatuses)
	if sessErr != nil {
		if recErr != nil {
			return nil, sessErr
		}
		s.log().Warn("serving stale booking records", zap.String("uid", id.UID), zap.Error(sessErr))
		if records == nil {
			records = []models.BookingRecord{}
		}
		return &models.BookingList{Bookings: records, Stale: true}, nil
	}

	existing := make(map[string]models.BookingRecord, len(records))
	for _, rec := range records {
		existing[rec.SessionID] = rec
	}

	now := s.now()
	out := make([]models.BookingRecord, 0, len(sessions))
	for _, sess := range sessions {
		want := models.RecordFromSession(sess, now)
		if have, ok := existing[sess.ID]; ok && have.SameAs(want) {
			out = append(out, have)
			continue
		}
		if err := s.Records.Upsert(ctx, want); err != nil {
			s.log().Warn("booking record repair failed", zap.String("sessionId", sess.ID), zap.Error(err))
		}
		out = append(out, want)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionTimestamp.After(out[j].SessionTimestamp)
	})
	return &models.BookingList{Bookings: out}, nil
}
