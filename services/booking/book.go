package booking

import (
	"context"
	"errors"
	"strings"

	counselorRepo "counselbook/database/repository/counselor"
	sessionRepo "counselbook/database/repository/session"
	timeslotRepo "counselbook/database/repository/timeslot"
	"counselbook/models"
	"counselbook/utils"

	"go.uber.org/zap"
)

// Book reserves slotID for the session and stamps the session in one transaction.
// Exactly one of several concurrent callers for the same slot succeeds; the rest get ErrSlotUnavailable.
func (s *DefaultBookingService) Book(ctx context.Context, id models.Identity, sessionID, slotID string) (*models.BookingSession, error) {
	now := s.now()
	var (
		booked models.BookingSession
		slot   models.Slot
	)

	err := s.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		sess, err := s.loadOwned(txCtx, id, sessionID)
		if err != nil {
			return err
		}
		if sess.SelectedSlot != nil || !CanTransition(sess.Status, models.StatusSlotSelected) {
			return withDetail(ErrInvalidTransition, "session %s already holds a slot or is in %s", sessionID, sess.Status)
		}

		sl, err := s.Slots.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, timeslotRepo.ErrSlotNotFound) {
				return ErrSlotUnavailable
			}
			return err
		}
		if sl.IsBooked {
			return ErrSlotUnavailable
		}

		counselor, err := s.Counselors.GetByID(txCtx, sl.CounselorID)
		if err != nil {
			if errors.Is(err, counselorRepo.ErrCounselorNotFound) {
				return withDetail(ErrSlotUnavailable, "counselor %s not found", sl.CounselorID)
			}
			return err
		}
		if strings.TrimSpace(counselor.MeetingLink) == "" {
			return ErrMeetingLinkMissing
		}

		loc := utils.LoadLocation(counselor.Timezone, s.Settings.DefaultTimezone)
		startsAt, err := utils.SessionTimestamp(sl.Date, sl.Time, loc)
		if err != nil {
			return withDetail(ErrSlotUnavailable, "slot %s has an unreadable time: %v", slotID, err)
		}
		if !startsAt.After(now) {
			return withDetail(ErrSlotUnavailable, "slot %s already started", slotID)
		}

		if err := s.Slots.Reserve(txCtx, slotID, sessionID); err != nil {
			if errors.Is(err, timeslotRepo.ErrSlotTaken) {
				return ErrSlotUnavailable
			}
			return err
		}

		stamp := models.SlotStamp{
			Slot: models.SelectedSlot{
				Date:              sl.Date,
				Time:              sl.Time,
				CounselorID:       counselor.ID,
				CounselorInitials: counselor.Initials,
				CounselorUsername: counselor.Username,
				CounselorEmail:    counselor.Email,
				SlotDocID:         sl.ID,
			},
			SessionTimestamp: startsAt,
			MeetingLink:      counselor.MeetingLink,
		}
		if err := s.Sessions.StampSlot(txCtx, sessionID, sourcesOf(models.StatusSlotSelected), stamp); err != nil {
			if errors.Is(err, sessionRepo.ErrStatusConflict) {
				return ErrInvalidTransition
			}
			return err
		}

		sess.SelectedSlot = &stamp.Slot
		sess.SessionTimestamp = &stamp.SessionTimestamp
		sess.MeetingLink = &stamp.MeetingLink
		sess.Status = models.StatusSlotSelected
		sess.UpdatedAt = now
		booked = *sess
		slot = *sl
		return nil
	})
	if err != nil {
		s.Metrics.ObserveBooking(bookingOutcome(err))
		if errors.Is(err, ErrSlotUnavailable) {
			s.log().Info("slot booking lost", zap.String("sessionId", sessionID), zap.String("slotId", slotID), zap.Error(err))
		}
		return nil, err
	}

	s.Metrics.ObserveBooking("booked")
	s.log().Info("slot booked",
		zap.String("sessionId", sessionID),
		zap.String("slotId", slotID),
		zap.String("counselorId", slot.CounselorID),
	)
	s.emitSlotChange(ctx, models.SlotEvent{
		Type:        models.SlotEventBooked,
		CounselorID: slot.CounselorID,
		Date:        slot.Date,
		SlotID:      slot.ID,
		At:          now,
	})
	s.emitLifecycle(booked)
	return &booked, nil
}

func bookingOutcome(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return "error"
}
