package counselor

import (
	"context"
	"errors"
	"sort"
	"time"

	counselorRepo "counselbook/database/repository/counselor"
	timeslotRepo "counselbook/database/repository/timeslot"
	"counselbook/models"
	"counselbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type desiredTime struct {
	label  string
	minute int
}

// Publish reconciles the counselor's slots for date with desiredTimes.
// Missing times are created, unbooked extras removed, booked extras retained.
// The diff is recomputed from stored state, so a retry after partial failure converges.
func (s *DefaultCounselorService) Publish(ctx context.Context, id models.Identity, date string, desiredTimes []string) (*models.PublishResult, error) {
	if id.Role != models.RoleCounselor {
		return nil, ErrForbidden
	}

	profile, err := s.Counselors.GetByID(ctx, id.UID)
	if err != nil {
		if errors.Is(err, counselorRepo.ErrCounselorNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	loc := utils.LoadLocation(profile.Timezone, s.Rules.DefaultTimezone)

	desired, err := s.validate(date, desiredTimes, s.now().In(loc))
	if err != nil {
		return nil, err
	}

	current, err := s.Slots.GetByCounselorAndDate(ctx, id.UID, date)
	if err != nil {
		return nil, err
	}
	existing := make(map[int]models.Slot, len(current))
	for _, slot := range current {
		existing[slot.MinuteOfDay] = slot
	}
	wanted := make(map[int]bool, len(desired))

	result := &models.PublishResult{
		Date:           date,
		Times:          make([]string, 0, len(desired)),
		Created:        []string{},
		Removed:        []string{},
		RetainedBooked: []string{},
	}

	for _, d := range desired {
		wanted[d.minute] = true
		result.Times = append(result.Times, d.label)
		if slot, ok := existing[d.minute]; ok {
			if !slot.IsBooked && slot.Time != d.label {
				if err := s.Slots.Relabel(ctx, slot.ID, d.label); err != nil && !errors.Is(err, timeslotRepo.ErrSlotTaken) {
					return nil, err
				}
			}
			continue
		}
		startsAt, err := utils.SessionTimestamp(date, d.label, loc)
		if err != nil {
			return nil, invalidWindow("%v", err)
		}
		slot := models.Slot{
			ID:          uuid.New().String(),
			CounselorID: id.UID,
			Date:        date,
			Time:        d.label,
			MinuteOfDay: d.minute,
			StartsAt:    startsAt,
		}
		if err := s.Slots.Insert(ctx, slot); err != nil {
			if errors.Is(err, timeslotRepo.ErrSlotExists) {
				continue
			}
			return nil, err
		}
		result.Created = append(result.Created, d.label)
	}

	for _, slot := range sortedByMinute(current) {
		if wanted[slot.MinuteOfDay] {
			continue
		}
		if slot.IsBooked {
			result.RetainedBooked = append(result.RetainedBooked, slot.Time)
			continue
		}
		deleted, err := s.Slots.DeleteUnbooked(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		if deleted {
			result.Removed = append(result.Removed, slot.Time)
		} else {
			// booked between our read and the guarded delete
			result.RetainedBooked = append(result.RetainedBooked, slot.Time)
		}
	}

	window := models.AvailabilityWindow{CounselorID: id.UID, Date: date, Times: result.Times}
	if err := s.Availability.Upsert(ctx, window); err != nil {
		return nil, err
	}

	s.Metrics.ObservePublish(len(result.Created), len(result.Removed), len(result.RetainedBooked))
	s.log().Info("availability published",
		zap.String("counselorId", id.UID),
		zap.String("date", date),
		zap.Strings("created", result.Created),
		zap.Strings("removed", result.Removed),
		zap.Strings("retainedBooked", result.RetainedBooked),
	)
	if s.SlotFeed != nil {
		evt := models.SlotEvent{Type: models.SlotEventPublished, CounselorID: id.UID, Date: date, At: s.now()}
		if err := s.SlotFeed.Publish(ctx, evt); err != nil {
			s.log().Warn("slot change event dropped", zap.Error(err))
		}
	}
	return result, nil
}

// validate returns the desired times in canonical form, ordered by minute of day.
// now is the counselor's local time; for today only later minutes are accepted.
func (s *DefaultCounselorService) validate(date string, times []string, now time.Time) ([]desiredTime, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, invalidWindow("date %q is not YYYY-MM-DD", date)
	}
	today := utils.TodayIn(now, now.Location())
	if date < today {
		return nil, invalidWindow("date %s is in the past", date)
	}
	nowMinute := -1
	if date == today {
		nowMinute = now.Hour()*60 + now.Minute()
	}
	if limit := s.Rules.MaxTimesPerDay; limit > 0 && len(times) > limit {
		return nil, invalidWindow("at most %d times per day", limit)
	}

	seen := make(map[int]bool, len(times))
	out := make([]desiredTime, 0, len(times))
	for _, raw := range times {
		label, minute, err := utils.CanonicalTimeLabel(raw)
		if err != nil {
			return nil, invalidWindow("time %q is not HH:MM or HH:MM AM/PM", raw)
		}
		if g := s.Rules.GranularityMinutes; g > 0 && minute%g != 0 {
			return nil, invalidWindow("time %q is not on a %d-minute boundary", raw, g)
		}
		if minute <= nowMinute {
			return nil, invalidWindow("time %q has already passed today", raw)
		}
		if seen[minute] {
			return nil, invalidWindow("time %q is listed twice", raw)
		}
		seen[minute] = true
		out = append(out, desiredTime{label: label, minute: minute})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].minute < out[j].minute })
	return out, nil
}

func sortedByMinute(slots []models.Slot) []models.Slot {
	out := append([]models.Slot(nil), slots...)
	sort.Slice(out, func(i, j int) bool { return out[i].MinuteOfDay < out[j].MinuteOfDay })
	return out
}

func (s *DefaultCounselorService) GetAvailability(ctx context.Context, counselorID, fromDate, toDate string) ([]models.AvailabilityWindow, error) {
	for _, d := range []string{fromDate, toDate} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return nil, invalidWindow("date %q is not YYYY-MM-DD", d)
		}
	}
	windows, err := s.Availability.List(ctx, counselorID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	if windows == nil {
		windows = []models.AvailabilityWindow{}
	}
	return windows, nil
}
