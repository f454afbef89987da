package booking

import (
	"context"
	"sort"

	"counselbook/models"
	"counselbook/utils"
)

// ListOpenSlots returns bookable slots grouped by minute of day, earliest first.
// "13:00" and "01:00 PM" land in one group labelled after its first slot.
// Slots at or before now are omitted but kept in storage.
func (s *DefaultBookingService) ListOpenSlots(ctx context.Context, q models.SlotQuery) ([]models.SlotGroup, error) {
	now := s.now()
	slots, err := s.Slots.ListOpen(ctx, q, now)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.MinuteOfDay != b.MinuteOfDay {
			return a.MinuteOfDay < b.MinuteOfDay
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.CounselorID < b.CounselorID
	})

	groups := []models.SlotGroup{}
	index := map[int]int{}
	for _, slot := range slots {
		if slot.IsBooked || !slot.StartsAt.After(now) {
			continue
		}
		i, ok := index[slot.MinuteOfDay]
		if !ok {
			i = len(groups)
			index[slot.MinuteOfDay] = i
			groups = append(groups, models.SlotGroup{Time: groupLabel(slot)})
		}
		groups[i].Slots = append(groups[i].Slots, slot)
	}
	return groups, nil
}

func groupLabel(slot models.Slot) string {
	if label, _, err := utils.CanonicalTimeLabel(slot.Time); err == nil {
		return label
	}
	return utils.FormatTimeLabel(slot.MinuteOfDay, utils.Style24h)
}
