package counselor

import (
	"context"
	"errors"
	"sync"
	"time"

	counselorRepo "counselbook/database/repository/counselor"
	timeslotRepo "counselbook/database/repository/timeslot"
	"counselbook/models"
)

type memSlots struct {
	mu         sync.Mutex
	byID       map[string]models.Slot
	failInsert int // fail the Nth insert (1-based); 0 disables
	inserts    int
}

func newMemSlots() *memSlots { return &memSlots{byID: map[string]models.Slot{}} }

func (m *memSlots) Insert(_ context.Context, slot models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.failInsert != 0 && m.inserts == m.failInsert {
		return errors.New("write failed")
	}
	for _, s := range m.byID {
		if s.CounselorID == slot.CounselorID && s.Date == slot.Date && s.MinuteOfDay == slot.MinuteOfDay {
			return timeslotRepo.ErrSlotExists
		}
	}
	m.byID[slot.ID] = slot
	return nil
}

func (m *memSlots) GetByID(_ context.Context, id string) (*models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, timeslotRepo.ErrSlotNotFound
	}
	return &s, nil
}

func (m *memSlots) GetByCounselorAndDate(_ context.Context, counselorID, date string) ([]models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Slot
	for _, s := range m.byID {
		if s.CounselorID == counselorID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSlots) ListOpen(context.Context, models.SlotQuery, time.Time) ([]models.Slot, error) {
	return nil, nil
}

func (m *memSlots) Reserve(_ context.Context, slotID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[slotID]
	if !ok || s.IsBooked {
		return timeslotRepo.ErrSlotTaken
	}
	s.IsBooked, s.BookedBy = true, sessionID
	m.byID[slotID] = s
	return nil
}

func (m *memSlots) DeleteUnbooked(_ context.Context, slotID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[slotID]
	if !ok || s.IsBooked {
		return false, nil
	}
	delete(m.byID, slotID)
	return true, nil
}

func (m *memSlots) Relabel(_ context.Context, slotID, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[slotID]
	if !ok || s.IsBooked {
		return timeslotRepo.ErrSlotTaken
	}
	s.Time = label
	m.byID[slotID] = s
	return nil
}

func (m *memSlots) EnsureIndexes(context.Context) error { return nil }

func (m *memSlots) byMinute(counselorID, date string) map[int]models.Slot {
	slots, _ := m.GetByCounselorAndDate(context.Background(), counselorID, date)
	out := map[int]models.Slot{}
	for _, s := range slots {
		out[s.MinuteOfDay] = s
	}
	return out
}

type memWindows struct {
	mu   sync.Mutex
	rows map[string]models.AvailabilityWindow
}

func (m *memWindows) Upsert(_ context.Context, w models.AvailabilityWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]models.AvailabilityWindow{}
	}
	m.rows[w.CounselorID+"/"+w.Date] = w
	return nil
}

func (m *memWindows) List(_ context.Context, counselorID, from, to string) ([]models.AvailabilityWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AvailabilityWindow
	for _, w := range m.rows {
		if w.CounselorID == counselorID && (from == "" || w.Date >= from) && (to == "" || w.Date <= to) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memWindows) EnsureIndexes(context.Context) error { return nil }

type memCounselors struct {
	mu   sync.Mutex
	rows map[string]models.Counselor
}

func (m *memCounselors) GetByID(_ context.Context, id string) (*models.Counselor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, counselorRepo.ErrCounselorNotFound
	}
	return &c, nil
}

func (m *memCounselors) UpdateProfile(_ context.Context, id string, u models.CounselorProfileUpdate) (*models.Counselor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, counselorRepo.ErrCounselorNotFound
	}
	if u.Username != nil {
		c.Username = *u.Username
	}
	if u.Initials != nil {
		c.Initials = *u.Initials
	}
	if u.MeetingLink != nil {
		c.MeetingLink = *u.MeetingLink
	}
	if u.Timezone != nil {
		c.Timezone = *u.Timezone
	}
	m.rows[id] = c
	return &c, nil
}

func (m *memCounselors) SetFCMToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return counselorRepo.ErrCounselorNotFound
	}
	c.FCMToken = token
	m.rows[id] = c
	return nil
}

func (m *memCounselors) EnsureIndexes(context.Context) error { return nil }
