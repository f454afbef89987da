package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"counselbook/database"
	counselorRepo "counselbook/database/repository/counselor"
	sessionRepo "counselbook/database/repository/session"
	timeslotRepo "counselbook/database/repository/timeslot"
	"counselbook/models"
	"counselbook/services/payment"
	"counselbook/utils"

	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

var baseNow = time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

// ---- sessions ----

type memSessions struct {
	mu   sync.Mutex
	byID map[string]models.BookingSession
	// failList makes ListByStudent fail, simulating an unavailable store.
	failList error
	// failStamp makes StampSlot fail after any earlier writes in the same unit of work.
	failStamp error
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]models.BookingSession{}}
}

func cloneSession(s models.BookingSession) models.BookingSession {
	c := s
	c.Emotions = append([]string(nil), s.Emotions...)
	if s.Description != nil {
		v := *s.Description
		c.Description = &v
	}
	if s.SelectedSlot != nil {
		v := *s.SelectedSlot
		c.SelectedSlot = &v
	}
	if s.SessionTimestamp != nil {
		v := *s.SessionTimestamp
		c.SessionTimestamp = &v
	}
	if s.MeetingLink != nil {
		v := *s.MeetingLink
		c.MeetingLink = &v
	}
	if s.PaymentOrder != nil {
		v := *s.PaymentOrder
		c.PaymentOrder = &v
	}
	return c
}

func (m *memSessions) Create(_ context.Context, s models.BookingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = cloneSession(s)
	return nil
}

func (m *memSessions) GetByID(_ context.Context, id string) (*models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, sessionRepo.ErrSessionNotFound
	}
	c := cloneSession(s)
	return &c, nil
}

func (m *memSessions) update(id string, match func(models.BookingSession) bool, apply func(*models.BookingSession)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || !match(s) {
		return sessionRepo.ErrStatusConflict
	}
	apply(&s)
	s.UpdatedAt = time.Now()
	m.byID[id] = s
	return nil
}

func in(status models.SessionStatus, from []models.SessionStatus) bool {
	for _, f := range from {
		if f == status {
			return true
		}
	}
	return false
}

func (m *memSessions) SetDescription(_ context.Context, id string, from []models.SessionStatus, text string) error {
	return m.update(id, func(s models.BookingSession) bool { return in(s.Status, from) }, func(s *models.BookingSession) {
		s.Description = &text
		s.Status = models.StatusDescriptionAdded
	})
}

func (m *memSessions) StampSlot(_ context.Context, id string, from []models.SessionStatus, stamp models.SlotStamp) error {
	m.mu.Lock()
	fail := m.failStamp
	m.mu.Unlock()
	if fail != nil {
		return fail
	}
	return m.update(id, func(s models.BookingSession) bool { return in(s.Status, from) && s.SelectedSlot == nil }, func(s *models.BookingSession) {
		slot, ts, link := stamp.Slot, stamp.SessionTimestamp, stamp.MeetingLink
		s.SelectedSlot, s.SessionTimestamp, s.MeetingLink = &slot, &ts, &link
		s.Status = models.StatusSlotSelected
	})
}

func (m *memSessions) SetOrder(_ context.Context, id string, from []models.SessionStatus, order models.PaymentOrder) error {
	return m.update(id, func(s models.BookingSession) bool { return in(s.Status, from) }, func(s *models.BookingSession) {
		s.PaymentOrder = &order
		s.Status = models.StatusPaymentPending
	})
}

func (m *memSessions) MarkPaid(_ context.Context, id, orderID string, conf models.PaymentConfirmation) error {
	return m.update(id, func(s models.BookingSession) bool {
		return s.Status == models.StatusPaymentPending && s.PaymentOrder != nil && s.PaymentOrder.OrderID == orderID
	}, func(s *models.BookingSession) {
		at := conf.VerifiedAt
		s.Status = models.StatusPaid
		s.PaymentID = conf.PaymentID
		s.PaymentVerifiedAt = &at
		s.PaymentOrder.Status = "paid"
	})
}

func (m *memSessions) MarkLive(_ context.Context, id string, at time.Time) error {
	return m.update(id, func(s models.BookingSession) bool { return s.Status == models.StatusPaid }, func(s *models.BookingSession) {
		s.Status = models.StatusLive
		s.JoinedAt = &at
	})
}

func (m *memSessions) MarkCompleted(_ context.Context, id string, from []models.SessionStatus, at time.Time) error {
	return m.update(id, func(s models.BookingSession) bool { return in(s.Status, from) }, func(s *models.BookingSession) {
		s.Status = models.StatusCompleted
		s.CompletedAt = &at
	})
}

func (m *memSessions) ClaimReminder(_ context.Context, id string) (bool, error) {
	err := m.update(id, func(s models.BookingSession) bool { return !s.ReminderScheduled }, func(s *models.BookingSession) {
		s.ReminderScheduled = true
	})
	return err == nil, nil
}

func (m *memSessions) SetReminderTask(_ context.Context, id, taskID string) error {
	return m.update(id, func(models.BookingSession) bool { return true }, func(s *models.BookingSession) { s.ReminderTaskID = taskID })
}

func (m *memSessions) ReleaseReminder(_ context.Context, id string) error {
	return m.update(id, func(models.BookingSession) bool { return true }, func(s *models.BookingSession) {
		s.ReminderScheduled = false
		s.ReminderTaskID = ""
	})
}

func (m *memSessions) ListByStudent(_ context.Context, studentID string, statuses []models.SessionStatus) ([]models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []models.BookingSession
	for _, s := range m.byID {
		if s.Student.UID == studentID && (len(statuses) == 0 || in(s.Status, statuses)) {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (m *memSessions) ListByCounselor(_ context.Context, counselorID string, statuses []models.SessionStatus, from, to time.Time) ([]models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingSession
	for _, s := range m.byID {
		if s.SelectedSlot == nil || s.SelectedSlot.CounselorID != counselorID || !in(s.Status, statuses) {
			continue
		}
		out = append(out, cloneSession(s))
	}
	return out, nil
}

func (m *memSessions) ListStale(_ context.Context, statuses []models.SessionStatus, updatedBefore time.Time) ([]models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingSession
	for _, s := range m.byID {
		if in(s.Status, statuses) && s.UpdatedAt.Before(updatedBefore) {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (m *memSessions) EnsureIndexes(context.Context) error { return nil }

func (m *memSessions) get(t *testing.T, id string) models.BookingSession {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	require.True(t, ok, "session %s missing", id)
	return cloneSession(s)
}

// ---- slots ----

type memSlots struct {
	mu   sync.Mutex
	byID map[string]models.Slot
}

func newMemSlots() *memSlots { return &memSlots{byID: map[string]models.Slot{}} }

func (m *memSlots) Insert(_ context.Context, slot models.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memSlots) ListOpen(_ context.Context, q models.SlotQuery, now time.Time) ([]models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Slot
	for _, s := range m.byID {
		if s.IsBooked || !s.StartsAt.After(now) {
			continue
		}
		if q.FromDate != "" && s.Date < q.FromDate || q.ToDate != "" && s.Date > q.ToDate {
			continue
		}
		out = append(out, s)
	}
	return out, nil
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

// ---- records ----

type memRecords struct {
	mu      sync.Mutex
	rows    map[string]models.BookingRecord
	upserts int
}

func newMemRecords() *memRecords { return &memRecords{rows: map[string]models.BookingRecord{}} }

func (m *memRecords) Upsert(_ context.Context, r models.BookingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.StudentID+"/"+r.SessionID] = r
	m.upserts++
	return nil
}

func (m *memRecords) ListByStudent(_ context.Context, studentID string) ([]models.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingRecord
	for _, r := range m.rows {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) EnsureIndexes(context.Context) error { return nil }

// ---- counselors, students ----

type memCounselors map[string]models.Counselor

func (m memCounselors) GetByID(_ context.Context, id string) (*models.Counselor, error) {
	c, ok := m[id]
	if !ok {
		return nil, counselorRepo.ErrCounselorNotFound
	}
	return &c, nil
}

type nopStudents struct{}

func (nopStudents) Upsert(context.Context, models.Student) error { return nil }

// ---- side effects ----

type directTx struct{}

func (directTx) WithTransaction(ctx context.Context, fn database.TxFunc) error { return fn(ctx) }

// snapshotTx restores the session and slot stores when fn fails, like an aborted transaction.
type snapshotTx struct {
	sessions *memSessions
	slots    *memSlots
}

func (tx snapshotTx) WithTransaction(ctx context.Context, fn database.TxFunc) error {
	tx.sessions.mu.Lock()
	sessions := make(map[string]models.BookingSession, len(tx.sessions.byID))
	for k, v := range tx.sessions.byID {
		sessions[k] = cloneSession(v)
	}
	tx.sessions.mu.Unlock()

	tx.slots.mu.Lock()
	slots := make(map[string]models.Slot, len(tx.slots.byID))
	for k, v := range tx.slots.byID {
		slots[k] = v
	}
	tx.slots.mu.Unlock()

	if err := fn(ctx); err != nil {
		tx.sessions.mu.Lock()
		tx.sessions.byID = sessions
		tx.sessions.mu.Unlock()
		tx.slots.mu.Lock()
		tx.slots.byID = slots
		tx.slots.mu.Unlock()
		return err
	}
	return nil
}

type countingNotifier struct {
	mu   sync.Mutex
	sent []models.PushMessage
}

func (n *countingNotifier) Notify(_ context.Context, target, userID, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, models.PushMessage{Target: target, UserID: userID, Title: title, Body: body})
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeReminders struct {
	mu     sync.Mutex
	fireAt map[string]time.Time
	calls  int
	err    error
}

func (f *fakeReminders) ScheduleAt(_ context.Context, fireAt time.Time, p models.ReminderPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.fireAt == nil {
		f.fireAt = map[string]time.Time{}
	}
	f.fireAt[p.SessionID] = fireAt
	return "reminder:" + p.SessionID, nil
}

func (f *fakeReminders) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ---- harness ----

type harness struct {
	svc        *DefaultBookingService
	sessions   *memSessions
	slots      *memSlots
	records    *memRecords
	counselors memCounselors
	notifier   *countingNotifier
	reminders  *fakeReminders
	now        time.Time
	mu         sync.Mutex
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sessions: newMemSessions(),
		slots:    newMemSlots(),
		records:  newMemRecords(),
		counselors: memCounselors{
			"c1": {ID: "c1", Username: "asha", Initials: "AK", Email: "asha@example.com", MeetingLink: "https://meet.example.com/asha", Timezone: "UTC"},
			"c2": {ID: "c2", Username: "ravi", Initials: "RS", Email: "ravi@example.com", Timezone: "UTC"},
		},
		notifier:  &countingNotifier{},
		reminders: &fakeReminders{},
		now:       baseNow,
	}
	h.svc = &DefaultBookingService{
		Sessions:   h.sessions,
		Slots:      h.slots,
		Records:    h.records,
		Counselors: h.counselors,
		Students:   nopStudents{},
		Tx:         directTx{},
		Gateway:    payment.NewFakeGateway(testSecret),
		Notifier:   h.notifier,
		Reminders:  h.reminders,
		Settings: Settings{
			FeeAmount:       9900,
			FeeCurrency:     "INR",
			PaymentKeyID:    "key_test",
			DefaultTimezone: "UTC",
			JoinWindow:      5 * time.Minute,
			ReminderLead:    5 * time.Minute,
		},
		Now: h.clock,
	}
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) setNow(t time.Time) {
	h.mu.Lock()
	h.now = t
	h.mu.Unlock()
}

func student(uid string) models.Identity {
	return models.Identity{UID: uid, Email: uid + "@example.com", EmailVerified: true, Role: models.RoleStudent}
}

func counselorID(uid string) models.Identity {
	return models.Identity{UID: uid, Email: uid + "@example.com", EmailVerified: true, Role: models.RoleCounselor}
}

// addSlot inserts an open slot for counselor on date at a 24h label.
func (h *harness) addSlot(t *testing.T, id, counselor, date, label string) models.Slot {
	t.Helper()
	minutes, _, err := utils.ParseTimeLabel(label)
	require.NoError(t, err)
	startsAt, err := utils.SessionTimestamp(date, label, time.UTC)
	require.NoError(t, err)
	slot := models.Slot{ID: id, CounselorID: counselor, Date: date, Time: label, MinuteOfDay: minutes, StartsAt: startsAt}
	require.NoError(t, h.slots.Insert(context.Background(), slot))
	return slot
}

func (h *harness) startSession(t *testing.T, id models.Identity) string {
	t.Helper()
	sess, err := h.svc.StartSession(context.Background(), id, []string{"anxious"})
	require.NoError(t, err)
	return sess.ID
}

// paidSession runs a session through booking and payment for slotID.
func (h *harness) paidSession(t *testing.T, id models.Identity, slotID string) string {
	t.Helper()
	ctx := context.Background()
	sessionID := h.startSession(t, id)
	_, err := h.svc.Book(ctx, id, sessionID, slotID)
	require.NoError(t, err)
	order, err := h.svc.CreateOrder(ctx, id, sessionID)
	require.NoError(t, err)
	_, err = h.svc.VerifyPayment(ctx, id, sessionID, models.VerifyPaymentRequest{
		OrderID:   order.OrderID,
		PaymentID: "pay_" + sessionID,
		Signature: payment.Sign(testSecret, order.OrderID, "pay_"+sessionID),
	})
	require.NoError(t, err)
	return sessionID
}
