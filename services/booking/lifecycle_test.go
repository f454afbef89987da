package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"counselbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanJoin_Boundary(t *testing.T) {
	ts := time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC)
	window := 5 * time.Minute

	assert.False(t, CanJoin(ts, ts.Add(-5*time.Minute-time.Second), window))
	assert.True(t, CanJoin(ts, ts.Add(-5*time.Minute), window))
	assert.True(t, CanJoin(ts, ts, window))
	assert.True(t, CanJoin(ts, ts.Add(2*time.Hour), window))
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(models.StatusEmotionsSelected, models.StatusSlotSelected))
	assert.True(t, CanTransition(models.StatusPaid, models.StatusLive))
	assert.False(t, CanTransition(models.StatusSlotSelected, models.StatusPaid))
	assert.False(t, CanTransition(models.StatusCompleted, models.StatusLive))
	assert.False(t, CanTransition(models.StatusLive, models.StatusPaid))

	assert.ElementsMatch(t,
		[]models.SessionStatus{models.StatusPaid, models.StatusLive},
		sourcesOf(models.StatusCompleted))
}

func TestLifecycle_HappyPath(t *testing.T) {
	h := newHarness(t)
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	id := student("u1")
	ctx := context.Background()

	sessionID := h.paidSession(t, id, "slot-1")
	start := time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC)

	h.setNow(start.Add(-5*time.Minute - time.Second))
	_, err := h.svc.Join(ctx, id, sessionID)
	require.ErrorIs(t, err, ErrJoinWindowClosed)

	h.setNow(start.Add(-5 * time.Minute))
	joined, err := h.svc.Join(ctx, id, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/asha", joined.MeetingLink)
	assert.Equal(t, models.StatusLive, joined.Status)

	again, err := h.svc.Join(ctx, id, sessionID)
	require.NoError(t, err, "joining a live session is idempotent")
	assert.Equal(t, models.StatusLive, again.Status)

	_, err = h.svc.Complete(ctx, student("u1"), sessionID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.Complete(ctx, counselorID("c2"), sessionID)
	assert.ErrorIs(t, err, ErrForbidden)

	done, err := h.svc.Complete(ctx, counselorID("c1"), sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	_, err = h.svc.Complete(ctx, counselorID("c1"), sessionID)
	require.NoError(t, err, "completing twice is a no-op")

	slot, err := h.slots.GetByID(ctx, "slot-1")
	require.NoError(t, err)
	assert.True(t, slot.IsBooked)
	assert.Equal(t, sessionID, slot.BookedBy)

	_, err = h.svc.Join(ctx, id, sessionID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	records, err := h.records.ListByStudent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusCompleted, records[0].Status)
}

func TestJoin_RequiresPayment(t *testing.T) {
	h := newHarness(t)
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	id := student("u1")
	ctx := context.Background()
	sessionID := h.startSession(t, id)
	_, err := h.svc.Book(ctx, id, sessionID, "slot-1")
	require.NoError(t, err)

	h.setNow(time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC))
	_, err = h.svc.Join(ctx, id, sessionID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteFromPaid(t *testing.T) {
	h := newHarness(t)
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	sessionID := h.paidSession(t, student("u1"), "slot-1")

	sess, err := h.svc.Complete(context.Background(), counselorID("c1"), sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, sess.Status)
	require.NotNil(t, sess.CompletedAt)
}

func TestGetSession_Visibility(t *testing.T) {
	h := newHarness(t)
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	sessionID := h.paidSession(t, student("u1"), "slot-1")
	ctx := context.Background()

	_, err := h.svc.GetSession(ctx, student("u1"), sessionID)
	assert.NoError(t, err)
	_, err = h.svc.GetSession(ctx, counselorID("c1"), sessionID)
	assert.NoError(t, err)
	_, err = h.svc.GetSession(ctx, models.Identity{UID: "ops", Role: models.RoleAdmin}, sessionID)
	assert.NoError(t, err)
	_, err = h.svc.GetSession(ctx, student("u2"), sessionID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.GetSession(ctx, counselorID("c2"), sessionID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListCounselorSessions(t *testing.T) {
	h := newHarness(t)
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	h.addSlot(t, "slot-2", "c1", "2030-06-02", "10:00")
	paid := h.paidSession(t, student("u1"), "slot-1")

	unpaid := h.startSession(t, student("u2"))
	_, err := h.svc.Book(context.Background(), student("u2"), unpaid, "slot-2")
	require.NoError(t, err)

	views, err := h.svc.ListCounselorSessions(context.Background(), counselorID("c1"), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, paid, views[0].SessionID)
	assert.Equal(t, []string{"anxious"}, views[0].Emotions)

	_, err = h.svc.ListCounselorSessions(context.Background(), student("u1"), time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListAbandoned(t *testing.T) {
	h := newHarness(t)
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	h.addSlot(t, "slot-2", "c1", "2030-06-02", "10:00")
	ctx := context.Background()

	abandoned := h.startSession(t, student("u1"))
	_, err := h.svc.Book(ctx, student("u1"), abandoned, "slot-1")
	require.NoError(t, err)
	h.paidSession(t, student("u2"), "slot-2")

	// Fake storage stamps updatedAt with wall time; look far enough ahead.
	h.setNow(time.Now().Add(48 * time.Hour))
	admin := models.Identity{UID: "ops", Role: models.RoleAdmin}
	list, err := h.svc.ListAbandoned(ctx, admin, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, abandoned, list[0].ID)

	slot, err := h.slots.GetByID(ctx, "slot-1")
	require.NoError(t, err)
	assert.True(t, slot.IsBooked, "abandoned slots are not released")

	_, err = h.svc.ListAbandoned(ctx, student("u1"), time.Hour)
	assert.ErrorIs(t, err, ErrForbidden)
}

// stalledLifecycle holds every publish until released, like a broker that stopped acking.
type stalledLifecycle struct {
	release chan struct{}
	mu      sync.Mutex
	events  []models.SessionEvent
}

func (p *stalledLifecycle) PublishSessionEvent(ctx context.Context, evt models.SessionEvent) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *stalledLifecycle) Close() error { return nil }

func (p *stalledLifecycle) statuses() []models.SessionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.SessionStatus, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

func TestLifecycleEvents_DoNotBlockRequests(t *testing.T) {
	h := newHarness(t)
	pub := &stalledLifecycle{release: make(chan struct{})}
	h.svc.Lifecycle = pub
	h.addSlot(t, "slot-1", "c1", "2030-06-02", "09:00")
	id := student("u1")

	began := time.Now()
	sessionID := h.startSession(t, id)
	sess, err := h.svc.Book(context.Background(), id, sessionID, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSlotSelected, sess.Status)
	assert.Less(t, time.Since(began), time.Second, "requests must not wait on the event broker")
	assert.Empty(t, pub.statuses())

	close(pub.release)
	require.Eventually(t, func() bool { return len(pub.statuses()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []models.SessionStatus{models.StatusEmotionsSelected, models.StatusSlotSelected}, pub.statuses())
}
