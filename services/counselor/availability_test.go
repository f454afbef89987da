package counselor

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"counselbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*DefaultCounselorService, *memSlots, *memWindows, *memCounselors) {
	slots := newMemSlots()
	windows := &memWindows{}
	counselors := &memCounselors{rows: map[string]models.Counselor{
		"c1": {ID: "c1", Username: "asha", Email: "asha@example.com", MeetingLink: "https://meet.example.com/asha", Timezone: "UTC"},
		"c2": {ID: "c2"},
	}}
	svc := &DefaultCounselorService{
		Slots:        slots,
		Availability: windows,
		Counselors:   counselors,
		Rules:        Rules{MaxTimesPerDay: 3, GranularityMinutes: 15, DefaultTimezone: "UTC"},
		Now:          func() time.Time { return time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC) },
	}
	return svc, slots, windows, counselors
}

var c1 = models.Identity{UID: "c1", Role: models.RoleCounselor}

func TestPublish_CreatesAndRemoves(t *testing.T) {
	svc, slots, windows, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Publish(ctx, c1, "2030-06-02", []string{"13:00", "09:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "13:00"}, res.Times)
	assert.Equal(t, []string{"09:00", "13:00"}, res.Created)
	assert.Len(t, slots.byMinute("c1", "2030-06-02"), 2)

	res, err = svc.Publish(ctx, c1, "2030-06-02", []string{"09:00", "05:30 PM"})
	require.NoError(t, err)
	assert.Equal(t, []string{"05:30 PM"}, res.Created)
	assert.Equal(t, []string{"13:00"}, res.Removed)
	assert.Empty(t, res.RetainedBooked)

	current := slots.byMinute("c1", "2030-06-02")
	assert.Len(t, current, 2)
	assert.Contains(t, current, 540)
	assert.Contains(t, current, 1050)
	assert.Equal(t, time.Date(2030, 6, 2, 17, 30, 0, 0, time.UTC), current[1050].StartsAt.UTC())

	w, err := svc.GetAvailability(ctx, "c1", "2030-06-01", "2030-06-30")
	require.NoError(t, err)
	require.Len(t, w, 1)
	assert.Equal(t, []string{"09:00", "05:30 PM"}, w[0].Times)
	assert.Len(t, windows.rows, 1)
}

func TestPublish_RetainsBookedSlot(t *testing.T) {
	svc, slots, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Publish(ctx, c1, "2030-06-02", []string{"09:00", "10:00"})
	require.NoError(t, err)
	booked := slots.byMinute("c1", "2030-06-02")[600]
	require.NoError(t, slots.Reserve(ctx, booked.ID, "session-1"))

	res, err := svc.Publish(ctx, c1, "2030-06-02", []string{"09:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, res.RetainedBooked)
	assert.Empty(t, res.Removed)

	kept := slots.byMinute("c1", "2030-06-02")[600]
	assert.Equal(t, booked.ID, kept.ID)
	assert.True(t, kept.IsBooked)
	assert.Equal(t, "session-1", kept.BookedBy)

	res, err = svc.Publish(ctx, c1, "2030-06-02", []string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, res.Removed)
	assert.Equal(t, []string{"10:00"}, res.RetainedBooked)
}

func TestPublish_RetryConverges(t *testing.T) {
	svc, slots, _, _ := newTestService()
	ctx := context.Background()

	slots.failInsert = 2
	_, err := svc.Publish(ctx, c1, "2030-06-02", []string{"09:00", "10:00", "11:00"})
	require.Error(t, err)
	assert.Len(t, slots.byMinute("c1", "2030-06-02"), 1, "partial state after failure")

	res, err := svc.Publish(ctx, c1, "2030-06-02", []string{"09:00", "10:00", "11:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "11:00"}, res.Created)

	res, err = svc.Publish(ctx, c1, "2030-06-02", []string{"09:00", "10:00", "11:00"})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Empty(t, res.Removed)
	assert.Len(t, slots.byMinute("c1", "2030-06-02"), 3)
}

func TestPublish_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := map[string][]string{
		"too many":   {"09:00", "10:00", "11:00", "12:00"},
		"misaligned": {"09:10"},
		"duplicate":  {"13:00", "01:00 PM"},
		"garbage":    {"nine"},
	}
	for name, times := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Publish(ctx, c1, "2030-06-02", times)
			assert.ErrorIs(t, err, ErrInvalidWindow)
		})
	}

	_, err := svc.Publish(ctx, c1, "2030-05-31", []string{"09:00"})
	assert.ErrorIs(t, err, ErrInvalidWindow, "past date")

	_, err = svc.Publish(ctx, c1, "2030/06/02", []string{"09:00"})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = svc.Publish(ctx, models.Identity{UID: "c1", Role: models.RoleStudent}, "2030-06-02", []string{"09:00"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Publish(ctx, models.Identity{UID: "ghost", Role: models.RoleCounselor}, "2030-06-02", []string{"09:00"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _, counselors := newTestService()
	ctx := context.Background()

	link := " https://meet.example.com/new "
	tz := "Asia/Kolkata"
	updated, err := svc.UpdateProfile(ctx, c1, models.CounselorProfileUpdate{MeetingLink: &link, Timezone: &tz})
	require.NoError(t, err)
	assert.Equal(t, "https://meet.example.com/new", updated.MeetingLink)
	assert.Equal(t, "Asia/Kolkata", counselors.rows["c1"].Timezone)

	bad := "meet.example.com/relative"
	_, err = svc.UpdateProfile(ctx, c1, models.CounselorProfileUpdate{MeetingLink: &bad})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	badTZ := "Mars/Olympus"
	_, err = svc.UpdateProfile(ctx, c1, models.CounselorProfileUpdate{Timezone: &badTZ})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = svc.UpdateProfile(ctx, models.Identity{UID: "c2", Role: models.RoleCounselor}, models.CounselorProfileUpdate{MeetingLink: &link})
	assert.ErrorIs(t, err, ErrProfileNotFound, "profile without required fields")

	_, err = svc.UpdateProfile(ctx, models.Identity{UID: "ghost", Role: models.RoleCounselor}, models.CounselorProfileUpdate{})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGetAvailability(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Publish(ctx, c1, "2030-06-02", []string{"09:00"})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, c1, "2030-06-05", []string{"10:00", "11:00"})
	require.NoError(t, err)

	windows, err := svc.GetAvailability(ctx, "c1", "2030-06-01", "2030-06-03")
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, []string{"09:00"}, windows[0].Times)

	none, err := svc.GetAvailability(ctx, "c2", "", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = svc.GetAvailability(ctx, "c1", "June", "")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestPublish_TodayRejectsPassedTimes(t *testing.T) {
	svc, slots, _, counselors := newTestService()
	ctx := context.Background()

	// now is 08:00 UTC on 2030-06-01
	for _, times := range [][]string{{"07:45"}, {"08:00"}, {"09:00", "06:00 AM"}} {
		_, err := svc.Publish(ctx, c1, "2030-06-01", times)
		assert.ErrorIs(t, err, ErrInvalidWindow, "%v", times)
	}
	assert.Empty(t, slots.byMinute("c1", "2030-06-01"))

	res, err := svc.Publish(ctx, c1, "2030-06-01", []string{"08:15", "09:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"08:15", "09:00"}, res.Created)

	// 08:00 UTC is 13:30 in Kolkata, so 13:00 local has passed there.
	counselors.rows["c1"] = models.Counselor{ID: "c1", Timezone: "Asia/Kolkata"}
	_, err = svc.Publish(ctx, c1, "2030-06-01", []string{"13:00"})
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = svc.Publish(ctx, c1, "2030-06-01", []string{"02:00 PM"})
	assert.NoError(t, err)
}

func TestPublish_RelabelsUnbookedMatch(t *testing.T) {
	svc, slots, windows, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Publish(ctx, c1, "2030-06-02", []string{"13:00", "10:00"})
	require.NoError(t, err)
	booked := slots.byMinute("c1", "2030-06-02")[600]
	require.NoError(t, slots.Reserve(ctx, booked.ID, "session-1"))

	res, err := svc.Publish(ctx, c1, "2030-06-02", []string{"01:00 PM", "10:00 AM"})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Empty(t, res.Removed)
	assert.Equal(t, []string{"10:00 AM", "01:00 PM"}, res.Times)

	current := slots.byMinute("c1", "2030-06-02")
	assert.Equal(t, "01:00 PM", current[780].Time)
	assert.Equal(t, "10:00", current[600].Time, "booked slot keeps its label")
	assert.Equal(t, []string{"10:00 AM", "01:00 PM"}, windows.rows["c1/2030-06-02"].Times)
}
