package models

import "time"

// BookingRecord is the student-facing projection of a paid session.
// Sessions are authoritative; records are rebuilt from them when they drift.
type BookingRecord struct {
	StudentID         string        `bson:"studentId" json:"studentId"`
	SessionID         string        `bson:"sessionId" json:"sessionId"`
	CounselorID       string        `bson:"counselorId" json:"counselorId"`
	CounselorUsername string        `bson:"counselorUsername" json:"counselorUsername"`
	CounselorInitials string        `bson:"counselorInitials" json:"counselorInitials"`
	Date              string        `bson:"date" json:"date"`
	Time              string        `bson:"time" json:"time"`
	SessionTimestamp  time.Time     `bson:"sessionTimestamp" json:"sessionTimestamp"`
	Status            SessionStatus `bson:"status" json:"status"`
	MeetingLink       string        `bson:"meetingLink" json:"meetingLink"`
	Amount            int64         `bson:"amount" json:"amount"`
	Currency          string        `bson:"currency" json:"currency"`
	SyncedAt          time.Time     `bson:"syncedAt" json:"syncedAt"`
}

// BookingList is returned by the student dashboard listing.
// Stale is set when sessions could not be read and the projection is served as-is.
type BookingList struct {
	Bookings []BookingRecord `json:"bookings"`
	Stale    bool            `json:"stale"`
}

// RecordFromSession builds the projection row for a session that has a selected slot.
func RecordFromSession(s BookingSession, now time.Time) BookingRecord {
	rec := BookingRecord{
		StudentID: s.Student.UID,
		SessionID: s.ID,
		Status:    s.Status,
		SyncedAt:  now,
	}
	if s.SelectedSlot != nil {
		rec.CounselorID = s.SelectedSlot.CounselorID
		rec.CounselorUsername = s.SelectedSlot.CounselorUsername
		rec.CounselorInitials = s.SelectedSlot.CounselorInitials
		rec.Date = s.SelectedSlot.Date
		rec.Time = s.SelectedSlot.Time
	}
	if s.SessionTimestamp != nil {
		rec.SessionTimestamp = *s.SessionTimestamp
	}
	if s.MeetingLink != nil {
		rec.MeetingLink = *s.MeetingLink
	}
	if s.PaymentOrder != nil {
		rec.Amount = s.PaymentOrder.Amount
		rec.Currency = s.PaymentOrder.Currency
	}
	return rec
}

// SameAs reports whether two records agree on every session-derived field.
func (r BookingRecord) SameAs(o BookingRecord) bool {
	return r.StudentID == o.StudentID &&
		r.SessionID == o.SessionID &&
		r.CounselorID == o.CounselorID &&
		r.CounselorUsername == o.CounselorUsername &&
		r.CounselorInitials == o.CounselorInitials &&
		r.Date == o.Date &&
		r.Time == o.Time &&
		r.SessionTimestamp.Equal(o.SessionTimestamp) &&
		r.Status == o.Status &&
		r.MeetingLink == o.MeetingLink &&
		r.Amount == o.Amount &&
		r.Currency == o.Currency
}
