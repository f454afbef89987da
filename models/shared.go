package models

import "time"

// ReminderPayload is the body of a reminder task.
type ReminderPayload struct {
	SessionID string `json:"sessionId"`
}

// SlotEvent invalidates cached slot listings. Subscribers re-read the list.
type SlotEvent struct {
	Type        string    `json:"type"` // "booked", "published"
	CounselorID string    `json:"counselorId"`
	Date        string    `json:"date"`
	SlotID      string    `json:"slotId,omitempty"`
	At          time.Time `json:"at"`
}

const (
	SlotEventBooked    = "booked"
	SlotEventPublished = "published"
)

// SessionEvent is a lifecycle transition emitted to downstream consumers.
type SessionEvent struct {
	SessionID   string        `json:"sessionId"`
	StudentID   string        `json:"studentId"`
	CounselorID string        `json:"counselorId,omitempty"`
	Status      SessionStatus `json:"status"`
	At          time.Time     `json:"at"`
}
