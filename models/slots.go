package models

import "time"

// Slot is one bookable (counselor, date, time) unit of inventory.
// IsBooked and BookedBy always change together; a booked slot is never deleted.
type Slot struct {
	ID          string    `bson:"id" json:"id"`
	CounselorID string    `bson:"counselorId" json:"counselorId"`
	Date        string    `bson:"date" json:"date"`               // "YYYY-MM-DD"
	Time        string    `bson:"time" json:"time"`               // "HH:MM" or "HH:MM AM/PM"
	MinuteOfDay int       `bson:"minuteOfDay" json:"minuteOfDay"` // derived from Time
	StartsAt    time.Time `bson:"startsAt" json:"startsAt"`       // date+time in the counselor's timezone
	IsBooked    bool      `bson:"isBooked" json:"isBooked"`
	BookedBy    string    `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SlotGroup is a set of open slots sharing the same minute of day.
type SlotGroup struct {
	Time  string `json:"time"`
	Slots []Slot `json:"slots"`
}

// SlotQuery filters open-slot listings.
type SlotQuery struct {
	CounselorIDs []string
	FromDate     string
	ToDate       string
}
