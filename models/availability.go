package models

import "time"

// AvailabilityWindow is the counselor's declared list of times for one date.
// It is used for display; bookability comes from the slot inventory.
type AvailabilityWindow struct {
	CounselorID string    `bson:"counselorId" json:"counselorId"`
	Date        string    `bson:"date" json:"date"`
	Times       []string  `bson:"times" json:"times"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PublishAvailabilityRequest is the payload for publishing one day of availability.
type PublishAvailabilityRequest struct {
	Date  string   `json:"date" binding:"required,datetime=2006-01-02"`
	Times []string `json:"times" binding:"max=3,dive,timelabel"`
}

// PublishResult reports what a publish reconciliation changed.
type PublishResult struct {
	Date           string   `json:"date"`
	Times          []string `json:"times"`
	Created        []string `json:"created"`
	Removed        []string `json:"removed"`
	RetainedBooked []string `json:"retainedBooked"`
}
