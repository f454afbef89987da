package models

import "time"

// Counselor is the counselor profile referenced by slots and sessions.
type Counselor struct {
	ID          string    `bson:"id" json:"id"`
	Username    string    `bson:"username" json:"username"`
	Initials    string    `bson:"initials" json:"initials"`
	Email       string    `bson:"email" json:"email"`
	MeetingLink string    `bson:"meetingLink" json:"meetingLink"`
	Timezone    string    `bson:"timezone,omitempty" json:"timezone,omitempty"`
	FCMToken    string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CounselorProfileUpdate is a partial profile update. Nil fields are left unchanged.
type CounselorProfileUpdate struct {
	Username    *string `json:"username"`
	Initials    *string `json:"initials" binding:"omitempty,max=4"`
	MeetingLink *string `json:"meetingLink"`
	Timezone    *string `json:"timezone"`
}

// CounselorSession is the counselor's view of a paid session.
type CounselorSession struct {
	SessionID        string        `json:"sessionId"`
	StudentUsername  string        `json:"studentUsername"`
	Date             string        `json:"date"`
	Time             string        `json:"time"`
	SessionTimestamp time.Time     `json:"sessionTimestamp"`
	Status           SessionStatus `json:"status"`
	Emotions         []string      `json:"emotions"`
	Description      string        `json:"description,omitempty"`
}
