package models

// Notification targets.
const (
	TargetStudent   = "student"
	TargetCounselor = "counselor"
)

// PushMessage is one push notification addressed to a user.
type PushMessage struct {
	Target string
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}
