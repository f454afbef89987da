package models

import "time"

// Roles carried by an Identity.
const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
	RoleAdmin     = "admin"
)

// Identity is the authenticated caller, resolved per request.
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Role          string `json:"role"`
	Username      string `json:"username,omitempty"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Student is a registered student profile.
type Student struct {
	ID        string    `bson:"id" json:"id"`
	Username  string    `bson:"username" json:"username"`
	Email     string    `bson:"email" json:"email"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DeviceTokenRequest registers a push token for the caller.
type DeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
