package models

import "time"

// SessionStatus is the lifecycle state of a booking session.
type SessionStatus string

const (
	StatusEmotionsSelected SessionStatus = "EMOTIONS_SELECTED"
	StatusDescriptionAdded SessionStatus = "DESCRIPTION_ADDED"
	StatusSlotSelected     SessionStatus = "SLOT_SELECTED"
	StatusPaymentPending   SessionStatus = "PAYMENT_PENDING"
	StatusPaid             SessionStatus = "PAID"
	StatusLive             SessionStatus = "LIVE"
	StatusCompleted        SessionStatus = "COMPLETED"
)

// IsPaid reports whether payment has been confirmed for a session in this state.
func (s SessionStatus) IsPaid() bool {
	return s == StatusPaid || s == StatusLive || s == StatusCompleted
}

// StudentRef identifies the student who owns a session.
type StudentRef struct {
	UID      string `bson:"uid" json:"uid"`
	Email    string `bson:"email" json:"email"`
	Username string `bson:"username" json:"username"`
}

// SelectedSlot is a snapshot of the slot and counselor taken at booking time.
type SelectedSlot struct {
	Date              string `bson:"date" json:"date"`
	Time              string `bson:"time" json:"time"`
	CounselorID       string `bson:"counselorId" json:"counselorId"`
	CounselorInitials string `bson:"counselorInitials" json:"counselorInitials"`
	CounselorUsername string `bson:"counselorUsername" json:"counselorUsername"`
	CounselorEmail    string `bson:"counselorEmail" json:"counselorEmail"`
	SlotDocID         string `bson:"slotDocId" json:"slotDocId"`
}

// PaymentOrder is the gateway order attached to a session.
type PaymentOrder struct {
	OrderID   string `bson:"orderId" json:"orderId"`
	Amount    int64  `bson:"amount" json:"amount"`
	Currency  string `bson:"currency" json:"currency"`
	CreatedBy string `bson:"createdBy" json:"createdBy"`
	Status    string `bson:"status" json:"status"`
}

// BookingSession is one student's journey from emotions to a completed session.
type BookingSession struct {
	ID                string        `bson:"id" json:"id"`
	Status            SessionStatus `bson:"status" json:"status"`
	Student           StudentRef    `bson:"student" json:"student"`
	Emotions          []string      `bson:"emotions" json:"emotions"`
	Description       *string       `bson:"description" json:"description"`
	SelectedSlot      *SelectedSlot `bson:"selectedSlot" json:"selectedSlot"`
	SessionTimestamp  *time.Time    `bson:"sessionTimestamp" json:"sessionTimestamp"`
	MeetingLink       *string       `bson:"meetingLink" json:"meetingLink"`
	PaymentOrder      *PaymentOrder `bson:"paymentOrder" json:"paymentOrder"`
	PaymentID         string        `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	PaymentVerifiedAt *time.Time    `bson:"paymentVerifiedAt,omitempty" json:"paymentVerifiedAt,omitempty"`
	ReminderScheduled bool          `bson:"reminderScheduled" json:"reminderScheduled"`
	ReminderTaskID    string        `bson:"reminderTaskId,omitempty" json:"-"`
	JoinedAt          *time.Time    `bson:"joinedAt,omitempty" json:"joinedAt,omitempty"`
	CompletedAt       *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt         time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// SlotStamp carries everything a successful booking writes onto a session.
type SlotStamp struct {
	Slot             SelectedSlot
	SessionTimestamp time.Time
	MeetingLink      string
}

// PaymentConfirmation carries what a verified payment writes onto a session.
type PaymentConfirmation struct {
	PaymentID  string
	VerifiedAt time.Time
}

// StartSessionRequest begins a booking flow.
type StartSessionRequest struct {
	Emotions []string `json:"emotions" binding:"required,min=1,dive,required"`
}

// DescriptionRequest adds optional free-text context.
type DescriptionRequest struct {
	Description string `json:"description" binding:"required,max=1000"`
}

// BookSlotRequest selects a slot for a session.
type BookSlotRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

// OrderResponse is returned to the client for the gateway checkout.
type OrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId,omitempty"`
}

// VerifyPaymentRequest is the gateway's client-side callback, forwarded for verification.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// JoinResponse is returned when a participant enters the session.
type JoinResponse struct {
	MeetingLink string        `json:"meetingLink"`
	Status      SessionStatus `json:"status"`
}
