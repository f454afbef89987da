package booking

import (
	"fmt"
	"net/http"
)

// BookingError is a domain failure with a stable code and the HTTP status it maps to.
type BookingError struct {
	Code    string
	Message string
	Status  int
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, message string, status int) *BookingError {
	return &BookingError{Code: code, Message: message, Status: status}
}

var (
	ErrSlotUnavailable    = newError("slot_unavailable", "this slot is no longer available", http.StatusConflict)
	ErrMeetingLinkMissing = newError("meeting_link_missing", "the counselor has no meeting link configured", http.StatusUnprocessableEntity)
	ErrSessionExpired     = newError("session_expired", "the session start time has passed", http.StatusGone)
	ErrAlreadyPaid        = newError("already_paid", "payment already completed", http.StatusOK)
	ErrInvalidSignature   = newError("payment_verification_failed", "payment verification failed", http.StatusBadRequest)
	ErrOrderMismatch      = newError("payment_verification_failed", "payment verification failed", http.StatusBadRequest)
	ErrSessionNotFound    = newError("session_not_found", "session not found", http.StatusNotFound)
	ErrForbidden          = newError("forbidden", "not allowed for this session", http.StatusForbidden)
	ErrInvalidTransition  = newError("invalid_transition", "the session is not in a state that allows this action", http.StatusConflict)
	ErrJoinWindowClosed   = newError("join_window_closed", "the session is not open for joining yet", http.StatusForbidden)
	ErrEmailNotVerified   = newError("email_not_verified", "verify your email before booking", http.StatusForbidden)
	ErrInvalidInput       = newError("invalid_input", "invalid request", http.StatusBadRequest)
	ErrGatewayUnavailable = newError("gateway_unavailable", "payment provider is unavailable, try again", http.StatusBadGateway)
)

// withDetail keeps the sentinel matchable through errors.Is while carrying context for logs.
func withDetail(sentinel *BookingError, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
