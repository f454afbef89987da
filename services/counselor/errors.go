package counselor

import (
	"fmt"
	"net/http"
)

// CounselorError is a counselor-side domain failure.
type CounselorError struct {
	Code    string
	Message string
	Status  int
}

func (e *CounselorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrProfileNotFound = &CounselorError{Code: "profile_not_found", Message: "counselor profile not found or incomplete", Status: http.StatusNotFound}
	ErrInvalidWindow   = &CounselorError{Code: "invalid_window", Message: "invalid availability", Status: http.StatusBadRequest}
	ErrInvalidProfile  = &CounselorError{Code: "invalid_profile", Message: "invalid profile update", Status: http.StatusBadRequest}
	ErrForbidden       = &CounselorError{Code: "forbidden", Message: "counselor access required", Status: http.StatusForbidden}
)

func invalidWindow(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidWindow, fmt.Sprintf(format, args...))
}
