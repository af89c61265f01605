package errors

import "fmt"

type ErrorCode string

const (
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"

	// Booking engine error taxonomy
	ErrBookingConflict     ErrorCode = "BOOKING_CONFLICT"
	ErrCalendarAuthExpired ErrorCode = "CALENDAR_AUTH_EXPIRED"
	ErrGatewayUnavailable  ErrorCode = "CALENDAR_GATEWAY_UNAVAILABLE"
	ErrPartialCommit       ErrorCode = "PARTIAL_COMMIT_INCONSISTENCY"
)

// Conflict reasons carried by ErrBookingConflict errors.
const (
	ConflictOverlap  = "overlap"
	ConflictCapacity = "capacity"
)

type AppError struct {
	Code    ErrorCode
	Message string
	// Reason carries machine-readable detail, e.g. the booking conflict
	// reason ("overlap" or "capacity").
	Reason string
	Err    error
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewConflictError builds a booking conflict error with its reason.
func NewConflictError(reason, message string) *AppError {
	return &AppError{
		Code:    ErrBookingConflict,
		Message: message,
		Reason:  reason,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	ae, ok := err.(*AppError)
	return ok && ae.Code == code
}

// ConflictReason extracts the conflict reason from a booking conflict
// error, or "" when err is not one.
func ConflictReason(err error) string {
	if ae, ok := err.(*AppError); ok && ae.Code == ErrBookingConflict {
		return ae.Reason
	}
	return ""
}
