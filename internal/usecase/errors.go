package usecase

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")

	// Scheduling business-rule failures. The application lookup is scoped to
	// the calling company, so a missing and a foreign application are
	// indistinguishable on purpose.
	ErrNotFoundOrUnauthorized  = errors.New("application not found or not owned by company")
	ErrJobExpired              = errors.New("job posting has expired")
	ErrInvalidApplicationState = errors.New("application is not in a schedulable state")
	ErrDuplicateSchedule       = errors.New("application already has an interview schedule")
	ErrSlotUnavailable         = errors.New("time slot is not available")
	ErrCompanyDoubleBooked     = errors.New("company already has an interview at this time")

	ErrNotificationExists = errors.New("similar notification already exists")

	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every structural input problem found, collected
// before any storage access.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}
