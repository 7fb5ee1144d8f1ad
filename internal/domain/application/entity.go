package application

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusShortlisted Status = "shortlisted"
	StatusInterview   Status = "interview"
	StatusRejected    Status = "rejected"
	StatusHired       Status = "hired"
)

type Application struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	JobID     uuid.UUID
	Status    Status
	AppliedAt time.Time
	UpdatedAt time.Time
}

// CanScheduleInterview reports whether an application is in a state from
// which a company may propose an interview.
func (s Status) CanScheduleInterview() bool {
	return s == StatusPending || s == StatusShortlisted
}
