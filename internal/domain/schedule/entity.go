package schedule

import (
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeOnsite Mode = "onsite"
	ModeOnline Mode = "online"
)

func (m Mode) Valid() bool {
	return m == ModeOnsite || m == ModeOnline
}

type Status string

const (
	StatusProposed         Status = "proposed"
	StatusAdminModified    Status = "admin_modified"
	StatusCompanyConfirmed Status = "company_confirmed"
	StatusFinalized        Status = "finalized"
	StatusCancelled        Status = "cancelled"
	StatusRejected         Status = "rejected"
)

// Active reports whether a schedule still occupies its slot. Cancelled and
// rejected schedules free both the slot and the application.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusRejected
}

const (
	MaxLocationLen = 255
	MaxNotesLen    = 1000

	// MaxLeadMonths bounds how far into the future an interview may be booked.
	MaxLeadMonths = 6
)

type Schedule struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	UserID        uuid.UUID
	CompanyID     uuid.UUID
	JobID         uuid.UUID
	InterviewDate time.Time
	InterviewTime string
	Mode          Mode
	Location      *string
	Link          *string
	Status        Status
	CompanyNotes  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
