package notification

import (
	"time"

	"github.com/google/uuid"
)

// DedupWindow suppresses a second notification with the same
// (user, title, type) triple created within this interval.
const DedupWindow = 5 * time.Minute

const TypeInterviewSchedule = "interview_schedule"

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Type      string
	Message   string
	Link      *string
	IsRead    bool
	CreatedAt time.Time
}
