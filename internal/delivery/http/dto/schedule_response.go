package dto

import (
	"time"

	"github.com/google/uuid"
)

type SlotCheckResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type ScheduleCreatedResponse struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
}

type ScheduleResponse struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	ApplicantName string    `json:"applicant_name"`
	CompanyName   string    `json:"company_name"`
	InterviewDate string    `json:"interview_date"`
	InterviewTime string    `json:"interview_time"`
	Mode          string    `json:"interview_mode"`
	Location      *string   `json:"interview_location,omitempty"`
	Link          *string   `json:"interview_link,omitempty"`
	Status        string    `json:"status"`
	CompanyNotes  string    `json:"company_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
