package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"careernest/internal/database"
	"careernest/internal/domain/application"
	"careernest/internal/domain/notification"
	"careernest/internal/domain/schedule"
	"careernest/internal/domain/user"
	"careernest/internal/repository"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type ScheduleInput struct {
	ApplicationID uuid.UUID
	CompanyID     uuid.UUID
	InterviewDate string
	InterviewTime string
	Mode          string
	Location      string
	Link          string
	Notes         string
}

type SlotCheck struct {
	Available bool
	Message   string
}

type ScheduleUsecase interface {
	CheckSlot(ctx context.Context, companyID uuid.UUID, date, timeOfDay string, applicationID *uuid.UUID) (SlotCheck, error)
	ScheduleInterview(ctx context.Context, in ScheduleInput) (uuid.UUID, error)
	ListCompanySchedules(ctx context.Context, companyID uuid.UUID) ([]repository.ScheduleRow, error)
	ListAllSchedules(ctx context.Context) ([]repository.ScheduleRow, error)
}

// NotificationDispatcher is the outbound side of the scheduling workflow.
// Dispatch failures never affect the outcome of the write that triggered
// them.
type NotificationDispatcher interface {
	Notify(ctx context.Context, userID uuid.UUID, title, notifType, message string, link *string) error
}

type Scheduler struct {
	db        database.DB
	apps      repository.ApplicationRepository
	schedules repository.ScheduleRepository
	users     repository.UserRepository
	notifier  NotificationDispatcher
	logger    *log.Logger

	now func() time.Time
}

func NewScheduleUsecase(
	db database.DB,
	apps repository.ApplicationRepository,
	schedules repository.ScheduleRepository,
	users repository.UserRepository,
	notifier NotificationDispatcher,
	logger *log.Logger,
) *Scheduler {
	return &Scheduler{
		db:        db,
		apps:      apps,
		schedules: schedules,
		users:     users,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// CheckSlot answers the pre-submit availability probe. Always reads the
// latest committed state; the result is advisory and the scheduling
// transaction re-checks under its own lock.
func (u *Scheduler) CheckSlot(ctx context.Context, companyID uuid.UUID, date, timeOfDay string, applicationID *uuid.UUID) (SlotCheck, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return SlotCheck{}, ErrInvalidInput
	}
	if _, err := time.Parse(timeLayout, strings.TrimSpace(timeOfDay)); err != nil {
		return SlotCheck{}, ErrInvalidInput
	}
	timeOfDay = strings.TrimSpace(timeOfDay)

	if applicationID != nil {
		hasActive, err := u.schedules.HasActiveForApplication(ctx, u.db, *applicationID)
		if err != nil {
			u.logf("slot check failed | application_id=%s err=%v", *applicationID, err)
			return SlotCheck{}, ErrInternal
		}
		if hasActive {
			return SlotCheck{Available: false, Message: "This applicant already has a pending interview schedule"}, nil
		}
	}

	count, err := u.schedules.CountActiveAtSlot(ctx, u.db, companyID, day, timeOfDay)
	if err != nil {
		u.logf("slot check failed | company_id=%s err=%v", companyID, err)
		return SlotCheck{}, ErrInternal
	}
	if count > 0 {
		return SlotCheck{Available: false, Message: "This time slot is not available. Please choose another time."}, nil
	}
	return SlotCheck{Available: true, Message: "Slot is available"}, nil
}

// ScheduleInterview validates the submission, then books the slot inside a
// single transaction: company-scoped application load, deadline and status
// checks, conflict checks under an advisory lock on the slot key, schedule
// insert, application status update. Any failure rolls everything back.
// Notifications go out only after commit.
func (u *Scheduler) ScheduleInterview(ctx context.Context, in ScheduleInput) (uuid.UUID, error) {
	day, timeOfDay, verr := u.validateInput(in)
	if verr != nil {
		return uuid.Nil, verr
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		u.logf("begin tx failed | err=%v", err)
		return uuid.Nil, ErrInternal
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	app, err := u.apps.GetForCompany(ctx, tx, in.ApplicationID, in.CompanyID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return uuid.Nil, ErrNotFoundOrUnauthorized
		}
		u.logf("application load failed | application_id=%s err=%v", in.ApplicationID, err)
		return uuid.Nil, ErrInternal
	}

	today := dateOnly(u.now())
	if dateOnly(app.Deadline).Before(today) {
		return uuid.Nil, ErrJobExpired
	}
	if !app.Status.CanScheduleInterview() {
		return uuid.Nil, ErrInvalidApplicationState
	}

	// Serializes concurrent bookings of the same slot for the rest of the
	// transaction; the partial unique indexes remain the storage backstop.
	if err := u.schedules.AcquireSlotLock(ctx, tx, in.CompanyID, day, timeOfDay); err != nil {
		u.logf("slot lock failed | company_id=%s err=%v", in.CompanyID, err)
		return uuid.Nil, ErrInternal
	}

	hasActive, err := u.schedules.HasActiveForApplication(ctx, tx, in.ApplicationID)
	if err != nil {
		u.logf("active schedule check failed | application_id=%s err=%v", in.ApplicationID, err)
		return uuid.Nil, ErrInternal
	}
	if hasActive {
		return uuid.Nil, ErrDuplicateSchedule
	}

	count, err := u.schedules.CountActiveAtSlot(ctx, tx, in.CompanyID, day, timeOfDay)
	if err != nil {
		u.logf("slot conflict check failed | company_id=%s err=%v", in.CompanyID, err)
		return uuid.Nil, ErrInternal
	}
	if count > 0 {
		return uuid.Nil, ErrCompanyDoubleBooked
	}

	s := schedule.Schedule{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		UserID:        app.ApplicantID,
		CompanyID:     app.CompanyID,
		JobID:         app.JobID,
		InterviewDate: day,
		InterviewTime: timeOfDay,
		Mode:          schedule.Mode(in.Mode),
		Status:        schedule.StatusProposed,
		CompanyNotes:  strings.TrimSpace(in.Notes),
	}
	switch s.Mode {
	case schedule.ModeOnsite:
		loc := strings.TrimSpace(in.Location)
		s.Location = &loc
	case schedule.ModeOnline:
		link := strings.TrimSpace(in.Link)
		s.Link = &link
	}

	if err := u.schedules.Insert(ctx, tx, s); err != nil {
		// A unique-index violation means another transaction won the slot
		// between our read checks and the insert.
		switch {
		case errors.Is(err, repository.ErrActiveScheduleExists):
			return uuid.Nil, ErrDuplicateSchedule
		case errors.Is(err, repository.ErrSlotTaken):
			return uuid.Nil, ErrSlotUnavailable
		}
		u.logf("schedule insert failed | application_id=%s err=%v", app.ID, err)
		return uuid.Nil, ErrInternal
	}

	if err := u.apps.SetStatus(ctx, tx, app.ID, application.StatusInterview); err != nil {
		u.logf("application status update failed | application_id=%s err=%v", app.ID, err)
		return uuid.Nil, ErrInternal
	}

	if err := tx.Commit(ctx); err != nil {
		u.logf("commit failed | application_id=%s err=%v", app.ID, err)
		return uuid.Nil, ErrInternal
	}
	committed = true

	u.dispatchScheduledNotifications(ctx, app, s.ID)

	return s.ID, nil
}

func (u *Scheduler) ListCompanySchedules(ctx context.Context, companyID uuid.UUID) ([]repository.ScheduleRow, error) {
	rows, err := u.schedules.ListForCompany(ctx, u.db, companyID)
	if err != nil {
		u.logf("company schedule listing failed | company_id=%s err=%v", companyID, err)
		return nil, ErrInternal
	}
	return rows, nil
}

func (u *Scheduler) ListAllSchedules(ctx context.Context) ([]repository.ScheduleRow, error) {
	rows, err := u.schedules.ListAll(ctx, u.db)
	if err != nil {
		u.logf("schedule listing failed | err=%v", err)
		return nil, ErrInternal
	}
	return rows, nil
}

func (u *Scheduler) validateInput(in ScheduleInput) (time.Time, string, error) {
	verr := &ValidationError{}

	rawDate := strings.TrimSpace(in.InterviewDate)
	rawTime := strings.TrimSpace(in.InterviewTime)
	mode := schedule.Mode(strings.TrimSpace(in.Mode))
	location := strings.TrimSpace(in.Location)
	link := strings.TrimSpace(in.Link)
	notes := strings.TrimSpace(in.Notes)

	var day time.Time
	switch {
	case rawDate == "":
		verr.add("interview_date", "Interview date is required")
	default:
		parsed, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			verr.add("interview_date", "Interview date must be a valid date")
		} else {
			day = parsed
			today := dateOnly(u.now())
			if day.Before(today) {
				verr.add("interview_date", "Interview date cannot be in the past")
			}
			if day.After(today.AddDate(0, schedule.MaxLeadMonths, 0)) {
				verr.add("interview_date", "Interview date cannot be more than 6 months in the future")
			}
		}
	}

	switch {
	case rawTime == "":
		verr.add("interview_time", "Interview time is required")
	default:
		if _, err := time.Parse(timeLayout, rawTime); err != nil {
			verr.add("interview_time", "Interview time must be a valid time")
		}
	}

	switch mode {
	case "":
		verr.add("interview_mode", "Interview mode is required")
	case schedule.ModeOnsite:
		if location == "" {
			verr.add("interview_location", "Please provide interview location for onsite interviews")
		} else if len(location) > schedule.MaxLocationLen {
			verr.add("interview_location", "Interview location must be less than 255 characters")
		}
	case schedule.ModeOnline:
		if link == "" {
			verr.add("interview_link", "Please provide interview link for online interviews")
		} else if !isWellFormedURL(link) {
			verr.add("interview_link", "Please provide a valid URL for online interview")
		}
	default:
		verr.add("interview_mode", "Interview mode must be onsite or online")
	}

	if len(notes) > schedule.MaxNotesLen {
		verr.add("notes", "Company notes must be less than 1000 characters")
	}

	if len(verr.Fields) > 0 {
		return time.Time{}, "", verr
	}
	return day, rawTime, nil
}

func (u *Scheduler) dispatchScheduledNotifications(ctx context.Context, app repository.ApplicationDetail, scheduleID uuid.UUID) {
	applicantLink := "/dashboard"
	if err := u.notifier.Notify(ctx,
		app.ApplicantID,
		"Interview Scheduled",
		notification.TypeInterviewSchedule,
		fmt.Sprintf("You have been scheduled for an interview for %s", app.JobTitle),
		&applicantLink,
	); err != nil && !errors.Is(err, ErrNotificationExists) {
		u.logf("applicant notification failed | application_id=%s err=%v", app.ID, err)
	}

	adminID, err := u.users.FindAdminID(ctx)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			u.logf("admin lookup failed | err=%v", err)
		}
		return
	}

	adminLink := fmt.Sprintf("/admin/schedules/%s", scheduleID)
	if err := u.notifier.Notify(ctx,
		adminID,
		"New Interview Schedule",
		notification.TypeInterviewSchedule,
		fmt.Sprintf("New interview schedule for %s with %s", app.JobTitle, app.ApplicantName),
		&adminLink,
	); err != nil && !errors.Is(err, ErrNotificationExists) {
		u.logf("admin notification failed | schedule_id=%s err=%v", scheduleID, err)
	}
}

func (u *Scheduler) logf(format string, args ...any) {
	if u == nil || u.logger == nil {
		return
	}
	u.logger.Printf("[Schedule] "+format, args...)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isWellFormedURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
