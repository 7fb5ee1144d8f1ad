package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"careernest/internal/database"
	"careernest/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrActiveScheduleExists surfaces the partial unique index on
	// (application_id) for active schedules.
	ErrActiveScheduleExists = errors.New("application already has an active schedule")

	// ErrSlotTaken surfaces the partial unique index on
	// (company_id, interview_date, interview_time) for active schedules.
	ErrSlotTaken = errors.New("slot already taken")
)

const (
	uqActiveApplication = "uq_interview_schedules_active_application"
	uqActiveSlot        = "uq_interview_schedules_active_slot"
)

// ScheduleRow is a schedule joined with its listing, applicant and company
// for dashboard listings.
type ScheduleRow struct {
	Schedule      schedule.Schedule
	JobTitle      string
	ApplicantName string
	CompanyName   string
}

type ScheduleRepository interface {
	HasActiveForApplication(ctx context.Context, q database.Querier, applicationID uuid.UUID) (bool, error)
	CountActiveAtSlot(ctx context.Context, q database.Querier, companyID uuid.UUID, date time.Time, timeOfDay string) (int64, error)
	AcquireSlotLock(ctx context.Context, q database.Querier, companyID uuid.UUID, date time.Time, timeOfDay string) error
	Insert(ctx context.Context, q database.Querier, s schedule.Schedule) error
	ListForCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]ScheduleRow, error)
	ListAll(ctx context.Context, q database.Querier) ([]ScheduleRow, error)
}

type PostgresScheduleRepository struct{}

func NewPostgresScheduleRepository() *PostgresScheduleRepository {
	return &PostgresScheduleRepository{}
}

func (r *PostgresScheduleRepository) HasActiveForApplication(ctx context.Context, q database.Querier, applicationID uuid.UUID) (bool, error) {
	var exists bool
	row := q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM interview_schedules
			WHERE application_id = $1 AND status NOT IN ('cancelled', 'rejected')
		)`,
		applicationID,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresScheduleRepository) CountActiveAtSlot(ctx context.Context, q database.Querier, companyID uuid.UUID, date time.Time, timeOfDay string) (int64, error) {
	var count int64
	row := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM interview_schedules
		WHERE company_id = $1
		AND interview_date = $2
		AND interview_time = $3::time
		AND status NOT IN ('cancelled', 'rejected')`,
		companyID, date, timeOfDay,
	)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// AcquireSlotLock takes a transaction-scoped advisory lock on the
// (company, date, time) key so the availability check and the insert that
// follows are serialized against concurrent bookings of the same slot.
// Released automatically at commit or rollback.
func (r *PostgresScheduleRepository) AcquireSlotLock(ctx context.Context, q database.Querier, companyID uuid.UUID, date time.Time, timeOfDay string) error {
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, slotLockKey(companyID, date, timeOfDay))
	return err
}

func slotLockKey(companyID uuid.UUID, date time.Time, timeOfDay string) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s", companyID, date.Format("2006-01-02"), timeOfDay)
	return int64(h.Sum64())
}

func (r *PostgresScheduleRepository) Insert(ctx context.Context, q database.Querier, s schedule.Schedule) error {
	_, err := q.Exec(ctx, `
		INSERT INTO interview_schedules (
			id, application_id, user_id, company_id, job_id,
			interview_date, interview_time, interview_mode,
			interview_location, interview_link, status, company_notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7::time, $8, $9, $10, $11, $12)`,
		s.ID, s.ApplicationID, s.UserID, s.CompanyID, s.JobID,
		s.InterviewDate, s.InterviewTime, s.Mode,
		s.Location, s.Link, s.Status, s.CompanyNotes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case uqActiveApplication:
				return ErrActiveScheduleExists
			case uqActiveSlot:
				return ErrSlotTaken
			}
		}
		return err
	}
	return nil
}

const scheduleListSelect = `
	SELECT s.id, s.application_id, s.user_id, s.company_id, s.job_id,
	       s.interview_date, to_char(s.interview_time, 'HH24:MI'), s.interview_mode,
	       s.interview_location, s.interview_link, s.status, s.company_notes,
	       s.created_at, s.updated_at,
	       jl.title, u.name, c.company_name
	FROM interview_schedules s
	JOIN job_applications ja ON s.application_id = ja.id
	JOIN job_listings jl ON s.job_id = jl.id
	JOIN users u ON s.user_id = u.id
	JOIN companies c ON s.company_id = c.id`

func (r *PostgresScheduleRepository) ListForCompany(ctx context.Context, q database.Querier, companyID uuid.UUID) ([]ScheduleRow, error) {
	rows, err := q.Query(ctx,
		scheduleListSelect+`
		WHERE s.company_id = $1
		ORDER BY s.interview_date DESC, s.interview_time DESC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScheduleRows(rows)
}

func (r *PostgresScheduleRepository) ListAll(ctx context.Context, q database.Querier) ([]ScheduleRow, error) {
	rows, err := q.Query(ctx,
		scheduleListSelect+`
		ORDER BY s.interview_date DESC, s.interview_time DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScheduleRows(rows)
}

func scanScheduleRows(rows database.Rows) ([]ScheduleRow, error) {
	out := make([]ScheduleRow, 0)
	for rows.Next() {
		var row ScheduleRow
		s := &row.Schedule
		if err := rows.Scan(
			&s.ID, &s.ApplicationID, &s.UserID, &s.CompanyID, &s.JobID,
			&s.InterviewDate, &s.InterviewTime, &s.Mode,
			&s.Location, &s.Link, &s.Status, &s.CompanyNotes,
			&s.CreatedAt, &s.UpdatedAt,
			&row.JobTitle, &row.ApplicantName, &row.CompanyName,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
