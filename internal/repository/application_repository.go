package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"careernest/internal/database"
	"careernest/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrApplicationNotFound = errors.New("application not found")

// ApplicationDetail is the application joined with its job listing and
// applicant, scoped to the company that owns the listing.
type ApplicationDetail struct {
	ID            uuid.UUID
	ApplicantID   uuid.UUID
	ApplicantName string
	JobID         uuid.UUID
	JobTitle      string
	CompanyID     uuid.UUID
	Deadline      time.Time
	Status        application.Status
}

type ApplicationRepository interface {
	GetForCompany(ctx context.Context, q database.Querier, applicationID, companyID uuid.UUID) (ApplicationDetail, error)
	SetStatus(ctx context.Context, q database.Querier, applicationID uuid.UUID, status application.Status) error
}

type PostgresApplicationRepository struct{}

func NewPostgresApplicationRepository() *PostgresApplicationRepository {
	return &PostgresApplicationRepository{}
}

func (r *PostgresApplicationRepository) GetForCompany(ctx context.Context, q database.Querier, applicationID, companyID uuid.UUID) (ApplicationDetail, error) {
	row := q.QueryRow(ctx, `
		SELECT ja.id, ja.user_id, u.name, ja.job_id, jl.title, jl.company_id, jl.deadline, ja.status
		FROM job_applications ja
		JOIN job_listings jl ON ja.job_id = jl.id
		JOIN users u ON ja.user_id = u.id
		WHERE ja.id = $1 AND jl.company_id = $2`,
		applicationID, companyID,
	)

	var d ApplicationDetail
	if err := row.Scan(&d.ID, &d.ApplicantID, &d.ApplicantName, &d.JobID, &d.JobTitle, &d.CompanyID, &d.Deadline, &d.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return ApplicationDetail{}, ErrApplicationNotFound
		}
		return ApplicationDetail{}, err
	}
	return d, nil
}

func (r *PostgresApplicationRepository) SetStatus(ctx context.Context, q database.Querier, applicationID uuid.UUID, status application.Status) error {
	affected, err := q.Exec(ctx,
		`UPDATE job_applications SET status = $1, updated_at = now() WHERE id = $2`,
		status, applicationID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
