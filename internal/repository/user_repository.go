package repository

import (
	"context"
	"database/sql"
	"errors"

	"careernest/internal/database"
	"careernest/internal/domain/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	FindAdminID(ctx context.Context) (uuid.UUID, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userSelect = `SELECT id, name, email, password_hash, role, company_id, created_at, updated_at FROM users`

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE email = $1`, email))
}

// FindAdminID returns the notification recipient for admin-facing events.
// The oldest admin account is the stable choice when there are several.
func (r *PostgresUserRepository) FindAdminID(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	row := r.db.QueryRow(ctx,
		`SELECT id FROM users WHERE role = 'admin' ORDER BY created_at ASC LIMIT 1`,
	)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, user.ErrNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CompanyID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
