package repository

import (
	"context"
	"time"

	"careernest/internal/database"
	"careernest/internal/domain/notification"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	ExistsRecent(ctx context.Context, userID uuid.UUID, title, notifType string, since time.Time) (bool, error)
	Insert(ctx context.Context, n notification.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) (bool, error)
}

type PostgresNotificationRepository struct {
	db database.DB
}

func NewPostgresNotificationRepository(db database.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) ExistsRecent(ctx context.Context, userID uuid.UUID, title, notifType string, since time.Time) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND title = $2 AND type = $3 AND created_at > $4
		)`,
		userID, title, notifType, since,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresNotificationRepository) Insert(ctx context.Context, n notification.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, type, message, link)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Title, n.Type, n.Message, n.Link,
	)
	return err
}

func (r *PostgresNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, type, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notification.Notification, 0)
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Type, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) (bool, error) {
	affected, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
