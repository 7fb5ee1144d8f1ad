package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"careernest/internal/domain/notification"
	"careernest/internal/repository"

	"github.com/google/uuid"
)

type NotificationUsecase interface {
	NotificationDispatcher

	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
}

type Notifier struct {
	repo   repository.NotificationRepository
	cache  DedupCache
	logger *log.Logger

	now func() time.Time
}

func NewNotificationUsecase(repo repository.NotificationRepository, cache DedupCache, logger *log.Logger) *Notifier {
	return &Notifier{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Notify inserts a notification row unless an identical (user, title, type)
// notification was created within the dedup window. The redis reservation
// short-circuits repeat dispatches cheaply; the storage probe stays
// authoritative when redis is down.
func (u *Notifier) Notify(ctx context.Context, userID uuid.UUID, title, notifType, message string, link *string) error {
	title = strings.TrimSpace(title)
	notifType = strings.TrimSpace(notifType)
	message = strings.TrimSpace(message)
	if userID == uuid.Nil || title == "" || notifType == "" || message == "" {
		return ErrInvalidInput
	}

	reserved := false
	dedupKey := dedupCacheKey(userID, title, notifType)
	if u.cache != nil {
		ok, err := u.cache.SetIfNotExists(ctx, dedupKey, "1", notification.DedupWindow)
		if err == nil && !ok {
			return ErrNotificationExists
		}
		reserved = err == nil && ok
	}

	since := u.now().Add(-notification.DedupWindow)
	exists, err := u.repo.ExistsRecent(ctx, userID, title, notifType, since)
	if err != nil {
		u.releaseReservation(ctx, reserved, dedupKey)
		u.logf("dedup probe failed | user_id=%s err=%v", userID, err)
		return ErrInternal
	}
	if exists {
		return ErrNotificationExists
	}

	n := notification.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Type:    notifType,
		Message: message,
		Link:    link,
	}
	if err := u.repo.Insert(ctx, n); err != nil {
		u.releaseReservation(ctx, reserved, dedupKey)
		u.logf("insert failed | user_id=%s err=%v", userID, err)
		return ErrInternal
	}
	return nil
}

func (u *Notifier) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit < 0 {
		return nil, ErrInvalidInput
	}
	out, err := u.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		u.logf("listing failed | user_id=%s err=%v", userID, err)
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Notifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := u.repo.UnreadCount(ctx, userID)
	if err != nil {
		u.logf("unread count failed | user_id=%s err=%v", userID, err)
		return 0, ErrInternal
	}
	return count, nil
}

func (u *Notifier) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	ok, err := u.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		u.logf("mark read failed | notification_id=%s err=%v", notificationID, err)
		return ErrInternal
	}
	if !ok {
		return ErrNotFoundOrUnauthorized
	}
	return nil
}

// releaseReservation frees the dedup key when the insert it guarded did not
// happen, so a retry within the window is not silently suppressed.
func (u *Notifier) releaseReservation(ctx context.Context, reserved bool, key string) {
	if !reserved || u.cache == nil {
		return
	}
	_ = u.cache.Delete(ctx, key)
}

func dedupCacheKey(userID uuid.UUID, title, notifType string) string {
	return fmt.Sprintf("notifications:dedup:%s:%s:%s", userID, notifType, title)
}

func (u *Notifier) logf(format string, args ...any) {
	if u == nil || u.logger == nil {
		return
	}
	u.logger.Printf("[Notify] "+format, args...)
}
