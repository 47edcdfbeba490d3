package sqlite

import (
	"context"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// NotificationRepository persists per-user notifications in SQLite.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a repository backed by the shared handle.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a new notification row.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, body, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Title, notification.Body,
		boolToInt(notification.Read),
		notification.CreatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// ListNotifications returns the user's notifications, newest first.
func (r *NotificationRepository) ListNotifications(ctx context.Context, userID string) ([]persistence.Notification, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT id, user_id, title, body, read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		var (
			notification persistence.Notification
			read         int
			createdAt    string
		)
		if err := rows.Scan(&notification.ID, &notification.UserID, &notification.Title,
			&notification.Body, &read, &createdAt); err != nil {
			return nil, mapError(err)
		}
		notification.Read = read != 0
		if notification.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, mapError(err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
