package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// NotificationStore captures the persistence operations needed by the
// notification service.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification persistence.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]persistence.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// NotificationService records and serves per-user notifications.
type NotificationService struct {
	notifications NotificationStore
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger

	mu   sync.Mutex
	sent map[string]time.Time
}

// NewNotificationService wires dependencies for the notification service.
func NewNotificationService(notifications NotificationStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
		sent:          make(map[string]time.Time),
	}
}

// NotifyUpcoming records a reminder for an event starting soon. Repeat calls
// for the same user, title, and start are deduplicated so a polling loop does
// not pile up identical reminders.
func (s *NotificationService) NotifyUpcoming(ctx context.Context, userID, title string, start time.Time) error {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("notification service not configured")
	}

	key := userID + "|" + title + "|" + start.UTC().Format(time.RFC3339)
	s.mu.Lock()
	if _, seen := s.sent[key]; seen {
		s.mu.Unlock()
		return ErrAlreadyExists
	}
	s.sent[key] = s.now()
	s.pruneLocked()
	s.mu.Unlock()

	notification := persistence.Notification{
		ID:        s.idGenerator(),
		UserID:    userID,
		Title:     "Compromisso em breve: " + title,
		Body:      "Início às " + start.Format("02/01/2006 15:04"),
		CreatedAt: s.now(),
	}
	return s.notifications.CreateNotification(ctx, notification)
}

// Create records a notification for a user.
func (s *NotificationService) Create(ctx context.Context, userID, title, body string) (persistence.Notification, error) {
	if s == nil || s.notifications == nil {
		return persistence.Notification{}, fmt.Errorf("notification service not configured")
	}
	if title == "" {
		vErr := &ValidationError{}
		vErr.add("title", "title is required")
		return persistence.Notification{}, vErr
	}

	notification := persistence.Notification{
		ID:        s.idGenerator(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		return persistence.Notification{}, err
	}
	return notification, nil
}

// List returns the principal's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, principal Principal) ([]persistence.Notification, error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("notification service not configured")
	}
	return s.notifications.ListNotifications(ctx, principal.UserID)
}

// MarkRead flags one of the principal's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) error {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("notification service not configured")
	}

	owned, err := s.notifications.ListNotifications(ctx, principal.UserID)
	if err != nil {
		return err
	}
	found := false
	for _, notification := range owned {
		if notification.ID == notificationID {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	if err := s.notifications.MarkNotificationRead(ctx, notificationID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// pruneLocked drops dedup entries older than a day so the map stays bounded.
func (s *NotificationService) pruneLocked() {
	cutoff := s.now().Add(-24 * time.Hour)
	for key, at := range s.sent {
		if at.Before(cutoff) {
			delete(s.sent, key)
		}
	}
}
