package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/testfixtures"
)

func newNotificationService(store *testfixtures.NotificationStore, clock *testfixtures.Clock) *NotificationService {
	ids := testfixtures.NewIDGenerator("ntf")
	return NewNotificationService(store, ids.NextFunc(), clock.NowFunc(), nil)
}

func TestNotifyUpcomingDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := testfixtures.NewNotificationStore()
	clock := testfixtures.NewClock(time.Time{})
	service := newNotificationService(store, clock)

	start := clock.Now().Add(time.Hour)
	if err := service.NotifyUpcoming(ctx, "corretor-1", "Visita", start); err != nil {
		t.Fatalf("first notify: %v", err)
	}
	if err := service.NotifyUpcoming(ctx, "corretor-1", "Visita", start); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("repeat notify err = %v, want ErrAlreadyExists", err)
	}

	// A different start time is a different reminder.
	if err := service.NotifyUpcoming(ctx, "corretor-1", "Visita", start.Add(time.Hour)); err != nil {
		t.Fatalf("distinct notify: %v", err)
	}

	stored, _ := store.ListNotifications(ctx, "corretor-1")
	if len(stored) != 2 {
		t.Fatalf("got %d notifications, want 2", len(stored))
	}
}

func TestMarkReadOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	store := testfixtures.NewNotificationStore()
	clock := testfixtures.NewClock(time.Time{})
	service := newNotificationService(store, clock)

	created, err := service.Create(ctx, "corretor-1", "Novo lead", "Lead atribuído a você")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := Principal{UserID: "corretor-2", CompanyID: "company-1", Role: RoleCorretor}
	if err := service.MarkRead(ctx, other, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign mark err = %v, want ErrNotFound", err)
	}

	owner := Principal{UserID: "corretor-1", CompanyID: "company-1", Role: RoleCorretor}
	if err := service.MarkRead(ctx, owner, created.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	stored, _ := store.ListNotifications(ctx, "corretor-1")
	if len(stored) != 1 || !stored[0].Read {
		t.Errorf("notification should be read: %+v", stored)
	}
}
