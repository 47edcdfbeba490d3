package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/imob-backoffice/internal/webhook"
)

type fakeCalendarClient struct {
	mu        sync.Mutex
	calendars []webhook.Calendar
	listErr   error
	listCalls int
	added     []string
	deleted   []string
}

func (c *fakeCalendarClient) ListCalendars(context.Context) ([]webhook.Calendar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]webhook.Calendar, len(c.calendars))
	copy(out, c.calendars)
	return out, nil
}

func (c *fakeCalendarClient) AddCalendar(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, name)
	c.calendars = append(c.calendars, webhook.Calendar{ID: name, Name: name})
	return nil
}

func (c *fakeCalendarClient) DeleteCalendar(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return nil
}

// gatedCalendarClient hands each ListCalendars call to the test, which decides
// when and with what the call returns.
type gatedCalendarClient struct {
	calls chan chan []webhook.Calendar
}

func (c *gatedCalendarClient) ListCalendars(context.Context) ([]webhook.Calendar, error) {
	reply := make(chan []webhook.Calendar)
	c.calls <- reply
	return <-reply, nil
}

func (c *gatedCalendarClient) AddCalendar(context.Context, string) error    { return nil }
func (c *gatedCalendarClient) DeleteCalendar(context.Context, string) error { return nil }

func TestListRefreshesOnceAndCaches(t *testing.T) {
	ctx := context.Background()
	client := &fakeCalendarClient{calendars: []webhook.Calendar{{ID: "cal-1", Name: "Plantão"}}}
	service := NewCalendarService(client, nil)

	for i := 0; i < 3; i++ {
		calendars, err := service.List(ctx)
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if len(calendars) != 1 || calendars[0].ID != "cal-1" {
			t.Fatalf("unexpected calendars: %+v", calendars)
		}
	}
	if client.listCalls != 1 {
		t.Errorf("list calls = %d, want 1 (cached afterwards)", client.listCalls)
	}
}

func TestRefreshWrapsEngineFailure(t *testing.T) {
	ctx := context.Background()
	client := &fakeCalendarClient{listErr: fmt.Errorf("engine down")}
	service := NewCalendarService(client, nil)

	if _, err := service.Refresh(ctx); !errors.Is(err, ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
}

func TestStaleRefreshResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	client := &gatedCalendarClient{calls: make(chan chan []webhook.Calendar)}
	service := NewCalendarService(client, nil)

	firstDone := make(chan []webhook.Calendar, 1)
	go func() {
		calendars, _ := service.Refresh(ctx)
		firstDone <- calendars
	}()
	firstReply := <-client.calls

	secondDone := make(chan []webhook.Calendar, 1)
	go func() {
		calendars, _ := service.Refresh(ctx)
		secondDone <- calendars
	}()
	secondReply := <-client.calls

	// The newer refresh completes first with the fresh list.
	secondReply <- []webhook.Calendar{{ID: "cal-new", Name: "Novo"}}
	<-secondDone

	// The older refresh completes late with an outdated list.
	firstReply <- []webhook.Calendar{{ID: "cal-old", Name: "Velho"}}
	got := <-firstDone

	if len(got) != 1 || got[0].ID != "cal-new" {
		t.Fatalf("stale refresh returned %+v, want the installed cal-new snapshot", got)
	}

	calendars, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(calendars) != 1 || calendars[0].ID != "cal-new" {
		t.Fatalf("snapshot = %+v, want cal-new only", calendars)
	}
}

func TestCalendarMutationsRequireManager(t *testing.T) {
	ctx := context.Background()
	client := &fakeCalendarClient{}
	service := NewCalendarService(client, nil)

	if _, err := service.Add(ctx, broker, "Plantão fim de semana"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("add err = %v, want ErrUnauthorized", err)
	}
	if _, err := service.Remove(ctx, broker, "cal-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("remove err = %v, want ErrUnauthorized", err)
	}

	if _, err := service.Add(ctx, manager, "Plantão fim de semana"); err != nil {
		t.Fatalf("manager add: %v", err)
	}
	if len(client.added) != 1 {
		t.Errorf("added = %v, want one entry", client.added)
	}
}
