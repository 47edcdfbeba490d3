package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/imob-backoffice/internal/agenda"
	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/roster"
	"github.com/example/imob-backoffice/internal/webhook"
)

var testPrincipal = application.Principal{
	UserID:    "corretor-1",
	CompanyID: "company-1",
	Role:      application.RoleCorretor,
}

// withPrincipal stands in for RequireSession so handler tests can exercise
// routes without a real session store.
func withPrincipal(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

type fakeRosterService struct {
	saved  application.SaveRosterParams
	loaded application.LoadRosterParams
	view   application.RosterView
	err    error
}

func (f *fakeRosterService) LoadRoster(_ context.Context, params application.LoadRosterParams) (application.RosterView, error) {
	f.loaded = params
	return f.view, f.err
}

func (f *fakeRosterService) SaveRoster(_ context.Context, params application.SaveRosterParams) (application.RosterView, error) {
	f.saved = params
	return f.view, f.err
}

func (f *fakeRosterService) ListRosters(context.Context, application.Principal) ([]application.RosterView, error) {
	return []application.RosterView{f.view}, f.err
}

func (f *fakeRosterService) ReconcileRosters(_ context.Context, params application.ReconcileRostersParams) (application.ReconcileRostersResult, error) {
	result := application.ReconcileRostersResult{}
	for _, calendarID := range params.CalendarIDs {
		result.Seeded = append(result.Seeded, application.RosterView{
			CalendarID: calendarID,
			UserID:     params.Principal.UserID,
			Source:     application.RosterSourceEmpty,
		})
	}
	return result, f.err
}

type fakeAgendaService struct {
	listed application.ListAgendaParams
	events []agenda.Event
	err    error
}

func (f *fakeAgendaService) ListAgenda(_ context.Context, params application.ListAgendaParams) ([]agenda.Event, error) {
	f.listed = params
	return f.events, f.err
}

func (f *fakeAgendaService) CreateEvent(_ context.Context, params application.CreateAgendaEventParams) (agenda.Event, error) {
	if f.err != nil {
		return agenda.Event{}, f.err
	}
	return agenda.Event{
		ID:     "event-1",
		Title:  params.Title,
		Start:  params.Start,
		End:    params.End,
		Source: agenda.SourceLocal,
	}, nil
}

type fakeInstanceService struct {
	status webhook.InstanceStatus
	err    error
}

func (f *fakeInstanceService) CreateInstance(_ context.Context, params application.CreateInstanceParams) (persistence.WhatsappInstance, error) {
	if f.err != nil {
		return persistence.WhatsappInstance{}, f.err
	}
	return persistence.WhatsappInstance{ID: "instance-1", Name: params.Name, Status: "desconectada"}, nil
}

func (f *fakeInstanceService) Connect(context.Context, application.Principal, string) (webhook.InstanceStatus, error) {
	return f.status, f.err
}

func (f *fakeInstanceService) Disconnect(context.Context, application.Principal, string) error {
	return f.err
}

func (f *fakeInstanceService) Delete(context.Context, application.Principal, string) error {
	return f.err
}

func (f *fakeInstanceService) RefreshStatus(context.Context, application.Principal, string) (persistence.WhatsappInstance, error) {
	return persistence.WhatsappInstance{ID: "instance-1", Status: "conectada"}, f.err
}

func (f *fakeInstanceService) List(context.Context, application.Principal) ([]persistence.WhatsappInstance, error) {
	return nil, f.err
}

type fakeEndpointService struct {
	tested string
	result application.EndpointTestResult
	err    error
}

func (f *fakeEndpointService) Create(_ context.Context, params application.CreateEndpointParams) (persistence.Endpoint, error) {
	if f.err != nil {
		return persistence.Endpoint{}, f.err
	}
	return persistence.Endpoint{ID: "endpoint-1", Name: params.Input.Name, URL: params.Input.URL, Enabled: params.Input.Enabled}, nil
}

func (f *fakeEndpointService) List(context.Context, application.Principal) ([]persistence.Endpoint, error) {
	return nil, f.err
}

func (f *fakeEndpointService) Delete(context.Context, application.Principal, string) error {
	return f.err
}

func (f *fakeEndpointService) Test(_ context.Context, _ application.Principal, endpointID string) (application.EndpointTestResult, error) {
	f.tested = endpointID
	return f.result, f.err
}

func TestRouterPutRosterParsesSlots(t *testing.T) {
	service := &fakeRosterService{view: application.RosterView{
		CalendarID: "cal-1",
		UserID:     "corretor-1",
		Source:     application.RosterSourceOwner,
	}}
	router := NewRouter(RouterConfig{
		Rosters:        NewRosterHandler(service, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	body := `{"horarios":[{"dia":0,"inicio":"09:00","fim":"12:30"},{"dia":5,"inicio":"08:00","fim":"11:00"}]}`
	req := httptest.NewRequest(http.MethodPut, "/rosters/cal-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if service.saved.CalendarID != "cal-1" {
		t.Errorf("saved calendar = %q, want cal-1", service.saved.CalendarID)
	}
	if service.saved.Principal != testPrincipal {
		t.Errorf("saved principal = %+v, want %+v", service.saved.Principal, testPrincipal)
	}
	if len(service.saved.Slots) != 2 {
		t.Fatalf("saved %d slots, want 2", len(service.saved.Slots))
	}
	first := service.saved.Slots[0]
	if first.Day != roster.Monday || first.Start.String() != "09:00" || first.End.String() != "12:30" {
		t.Errorf("first slot = %+v, want monday 09:00-12:30", first)
	}
	if service.saved.Slots[1].Day != roster.Saturday {
		t.Errorf("second slot day = %v, want saturday", service.saved.Slots[1].Day)
	}
}

func TestRouterPutRosterRejectsBadTime(t *testing.T) {
	router := NewRouter(RouterConfig{
		Rosters:        NewRosterHandler(&fakeRosterService{}, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	body := `{"horarios":[{"dia":0,"inicio":"não sei","fim":"12:30"}]}`
	req := httptest.NewRequest(http.MethodPut, "/rosters/cal-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouterGetRosterForwardsTargetUser(t *testing.T) {
	service := &fakeRosterService{view: application.RosterView{
		CalendarID: "cal-1",
		UserID:     "corretor-2",
		Source:     application.RosterSourceAssignee,
	}}
	router := NewRouter(RouterConfig{
		Rosters:        NewRosterHandler(service, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodGet, "/rosters/cal-1?usuario=corretor-2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if service.loaded.TargetUserID != "corretor-2" {
		t.Errorf("target user = %q, want corretor-2", service.loaded.TargetUserID)
	}
	if !strings.Contains(rec.Body.String(), `"origem":"assignee"`) {
		t.Errorf("body = %s, want origem assignee", rec.Body.String())
	}
}

func TestRouterListAgendaParsesRange(t *testing.T) {
	service := &fakeAgendaService{events: []agenda.Event{{
		ID:     "event-1",
		Title:  "Visita com o cliente João",
		Start:  time.Date(2026, time.August, 24, 14, 0, 0, 0, time.UTC),
		End:    time.Date(2026, time.August, 24, 15, 0, 0, 0, time.UTC),
		Source: agenda.SourceProvider,
	}}}
	router := NewRouter(RouterConfig{
		Agenda:         NewAgendaHandler(service, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodGet, "/agenda?calendario=cal-1&de=2026-08-24T00:00:00Z&ate=2026-08-25T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if service.listed.CalendarID != "cal-1" {
		t.Errorf("calendar = %q, want cal-1", service.listed.CalendarID)
	}
	if !service.listed.From.Equal(time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, want 2026-08-24T00:00:00Z", service.listed.From)
	}
	if !strings.Contains(rec.Body.String(), `"origem":"provedor"`) {
		t.Errorf("body = %s, want origem provedor", rec.Body.String())
	}
}

func TestRouterListAgendaRejectsBadRange(t *testing.T) {
	router := NewRouter(RouterConfig{
		Agenda:         NewAgendaHandler(&fakeAgendaService{}, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodGet, "/agenda?de=ontem", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRouterInstanceConnect(t *testing.T) {
	service := &fakeInstanceService{status: webhook.InstanceStatus{
		Name:   "plantao-01",
		State:  "conectando",
		QRCode: "data:image/png;base64,abc",
	}}
	router := NewRouter(RouterConfig{
		Instances:      NewInstanceHandler(service, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodPost, "/instances/instance-1/connect", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"qrcode":"data:image/png;base64,abc"`) {
		t.Errorf("body = %s, want qrcode payload", rec.Body.String())
	}
}

func TestRouterEndpointTest(t *testing.T) {
	service := &fakeEndpointService{result: application.EndpointTestResult{
		EndpointID: "endpoint-1",
		Status:     200,
		Latency:    42 * time.Millisecond,
		TestedAt:   time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC),
	}}
	router := NewRouter(RouterConfig{
		Endpoints:      NewEndpointHandler(service, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodPost, "/endpoints/endpoint-1/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if service.tested != "endpoint-1" {
		t.Errorf("tested endpoint = %q, want endpoint-1", service.tested)
	}
	if !strings.Contains(rec.Body.String(), `"latencia_ms":42`) {
		t.Errorf("body = %s, want latencia_ms 42", rec.Body.String())
	}
}

func TestRouterValidationErrorsAreLocalized(t *testing.T) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{
		"title": "title is required",
	}}
	router := NewRouter(RouterConfig{
		Agenda:         NewAgendaHandler(&fakeAgendaService{err: vErr}, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodPost, "/agenda/events", strings.NewReader(`{"calendario_id":"cal-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "O título é obrigatório.") {
		t.Errorf("body = %s, want localized title error", rec.Body.String())
	}
}

func TestRouterExternalServiceFailureMapsToBadGateway(t *testing.T) {
	router := NewRouter(RouterConfig{
		Instances:      NewInstanceHandler(&fakeInstanceService{err: application.ErrExternalService}, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodPost, "/instances/instance-1/connect", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := NewRouter(RouterConfig{
		Rosters:        NewRosterHandler(&fakeRosterService{}, nil),
		RequireSession: withPrincipal(testPrincipal),
	})

	req := httptest.NewRequest(http.MethodDelete, "/rosters", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q, want %q", allow, http.MethodGet)
	}
}

func TestRouterSessionsBypassSessionGuard(t *testing.T) {
	service := &fakeAuthService{result: application.AuthenticateResult{
		UserID: "user-1",
		Token:  "token-abc",
	}}
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "blocked", http.StatusUnauthorized)
		})
	}
	router := NewRouter(RouterConfig{
		Auth:           NewAuthHandler(service, nil),
		RequireSession: deny,
	})

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"a@b.c","senha":"segredo123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (login must not require a session)", rec.Code, http.StatusCreated)
	}
}

func TestRouterProtectedRoutesRequireSessionGuard(t *testing.T) {
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "blocked", http.StatusUnauthorized)
		})
	}
	router := NewRouter(RouterConfig{
		Rosters:        NewRosterHandler(&fakeRosterService{}, nil),
		RequireSession: deny,
	})

	req := httptest.NewRequest(http.MethodGet, "/rosters", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
