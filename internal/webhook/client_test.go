package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "token-123", NewSigner("segredo"), nil)
	return client
}

func TestClientSendsAuthAndSignature(t *testing.T) {
	var gotAuth, gotSignature string
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotSignature = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`[]`))
	})

	if _, err := client.ListCalendars(context.Background()); err != nil {
		t.Fatalf("ListCalendars error: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !NewSigner("segredo").Verify(gotBody, gotSignature) {
		t.Errorf("signature %q does not verify against body %s", gotSignature, gotBody)
	}
}

func TestClientSurfacesHTTPFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := client.ListCalendars(context.Background()); err == nil {
		t.Fatal("502 response did not produce an error")
	}
}

func TestListAgendaNormalizesProviderEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": [{
			"id": "ev-1",
			"summary": "Visita ao apto 101",
			"description": "Visita com o cliente João Silva",
			"start": {"dateTime": "2026-08-31T14:00:00Z"},
			"end": {"dateTime": "2026-08-31T15:00:00Z"},
			"creator": {"email": "carlos@imob.com"}
		}]}`))
	})

	events, err := client.ListAgenda(context.Background(), "c1", "Plantão Centro",
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListAgenda error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	event := events[0]
	if event.ClientName != "João Silva" {
		t.Errorf("client = %q", event.ClientName)
	}
	if event.Category != "Visita" {
		t.Errorf("category = %q", event.Category)
	}
	if event.Responsible != "carlos" {
		t.Errorf("responsible = %q, want creator email local part", event.Responsible)
	}
}

func TestListAgendaSkipsEventsWithoutStart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": [{"id": "broken"}]}`))
	})

	events, err := client.ListAgenda(context.Background(), "c1", "",
		time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListAgenda error: %v", err)
	}
	if events != nil {
		t.Errorf("events = %+v, want nil", events)
	}
}
