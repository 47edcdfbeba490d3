package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BACKOFFICE_WEBHOOK_BASE_URL", "https://automation.example.com/webhook")
	t.Setenv("BACKOFFICE_WEBHOOK_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKOFFICE_HTTP_PORT", "")
	t.Setenv("BACKOFFICE_SQLITE_DSN", "")
	t.Setenv("BACKOFFICE_SESSION_TTL", "")
	t.Setenv("BACKOFFICE_AGENDA_POLL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %s, want 24h", cfg.SessionTTL)
	}
	if cfg.AgendaPoll != 2*time.Minute {
		t.Errorf("AgendaPoll = %s, want 2m", cfg.AgendaPoll)
	}
	if cfg.CompanyID != "matriz" {
		t.Errorf("CompanyID = %q, want matriz", cfg.CompanyID)
	}
	if cfg.TimeZone != "America/Sao_Paulo" {
		t.Errorf("TimeZone = %q, want America/Sao_Paulo", cfg.TimeZone)
	}
}

func TestLoadInvalidTimeZone(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKOFFICE_TIMEZONE", "Marte/Cratera")

	_, err := Load()
	if err == nil {
		t.Fatal("Load succeeded with invalid timezone")
	}
	if !strings.Contains(err.Error(), "BACKOFFICE_TIMEZONE") {
		t.Errorf("error %q does not mention BACKOFFICE_TIMEZONE", err)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BACKOFFICE_WEBHOOK_BASE_URL", "")
	t.Setenv("BACKOFFICE_WEBHOOK_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load succeeded without required variables")
	}
	for _, name := range []string{"BACKOFFICE_WEBHOOK_BASE_URL", "BACKOFFICE_WEBHOOK_SECRET"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

func TestLoadInvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKOFFICE_HTTP_PORT", "zero")
	t.Setenv("BACKOFFICE_SESSION_TTL", "-1h")

	_, err := Load()
	if err == nil {
		t.Fatal("Load succeeded with invalid values")
	}
	if !strings.Contains(err.Error(), "BACKOFFICE_HTTP_PORT") {
		t.Errorf("error %q does not mention BACKOFFICE_HTTP_PORT", err)
	}
	if !strings.Contains(err.Error(), "BACKOFFICE_SESSION_TTL") {
		t.Errorf("error %q does not mention BACKOFFICE_SESSION_TTL", err)
	}
}

func TestLoadTrimsBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("BACKOFFICE_WEBHOOK_BASE_URL", "https://automation.example.com/webhook/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if strings.HasSuffix(cfg.WebhookBaseURL, "/") {
		t.Errorf("WebhookBaseURL %q retains trailing slash", cfg.WebhookBaseURL)
	}
}
