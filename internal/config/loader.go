package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the back-office service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	SessionTTL     time.Duration
	WebhookBaseURL string
	WebhookToken   string
	WebhookSecret  string
	AgendaPoll     time.Duration
	CompanyID      string
	TimeZone       string
}

// Load parses configuration values from the current process environment.
//
// Optional fields receive defaults; required values are validated and reported
// together so operators see every problem in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:backoffice.db?_foreign_keys=on",
		SessionTTL: 24 * time.Hour,
		AgendaPoll: 2 * time.Minute,
		CompanyID:  "matriz",
		TimeZone:   "America/Sao_Paulo",
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BACKOFFICE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BACKOFFICE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BACKOFFICE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BACKOFFICE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BACKOFFICE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if base := strings.TrimSpace(os.Getenv("BACKOFFICE_WEBHOOK_BASE_URL")); base == "" {
		missing = append(missing, "BACKOFFICE_WEBHOOK_BASE_URL")
	} else {
		cfg.WebhookBaseURL = strings.TrimRight(base, "/")
	}

	if token := strings.TrimSpace(os.Getenv("BACKOFFICE_WEBHOOK_TOKEN")); token != "" {
		cfg.WebhookToken = token
	}

	if secret := strings.TrimSpace(os.Getenv("BACKOFFICE_WEBHOOK_SECRET")); secret == "" {
		missing = append(missing, "BACKOFFICE_WEBHOOK_SECRET")
	} else {
		cfg.WebhookSecret = secret
	}

	if company := strings.TrimSpace(os.Getenv("BACKOFFICE_COMPANY_ID")); company != "" {
		cfg.CompanyID = company
	}

	if tz := strings.TrimSpace(os.Getenv("BACKOFFICE_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "BACKOFFICE_TIMEZONE")
		} else {
			cfg.TimeZone = tz
		}
	}

	if pollValue := strings.TrimSpace(os.Getenv("BACKOFFICE_AGENDA_POLL")); pollValue != "" {
		poll, err := time.ParseDuration(pollValue)
		if err != nil || poll <= 0 {
			invalid = append(invalid, "BACKOFFICE_AGENDA_POLL")
		} else {
			cfg.AgendaPoll = poll
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente obrigatórias ausentes: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente com valor inválido: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
