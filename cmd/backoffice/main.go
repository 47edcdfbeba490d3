package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/imob-backoffice/internal/agenda"
	"github.com/example/imob-backoffice/internal/application"
	"github.com/example/imob-backoffice/internal/config"
	backofficehttp "github.com/example/imob-backoffice/internal/http"
	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/persistence/sqlite"
	"github.com/example/imob-backoffice/internal/webhook"
)

// upcomingWindow is how far ahead the poller looks when deciding which agenda
// entries deserve a notification.
const upcomingWindow = 30 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("backoffice terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; production injects the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("carregar configuração: %w", err)
	}

	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("carregar fuso horário: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	profiles := sqlite.NewProfileRepository(db)
	sessions := sqlite.NewSessionRepository(db)
	rosters := sqlite.NewRosterRepository(db)
	events := sqlite.NewEventRepository(db)
	leads := sqlite.NewLeadRepository(db)
	instances := sqlite.NewInstanceRepository(db)
	endpoints := sqlite.NewEndpointRepository(db)
	notifications := sqlite.NewNotificationRepository(db)

	signer := webhook.NewSigner(cfg.WebhookSecret)
	engine := webhook.NewClient(cfg.WebhookBaseURL, cfg.WebhookToken, signer, logger)

	authService := application.NewAuthService(profiles, sessions, nil, uuid.NewString, time.Now, cfg.SessionTTL, logger)
	profileService := application.NewProfileService(profiles, nil, uuid.NewString, time.Now)
	rosterService := application.NewRosterService(rosters, uuid.NewString, time.Now, logger)
	calendarService := application.NewCalendarService(engine, logger)
	notes := agenda.NewNoteSource(leadNoteSource{leads: leads})
	agendaService := application.NewAgendaService(engine, events, notes, rosters, uuid.NewString, time.Now, location, logger)
	instanceService := application.NewInstanceService(engine, instances, uuid.NewString, time.Now, logger)
	endpointService := application.NewEndpointService(endpoints, signer, cfg.WebhookToken, nil, uuid.NewString, time.Now, logger)
	notificationService := application.NewNotificationService(notifications, uuid.NewString, time.Now, logger)

	router := backofficehttp.NewRouter(backofficehttp.RouterConfig{
		Auth:           backofficehttp.NewAuthHandler(authService, logger),
		Users:          backofficehttp.NewUserHandler(profileService, logger),
		Calendars:      backofficehttp.NewCalendarHandler(calendarService, logger),
		Rosters:        backofficehttp.NewRosterHandler(rosterService, logger),
		Agenda:         backofficehttp.NewAgendaHandler(agendaService, logger),
		Instances:      backofficehttp.NewInstanceHandler(instanceService, logger),
		Endpoints:      backofficehttp.NewEndpointHandler(endpointService, logger),
		Notifications:  backofficehttp.NewNotificationHandler(notificationService, logger),
		RequireSession: backofficehttp.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			backofficehttp.RequestLogger(logger),
		},
	})

	go agendaService.RunPoller(ctx, cfg.CompanyID, cfg.AgendaPoll, upcomingWindow, notificationService)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("backoffice listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("encerrar servidor: %w", err)
	}
	return nil
}

// leadNoteSource adapts the lead repository to the shape the agenda note
// miner scans.
type leadNoteSource struct {
	leads persistence.LeadRepository
}

func (s leadNoteSource) ListLeadNotes(ctx context.Context, companyID string) ([]agenda.LeadNote, error) {
	leads, err := s.leads.ListLeadNotes(ctx, companyID)
	if err != nil {
		return nil, err
	}
	notes := make([]agenda.LeadNote, 0, len(leads))
	for _, lead := range leads {
		notes = append(notes, agenda.LeadNote{
			LeadID:   lead.ID,
			LeadName: lead.Name,
			Notes:    lead.Notes,
		})
	}
	return notes, nil
}
