package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/roster"
)

// RosterStore captures the persistence operations needed by the roster service.
type RosterStore interface {
	GetByAssignee(ctx context.Context, calendarID, assigneeID string) (persistence.OncallSchedule, error)
	GetByOwner(ctx context.Context, ownerID, calendarID string) (persistence.OncallSchedule, error)
	UpsertByAssignee(ctx context.Context, schedule persistence.OncallSchedule) error
	UpsertByOwner(ctx context.Context, schedule persistence.OncallSchedule) error
	ListForUser(ctx context.Context, companyID, userID string) ([]persistence.OncallSchedule, error)
}

// RosterService orchestrates loading and saving weekly on-call rosters.
//
// Historic data reaches rows through two different keys: rosters assigned by a
// manager live under (calendar, assigned user), while self-managed rosters
// live under (owner user, calendar). Loads probe the assignee key first and
// fall back to the owner key; a miss on both yields an empty week rather than
// an error.
type RosterService struct {
	rosters     RosterStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRosterService wires dependencies for the roster service.
func NewRosterService(rosters RosterStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RosterService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RosterService{rosters: rosters, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RosterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RosterService", operation, attrs...)
}

// resolveTarget returns the user whose roster the operation acts on. Brokers
// may only act on their own roster; managers and administrators may target any
// user of their company.
func resolveTarget(principal Principal, targetUserID string) (string, error) {
	if targetUserID == "" || targetUserID == principal.UserID {
		return principal.UserID, nil
	}
	if !principal.IsManager() {
		return "", ErrUnauthorized
	}
	return targetUserID, nil
}

// LoadRoster returns the weekly roster for the calendar and target user,
// probing both ownership keys before giving up and returning an empty week.
func (s *RosterService) LoadRoster(ctx context.Context, params LoadRosterParams) (RosterView, error) {
	if s == nil || s.rosters == nil {
		return RosterView{}, fmt.Errorf("roster service not configured")
	}
	if params.CalendarID == "" {
		vErr := &ValidationError{}
		vErr.add("calendar_id", "calendar is required")
		return RosterView{}, vErr
	}

	userID, err := resolveTarget(params.Principal, params.TargetUserID)
	if err != nil {
		return RosterView{}, err
	}

	logger := s.loggerWith(ctx, "LoadRoster", "calendar_id", params.CalendarID, "user_id", userID)

	schedule, err := s.rosters.GetByAssignee(ctx, params.CalendarID, userID)
	if err == nil {
		return RosterView{
			CalendarID: params.CalendarID,
			UserID:     userID,
			Week:       schedule.Week,
			Source:     RosterSourceAssignee,
			UpdatedAt:  schedule.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return RosterView{}, err
	}

	schedule, err = s.rosters.GetByOwner(ctx, userID, params.CalendarID)
	if err == nil {
		logger.InfoContext(ctx, "roster found under owner key")
		return RosterView{
			CalendarID: params.CalendarID,
			UserID:     userID,
			Week:       schedule.Week,
			Source:     RosterSourceOwner,
			UpdatedAt:  schedule.UpdatedAt,
		}, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return RosterView{}, err
	}

	logger.InfoContext(ctx, "no roster stored, returning empty week")
	return RosterView{
		CalendarID: params.CalendarID,
		UserID:     userID,
		Source:     RosterSourceEmpty,
	}, nil
}

// SaveRoster validates, normalizes, and persists the full weekly roster in a
// single write. The row keeps whichever ownership key it already has; new rows
// are keyed by assignee when a manager saves on behalf of another user and by
// owner otherwise. The persisted state is re-read and returned so callers see
// exactly what was stored.
func (s *RosterService) SaveRoster(ctx context.Context, params SaveRosterParams) (RosterView, error) {
	if s == nil || s.rosters == nil {
		return RosterView{}, fmt.Errorf("roster service not configured")
	}
	if params.CalendarID == "" {
		vErr := &ValidationError{}
		vErr.add("calendar_id", "calendar is required")
		return RosterView{}, vErr
	}

	userID, err := resolveTarget(params.Principal, params.TargetUserID)
	if err != nil {
		return RosterView{}, err
	}

	week := roster.FromSlots(params.Slots).Normalize()
	if err := week.Validate(); err != nil {
		vErr := &ValidationError{}
		vErr.add("slots", err.Error())
		return RosterView{}, vErr
	}

	logger := s.loggerWith(ctx, "SaveRoster", "calendar_id", params.CalendarID, "user_id", userID)

	now := s.now()
	schedule, source, err := s.existingSchedule(ctx, params.CalendarID, userID)
	if err != nil {
		return RosterView{}, err
	}

	if source == RosterSourceEmpty {
		schedule = persistence.OncallSchedule{
			ID:         s.idGenerator(),
			CompanyID:  params.Principal.CompanyID,
			CalendarID: params.CalendarID,
			CreatedAt:  now,
		}
		if params.Principal.UserID != userID {
			assignee := userID
			schedule.OwnerUserID = params.Principal.UserID
			schedule.AssignedUserID = &assignee
			source = RosterSourceAssignee
		} else {
			schedule.OwnerUserID = userID
			source = RosterSourceOwner
		}
	}

	schedule.Week = week
	schedule.UpdatedAt = now

	if source == RosterSourceAssignee {
		err = s.rosters.UpsertByAssignee(ctx, schedule)
	} else {
		err = s.rosters.UpsertByOwner(ctx, schedule)
	}
	if err != nil {
		logger.ErrorContext(ctx, "roster save failed", "error", err, "error_kind", ErrorKind(err))
		return RosterView{}, err
	}

	logger.InfoContext(ctx, "roster saved", "source", string(source))

	// Re-read through the regular load path so the caller observes the row as
	// stored, not as submitted.
	return s.LoadRoster(ctx, LoadRosterParams{
		Principal:    params.Principal,
		CalendarID:   params.CalendarID,
		TargetUserID: params.TargetUserID,
	})
}

func (s *RosterService) existingSchedule(ctx context.Context, calendarID, userID string) (persistence.OncallSchedule, RosterSource, error) {
	schedule, err := s.rosters.GetByAssignee(ctx, calendarID, userID)
	if err == nil {
		return schedule, RosterSourceAssignee, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return persistence.OncallSchedule{}, RosterSourceEmpty, err
	}

	schedule, err = s.rosters.GetByOwner(ctx, userID, calendarID)
	if err == nil {
		return schedule, RosterSourceOwner, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return persistence.OncallSchedule{}, RosterSourceEmpty, err
	}
	return persistence.OncallSchedule{}, RosterSourceEmpty, nil
}

// ListRosters returns every roster where the principal is owner or assignee.
func (s *RosterService) ListRosters(ctx context.Context, principal Principal) ([]RosterView, error) {
	if s == nil || s.rosters == nil {
		return nil, fmt.Errorf("roster service not configured")
	}

	schedules, err := s.rosters.ListForUser(ctx, principal.CompanyID, principal.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]RosterView, 0, len(schedules))
	for _, schedule := range schedules {
		source := RosterSourceOwner
		userID := schedule.OwnerUserID
		if schedule.AssignedUserID != nil && *schedule.AssignedUserID == principal.UserID {
			source = RosterSourceAssignee
			userID = *schedule.AssignedUserID
		}
		views = append(views, RosterView{
			CalendarID: schedule.CalendarID,
			UserID:     userID,
			Week:       schedule.Week,
			Source:     source,
			UpdatedAt:  schedule.UpdatedAt,
		})
	}
	return views, nil
}

// ReconcileRosters checks every listed calendar for a stored roster under
// either key and returns empty in-memory weeks for the ones without a row.
// Newly synced calendars thus always present a loadable roster, but no row is
// persisted until the user's first save.
func (s *RosterService) ReconcileRosters(ctx context.Context, params ReconcileRostersParams) (ReconcileRostersResult, error) {
	if s == nil || s.rosters == nil {
		return ReconcileRostersResult{}, fmt.Errorf("roster service not configured")
	}

	logger := s.loggerWith(ctx, "ReconcileRosters", "calendars", len(params.CalendarIDs))

	var result ReconcileRostersResult
	for _, calendarID := range params.CalendarIDs {
		if calendarID == "" {
			continue
		}
		_, source, err := s.existingSchedule(ctx, calendarID, params.Principal.UserID)
		if err != nil {
			return ReconcileRostersResult{}, err
		}
		if source != RosterSourceEmpty {
			continue
		}

		result.Seeded = append(result.Seeded, RosterView{
			CalendarID: calendarID,
			UserID:     params.Principal.UserID,
			Source:     RosterSourceEmpty,
		})
	}

	if len(result.Seeded) > 0 {
		logger.InfoContext(ctx, "unrostered calendars presented", "count", len(result.Seeded))
	}
	return result, nil
}
