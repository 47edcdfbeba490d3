package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/roster"
)

// RosterRepository persists weekly on-call schedules in SQLite.
type RosterRepository struct {
	db *DB
}

// NewRosterRepository creates a repository backed by the shared handle.
func NewRosterRepository(db *DB) *RosterRepository {
	return &RosterRepository{db: db}
}

const rosterColumns = `id, company_id, calendar_id, owner_user_id, assigned_user_id,
	mon_works, mon_start, mon_end,
	tue_works, tue_start, tue_end,
	wed_works, wed_start, wed_end,
	thu_works, thu_start, thu_end,
	fri_works, fri_start, fri_end,
	sat_works, sat_start, sat_end,
	sun_works, sun_start, sun_end,
	created_at, updated_at`

const rosterDayAssignments = `
	mon_works = excluded.mon_works, mon_start = excluded.mon_start, mon_end = excluded.mon_end,
	tue_works = excluded.tue_works, tue_start = excluded.tue_start, tue_end = excluded.tue_end,
	wed_works = excluded.wed_works, wed_start = excluded.wed_start, wed_end = excluded.wed_end,
	thu_works = excluded.thu_works, thu_start = excluded.thu_start, thu_end = excluded.thu_end,
	fri_works = excluded.fri_works, fri_start = excluded.fri_start, fri_end = excluded.fri_end,
	sat_works = excluded.sat_works, sat_start = excluded.sat_start, sat_end = excluded.sat_end,
	sun_works = excluded.sun_works, sun_start = excluded.sun_start, sun_end = excluded.sun_end,
	updated_at = excluded.updated_at`

// GetByAssignee loads the schedule keyed by (calendar, assigned user).
func (r *RosterRepository) GetByAssignee(ctx context.Context, calendarID, assigneeID string) (persistence.OncallSchedule, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT `+rosterColumns+` FROM oncall_schedules
		 WHERE calendar_id = ? AND assigned_user_id = ?`, calendarID, assigneeID)
	return scanSchedule(row)
}

// GetByOwner loads the schedule keyed by (owner user, calendar).
func (r *RosterRepository) GetByOwner(ctx context.Context, ownerID, calendarID string) (persistence.OncallSchedule, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT `+rosterColumns+` FROM oncall_schedules
		 WHERE owner_user_id = ? AND calendar_id = ?`, ownerID, calendarID)
	return scanSchedule(row)
}

// UpsertByAssignee writes the schedule, replacing the existing row with the
// same (calendar, assigned user) key when one exists.
func (r *RosterRepository) UpsertByAssignee(ctx context.Context, schedule persistence.OncallSchedule) error {
	return r.upsert(ctx, schedule, "ON CONFLICT (calendar_id, assigned_user_id) DO UPDATE SET")
}

// UpsertByOwner writes the schedule, replacing the existing row with the same
// (owner user, calendar) key when one exists.
func (r *RosterRepository) UpsertByOwner(ctx context.Context, schedule persistence.OncallSchedule) error {
	return r.upsert(ctx, schedule, "ON CONFLICT (owner_user_id, calendar_id) DO UPDATE SET")
}

func (r *RosterRepository) upsert(ctx context.Context, schedule persistence.OncallSchedule, conflict string) error {
	args := []any{
		schedule.ID, schedule.CompanyID, schedule.CalendarID,
		schedule.OwnerUserID, schedule.AssignedUserID,
	}
	args = append(args, weekArgs(schedule.Week)...)
	args = append(args,
		schedule.CreatedAt.UTC().Format(time.RFC3339),
		schedule.UpdatedAt.UTC().Format(time.RFC3339),
	)

	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO oncall_schedules (`+rosterColumns+`)
		 VALUES (?, ?, ?, ?, ?,  ?, ?, ?,  ?, ?, ?,  ?, ?, ?,  ?, ?, ?,  ?, ?, ?,  ?, ?, ?,  ?, ?, ?,  ?, ?)
		 `+conflict+rosterDayAssignments, args...)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ListForUser returns every schedule in the company where the user is either
// the owner or the assignee.
func (r *RosterRepository) ListForUser(ctx context.Context, companyID, userID string) ([]persistence.OncallSchedule, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT `+rosterColumns+` FROM oncall_schedules
		 WHERE company_id = ? AND (owner_user_id = ? OR assigned_user_id = ?)
		 ORDER BY calendar_id`, companyID, userID, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var schedules []persistence.OncallSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return schedules, nil
}

// weekArgs flattens the seven-day roster into the 21 day columns. Times are
// stored as zero-padded "HH:MM" text so round-tripping preserves the display
// form, and non-working days store NULL times.
func weekArgs(week roster.Week) []any {
	args := make([]any, 0, 21)
	for _, day := range week {
		if !day.Works {
			args = append(args, 0, nil, nil)
			continue
		}
		args = append(args, 1, day.Start.String(), day.End.String())
	}
	return args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (persistence.OncallSchedule, error) {
	var (
		schedule             persistence.OncallSchedule
		works                [7]int
		starts, ends         [7]sql.NullString
		createdAt, updatedAt string
	)

	dest := []any{
		&schedule.ID, &schedule.CompanyID, &schedule.CalendarID,
		&schedule.OwnerUserID, &schedule.AssignedUserID,
	}
	for i := 0; i < 7; i++ {
		dest = append(dest, &works[i], &starts[i], &ends[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return persistence.OncallSchedule{}, mapError(err)
	}

	for i := 0; i < 7; i++ {
		if works[i] == 0 {
			continue
		}
		start, err := roster.ParseTimeOfDay(starts[i].String)
		if err != nil {
			return persistence.OncallSchedule{}, fmt.Errorf("sqlite: agenda %s: %w", schedule.ID, err)
		}
		end, err := roster.ParseTimeOfDay(ends[i].String)
		if err != nil {
			return persistence.OncallSchedule{}, fmt.Errorf("sqlite: agenda %s: %w", schedule.ID, err)
		}
		schedule.Week[i] = roster.Day{Works: true, Start: start, End: end}
	}

	var err error
	if schedule.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.OncallSchedule{}, fmt.Errorf("sqlite: agenda %s: %w", schedule.ID, err)
	}
	if schedule.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.OncallSchedule{}, fmt.Errorf("sqlite: agenda %s: %w", schedule.ID, err)
	}
	return schedule, nil
}
