package sqlite

import (
	"context"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// EventRepository persists locally created agenda events in SQLite.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a repository backed by the shared handle.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateEvent inserts a new event row.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.OncallEvent) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO oncall_events (id, company_id, calendar_id, external_id, title, description,
			client_name, category, responsible, start_time, end_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.CompanyID, event.CalendarID, event.ExternalID,
		event.Title, event.Description, event.ClientName, event.Category, event.Responsible,
		event.Start.UTC().Format(time.RFC3339),
		event.End.UTC().Format(time.RFC3339),
		event.CreatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// ListEventsInRange returns the company's events overlapping [from, until),
// ordered by start time.
func (r *EventRepository) ListEventsInRange(ctx context.Context, companyID string, from, until time.Time) ([]persistence.OncallEvent, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT id, company_id, calendar_id, external_id, title, description,
			client_name, category, responsible, start_time, end_time, created_at
		 FROM oncall_events
		 WHERE company_id = ? AND end_time > ? AND start_time < ?
		 ORDER BY start_time, id`,
		companyID, from.UTC().Format(time.RFC3339), until.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.OncallEvent
	for rows.Next() {
		var (
			event                       persistence.OncallEvent
			startTime, endTime, created string
		)
		if err := rows.Scan(&event.ID, &event.CompanyID, &event.CalendarID, &event.ExternalID,
			&event.Title, &event.Description, &event.ClientName, &event.Category, &event.Responsible,
			&startTime, &endTime, &created); err != nil {
			return nil, mapError(err)
		}
		if event.Start, err = time.Parse(time.RFC3339, startTime); err != nil {
			return nil, mapError(err)
		}
		if event.End, err = time.Parse(time.RFC3339, endTime); err != nil {
			return nil, mapError(err)
		}
		if event.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, mapError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

// DeleteEvent removes an event row.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx, `DELETE FROM oncall_events WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
