package sqlite

import (
	"context"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// LeadRepository persists leads in SQLite.
type LeadRepository struct {
	db *DB
}

// NewLeadRepository creates a repository backed by the shared handle.
func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// CreateLead inserts a new lead row.
func (r *LeadRepository) CreateLead(ctx context.Context, lead persistence.Lead) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO leads (id, company_id, name, phone, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.CompanyID, lead.Name, lead.Phone, lead.Notes,
		lead.CreatedAt.UTC().Format(time.RFC3339),
		lead.UpdatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// ListLeadNotes returns the company's leads that carry any notes text.
func (r *LeadRepository) ListLeadNotes(ctx context.Context, companyID string) ([]persistence.Lead, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT id, company_id, name, phone, notes, created_at, updated_at
		 FROM leads WHERE company_id = ? AND notes <> '' ORDER BY name`, companyID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var leads []persistence.Lead
	for rows.Next() {
		var (
			lead                 persistence.Lead
			createdAt, updatedAt string
		)
		if err := rows.Scan(&lead.ID, &lead.CompanyID, &lead.Name, &lead.Phone,
			&lead.Notes, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if lead.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, mapError(err)
		}
		if lead.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, mapError(err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return leads, nil
}
