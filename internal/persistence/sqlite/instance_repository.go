package sqlite

import (
	"context"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// InstanceRepository persists WhatsApp instance rows in SQLite.
type InstanceRepository struct {
	db *DB
}

// NewInstanceRepository creates a repository backed by the shared handle.
func NewInstanceRepository(db *DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// CreateInstance inserts a new instance row.
func (r *InstanceRepository) CreateInstance(ctx context.Context, instance persistence.WhatsappInstance) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO whatsapp_instances (id, company_id, name, status, phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		instance.ID, instance.CompanyID, instance.Name, instance.Status, instance.Phone,
		instance.CreatedAt.UTC().Format(time.RFC3339),
		instance.UpdatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// GetInstance loads an instance by ID.
func (r *InstanceRepository) GetInstance(ctx context.Context, id string) (persistence.WhatsappInstance, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, status, phone, created_at, updated_at
		 FROM whatsapp_instances WHERE id = ?`, id)
	return scanInstance(row)
}

// ListInstances returns the company's instances ordered by name.
func (r *InstanceRepository) ListInstances(ctx context.Context, companyID string) ([]persistence.WhatsappInstance, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT id, company_id, name, status, phone, created_at, updated_at
		 FROM whatsapp_instances WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var instances []persistence.WhatsappInstance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return instances, nil
}

// UpdateInstanceStatus records the status and phone reported by the
// automation engine.
func (r *InstanceRepository) UpdateInstanceStatus(ctx context.Context, id, status, phone string, updatedAt time.Time) error {
	result, err := r.db.db.ExecContext(ctx,
		`UPDATE whatsapp_instances SET status = ?, phone = ?, updated_at = ? WHERE id = ?`,
		status, phone, updatedAt.UTC().Format(time.RFC3339), id)
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

// DeleteInstance removes an instance row.
func (r *InstanceRepository) DeleteInstance(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx, `DELETE FROM whatsapp_instances WHERE id = ?`, id)
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

func scanInstance(row rowScanner) (persistence.WhatsappInstance, error) {
	var (
		instance             persistence.WhatsappInstance
		createdAt, updatedAt string
	)
	if err := row.Scan(&instance.ID, &instance.CompanyID, &instance.Name,
		&instance.Status, &instance.Phone, &createdAt, &updatedAt); err != nil {
		return persistence.WhatsappInstance{}, mapError(err)
	}
	var err error
	if instance.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.WhatsappInstance{}, mapError(err)
	}
	if instance.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.WhatsappInstance{}, mapError(err)
	}
	return instance, nil
}
