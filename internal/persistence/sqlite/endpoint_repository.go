package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// EndpointRepository persists automation endpoint configurations in SQLite.
type EndpointRepository struct {
	db *DB
}

// NewEndpointRepository creates a repository backed by the shared handle.
func NewEndpointRepository(db *DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

// CreateEndpoint inserts a new endpoint row.
func (r *EndpointRepository) CreateEndpoint(ctx context.Context, endpoint persistence.Endpoint) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO n8n_endpoints (id, company_id, name, url, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		endpoint.ID, endpoint.CompanyID, endpoint.Name, endpoint.URL, boolToInt(endpoint.Enabled),
		endpoint.CreatedAt.UTC().Format(time.RFC3339),
		endpoint.UpdatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// GetEndpoint loads an endpoint by ID.
func (r *EndpointRepository) GetEndpoint(ctx context.Context, id string) (persistence.Endpoint, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT id, company_id, name, url, enabled, last_status, last_latency_ms, last_tested_at, created_at, updated_at
		 FROM n8n_endpoints WHERE id = ?`, id)
	return scanEndpoint(row)
}

// ListEndpoints returns the company's endpoints ordered by name.
func (r *EndpointRepository) ListEndpoints(ctx context.Context, companyID string) ([]persistence.Endpoint, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT id, company_id, name, url, enabled, last_status, last_latency_ms, last_tested_at, created_at, updated_at
		 FROM n8n_endpoints WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var endpoints []persistence.Endpoint
	for rows.Next() {
		endpoint, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, endpoint)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return endpoints, nil
}

// RecordTestResult stores the outcome of a connectivity test.
func (r *EndpointRepository) RecordTestResult(ctx context.Context, id string, status int, latency time.Duration, testedAt time.Time) error {
	result, err := r.db.db.ExecContext(ctx,
		`UPDATE n8n_endpoints
		 SET last_status = ?, last_latency_ms = ?, last_tested_at = ?, updated_at = ?
		 WHERE id = ?`,
		status, latency.Milliseconds(),
		testedAt.UTC().Format(time.RFC3339),
		testedAt.UTC().Format(time.RFC3339), id)
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

// DeleteEndpoint removes an endpoint row.
func (r *EndpointRepository) DeleteEndpoint(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx, `DELETE FROM n8n_endpoints WHERE id = ?`, id)
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

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func scanEndpoint(row rowScanner) (persistence.Endpoint, error) {
	var (
		endpoint             persistence.Endpoint
		enabled              int
		lastStatus           sql.NullInt64
		lastLatencyMS        sql.NullInt64
		lastTestedAt         sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&endpoint.ID, &endpoint.CompanyID, &endpoint.Name, &endpoint.URL,
		&enabled, &lastStatus, &lastLatencyMS, &lastTestedAt, &createdAt, &updatedAt); err != nil {
		return persistence.Endpoint{}, mapError(err)
	}
	endpoint.Enabled = enabled != 0
	if lastStatus.Valid {
		status := int(lastStatus.Int64)
		endpoint.LastStatus = &status
	}
	if lastLatencyMS.Valid {
		latency := time.Duration(lastLatencyMS.Int64) * time.Millisecond
		endpoint.LastLatency = &latency
	}
	if lastTestedAt.Valid {
		testedAt, err := time.Parse(time.RFC3339, lastTestedAt.String)
		if err != nil {
			return persistence.Endpoint{}, mapError(err)
		}
		endpoint.LastTestedAt = &testedAt
	}
	var err error
	if endpoint.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Endpoint{}, mapError(err)
	}
	if endpoint.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Endpoint{}, mapError(err)
	}
	return endpoint, nil
}
