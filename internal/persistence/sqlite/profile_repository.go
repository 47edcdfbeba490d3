package sqlite

import (
	"context"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// ProfileRepository persists user profiles in SQLite.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a repository backed by the shared handle.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateProfile inserts a new profile row.
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile persistence.Profile) error {
	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, email, display_name, company_id, role, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Email, profile.DisplayName, profile.CompanyID,
		profile.Role, profile.PasswordHash,
		profile.CreatedAt.UTC().Format(time.RFC3339),
		profile.UpdatedAt.UTC().Format(time.RFC3339))
	return mapError(err)
}

// UpdateProfile rewrites the mutable profile fields.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile persistence.Profile) error {
	result, err := r.db.db.ExecContext(ctx,
		`UPDATE user_profiles
		 SET email = ?, display_name = ?, role = ?, password_hash = ?, updated_at = ?
		 WHERE id = ?`,
		profile.Email, profile.DisplayName, profile.Role, profile.PasswordHash,
		profile.UpdatedAt.UTC().Format(time.RFC3339), profile.ID)
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

// GetProfile loads a profile by ID.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (persistence.Profile, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, company_id, role, password_hash, created_at, updated_at
		 FROM user_profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// GetProfileByEmail loads a profile by its e-mail address, case-insensitively.
func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (persistence.Profile, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, company_id, role, password_hash, created_at, updated_at
		 FROM user_profiles WHERE email = ? COLLATE NOCASE`, email)
	return scanProfile(row)
}

// ListProfilesByCompany returns every profile of the company ordered by name.
func (r *ProfileRepository) ListProfilesByCompany(ctx context.Context, companyID string) ([]persistence.Profile, error) {
	rows, err := r.db.db.QueryContext(ctx,
		`SELECT id, email, display_name, company_id, role, password_hash, created_at, updated_at
		 FROM user_profiles WHERE company_id = ? ORDER BY display_name`, companyID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var profiles []persistence.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return profiles, nil
}

// DeleteProfile removes a profile row.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = ?`, id)
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

func scanProfile(row rowScanner) (persistence.Profile, error) {
	var (
		profile              persistence.Profile
		createdAt, updatedAt string
	)
	if err := row.Scan(&profile.ID, &profile.Email, &profile.DisplayName,
		&profile.CompanyID, &profile.Role, &profile.PasswordHash,
		&createdAt, &updatedAt); err != nil {
		return persistence.Profile{}, mapError(err)
	}
	var err error
	if profile.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Profile{}, mapError(err)
	}
	if profile.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Profile{}, mapError(err)
	}
	return profile, nil
}
