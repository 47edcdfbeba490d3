package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

var profileCounter uint64

// referenceTime is a Monday at noon UTC, so weekday math in fixtures is
// predictable.
var referenceTime = time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ProfileOption configures the generated profile fixture.
type ProfileOption func(*persistence.Profile)

// WithRole overrides the fixture role.
func WithRole(role string) ProfileOption {
	return func(p *persistence.Profile) { p.Role = role }
}

// WithCompany overrides the fixture company.
func WithCompany(companyID string) ProfileOption {
	return func(p *persistence.Profile) { p.CompanyID = companyID }
}

// NewProfile returns a deterministic profile with optional overrides.
func NewProfile(opts ...ProfileOption) persistence.Profile {
	idx := atomic.AddUint64(&profileCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	profile := persistence.Profile{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Usuário %03d", idx),
		CompanyID:    "company-1",
		Role:         "corretor",
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&profile)
	}
	return profile
}
