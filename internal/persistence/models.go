package persistence

import (
	"time"

	"github.com/example/imob-backoffice/internal/roster"
)

// Profile is a back-office user account scoped to a company.
type Profile struct {
	ID           string
	Email        string
	DisplayName  string
	CompanyID    string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an opaque authentication token issued to a profile.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// OncallSchedule is the persisted weekly on-call roster for one calendar.
// Rows are reachable through either key: (calendar, assigned user) when a
// manager assigned the calendar, or (owner user, calendar) when a broker
// maintains their own.
type OncallSchedule struct {
	ID             string
	CompanyID      string
	CalendarID     string
	OwnerUserID    string
	AssignedUserID *string
	Week           roster.Week
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OncallEvent is a locally recorded agenda entry.
type OncallEvent struct {
	ID          string
	CompanyID   string
	CalendarID  string
	ExternalID  string
	Title       string
	Description string
	ClientName  string
	Category    string
	Responsible string
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
}

// Lead is a prospective client record. Only the fields the agenda notes
// miner reads are modeled here.
type Lead struct {
	ID        string
	CompanyID string
	Name      string
	Phone     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WhatsappInstance mirrors an instance provisioned on the automation engine.
type WhatsappInstance struct {
	ID        string
	CompanyID string
	Name      string
	Status    string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Endpoint is a configured automation webhook endpoint plus the outcome of
// its most recent connectivity test.
type Endpoint struct {
	ID           string
	CompanyID    string
	Name         string
	URL          string
	Enabled      bool
	LastStatus   *int
	LastLatency  *time.Duration
	LastTestedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Notification is a message surfaced to a single user.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
