package application

import (
	"time"

	"github.com/example/imob-backoffice/internal/roster"
)

// Roles assignable to back-office users.
const (
	RoleCorretor = "corretor"
	RoleGestor   = "gestor"
	RoleAdmin    = "admin"
)

// ValidRole reports whether the role name is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleCorretor || role == RoleGestor || role == RoleAdmin
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID    string
	CompanyID string
	Role      string
}

// IsManager reports whether the principal may act on behalf of other brokers.
func (p Principal) IsManager() bool {
	return p.Role == RoleGestor || p.Role == RoleAdmin
}

// IsAdmin reports whether the principal has administrative privileges.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	UserID      string
	DisplayName string
	Role        string
	Token       string
	ExpiresAt   time.Time
}

// ProfileInput captures caller provided profile attributes.
type ProfileInput struct {
	Email       string
	DisplayName string
	Role        string
	Password    string
}

// ProfileView is the profile shape exposed by the application services.
type ProfileView struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProfileParams wraps the data required to create a profile.
type CreateProfileParams struct {
	Principal Principal
	Input     ProfileInput
}

// UpdateProfileParams wraps the data required to update a profile.
type UpdateProfileParams struct {
	Principal Principal
	ProfileID string
	Input     ProfileInput
}

// RosterSource identifies which ownership key produced a loaded roster.
type RosterSource string

const (
	// RosterSourceAssignee means the row was keyed by (calendar, assigned user).
	RosterSourceAssignee RosterSource = "assignee"
	// RosterSourceOwner means the row was keyed by (owner user, calendar).
	RosterSourceOwner RosterSource = "owner"
	// RosterSourceEmpty means no row exists yet for either key.
	RosterSourceEmpty RosterSource = "empty"
)

// RosterView is a loaded weekly roster plus where it came from.
type RosterView struct {
	CalendarID string
	UserID     string
	Week       roster.Week
	Source     RosterSource
	UpdatedAt  time.Time
}

// LoadRosterParams wraps the data required to load a roster.
type LoadRosterParams struct {
	Principal    Principal
	CalendarID   string
	TargetUserID string
}

// SaveRosterParams wraps the data required to save a roster.
type SaveRosterParams struct {
	Principal    Principal
	CalendarID   string
	TargetUserID string
	Slots        []roster.Slot
}

// ReconcileRostersParams wraps the data required to reconcile the roster list
// against a set of calendars.
type ReconcileRostersParams struct {
	Principal   Principal
	CalendarIDs []string
}

// ReconcileRostersResult carries the empty in-memory rosters presented for
// calendars that have no stored row yet.
type ReconcileRostersResult struct {
	Seeded []RosterView
}

// CreateAgendaEventParams wraps the data required to create an agenda event.
type CreateAgendaEventParams struct {
	Principal   Principal
	CalendarID  string
	Title       string
	Description string
	ClientName  string
	Category    string
	Start       time.Time
	End         time.Time
}

// CreateInstanceParams wraps the data required to provision a WhatsApp instance.
type CreateInstanceParams struct {
	Principal Principal
	Name      string
}

// EndpointInput captures caller provided automation endpoint fields.
type EndpointInput struct {
	Name    string
	URL     string
	Enabled bool
}

// CreateEndpointParams wraps the data required to register an endpoint.
type CreateEndpointParams struct {
	Principal Principal
	Input     EndpointInput
}

// EndpointTestResult reports the outcome of a connectivity test.
type EndpointTestResult struct {
	EndpointID string
	Status     int
	Latency    time.Duration
	TestedAt   time.Time
}
