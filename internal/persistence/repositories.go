package persistence

import (
	"context"
	"time"
)

// ProfileRepository exposes CRUD operations for user profiles.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile Profile) error
	UpdateProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	ListProfilesByCompany(ctx context.Context, companyID string) ([]Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// RosterRepository stores weekly on-call schedules. Both ownership keys from
// the legacy data model are first-class: lookups and upserts can go through
// (calendar, assignee) or (owner, calendar).
type RosterRepository interface {
	GetByAssignee(ctx context.Context, calendarID, assigneeID string) (OncallSchedule, error)
	GetByOwner(ctx context.Context, ownerID, calendarID string) (OncallSchedule, error)
	UpsertByAssignee(ctx context.Context, schedule OncallSchedule) error
	UpsertByOwner(ctx context.Context, schedule OncallSchedule) error
	// ListForUser returns every schedule in the company where the user is
	// either the owner or the assignee.
	ListForUser(ctx context.Context, companyID, userID string) ([]OncallSchedule, error)
}

// EventRepository stores locally created agenda events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event OncallEvent) error
	ListEventsInRange(ctx context.Context, companyID string, from, until time.Time) ([]OncallEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// LeadRepository exposes the lead fields the agenda notes miner reads.
type LeadRepository interface {
	CreateLead(ctx context.Context, lead Lead) error
	ListLeadNotes(ctx context.Context, companyID string) ([]Lead, error)
}

// InstanceRepository stores WhatsApp instance rows mirroring the automation
// engine's state.
type InstanceRepository interface {
	CreateInstance(ctx context.Context, instance WhatsappInstance) error
	GetInstance(ctx context.Context, id string) (WhatsappInstance, error)
	ListInstances(ctx context.Context, companyID string) ([]WhatsappInstance, error)
	UpdateInstanceStatus(ctx context.Context, id, status, phone string, updatedAt time.Time) error
	DeleteInstance(ctx context.Context, id string) error
}

// EndpointRepository stores automation endpoint configurations.
type EndpointRepository interface {
	CreateEndpoint(ctx context.Context, endpoint Endpoint) error
	GetEndpoint(ctx context.Context, id string) (Endpoint, error)
	ListEndpoints(ctx context.Context, companyID string) ([]Endpoint, error)
	RecordTestResult(ctx context.Context, id string, status int, latency time.Duration, testedAt time.Time) error
	DeleteEndpoint(ctx context.Context, id string) error
}

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}
