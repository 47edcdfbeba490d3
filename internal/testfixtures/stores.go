package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
)

// ProfileStore is an in-memory profile store for service tests.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]persistence.Profile
}

// NewProfileStore creates an empty in-memory profile store.
func NewProfileStore(seed ...persistence.Profile) *ProfileStore {
	store := &ProfileStore{profiles: make(map[string]persistence.Profile)}
	for _, profile := range seed {
		store.profiles[profile.ID] = profile
	}
	return store
}

func (s *ProfileStore) CreateProfile(_ context.Context, profile persistence.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.Email == profile.Email {
			return persistence.ErrDuplicate
		}
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *ProfileStore) UpdateProfile(_ context.Context, profile persistence.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *ProfileStore) GetProfile(_ context.Context, id string) (persistence.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[id]
	if !ok {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	return profile, nil
}

func (s *ProfileStore) GetProfileByEmail(_ context.Context, email string) (persistence.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, profile := range s.profiles {
		if profile.Email == email {
			return profile, nil
		}
	}
	return persistence.Profile{}, persistence.ErrNotFound
}

func (s *ProfileStore) ListProfilesByCompany(_ context.Context, companyID string) ([]persistence.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.Profile
	for _, profile := range s.profiles {
		if profile.CompanyID == companyID {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (s *ProfileStore) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

// SessionStore is an in-memory session store for service tests.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]persistence.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]persistence.Session)}
}

func (s *SessionStore) CreateSession(_ context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *SessionStore) GetSession(_ context.Context, token string) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) RevokeSession(_ context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || session.RevokedAt != nil {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *SessionStore) DeleteExpiredSessions(_ context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// RosterStore is an in-memory roster store for service tests.
type RosterStore struct {
	mu        sync.Mutex
	schedules map[string]persistence.OncallSchedule
}

// NewRosterStore creates an empty in-memory roster store.
func NewRosterStore() *RosterStore {
	return &RosterStore{schedules: make(map[string]persistence.OncallSchedule)}
}

func assigneeKey(calendarID, assigneeID string) string { return "a|" + calendarID + "|" + assigneeID }
func ownerKey(ownerID, calendarID string) string       { return "o|" + ownerID + "|" + calendarID }

func (s *RosterStore) GetByAssignee(_ context.Context, calendarID, assigneeID string) (persistence.OncallSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[assigneeKey(calendarID, assigneeID)]
	if !ok {
		return persistence.OncallSchedule{}, persistence.ErrNotFound
	}
	return schedule, nil
}

func (s *RosterStore) GetByOwner(_ context.Context, ownerID, calendarID string) (persistence.OncallSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[ownerKey(ownerID, calendarID)]
	if !ok {
		return persistence.OncallSchedule{}, persistence.ErrNotFound
	}
	return schedule, nil
}

func (s *RosterStore) UpsertByAssignee(_ context.Context, schedule persistence.OncallSchedule) error {
	if schedule.AssignedUserID == nil {
		return persistence.ErrConstraintViolation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assigneeKey(schedule.CalendarID, *schedule.AssignedUserID)
	if existing, ok := s.schedules[key]; ok {
		schedule.ID = existing.ID
		schedule.CreatedAt = existing.CreatedAt
	}
	s.schedules[key] = schedule
	return nil
}

func (s *RosterStore) UpsertByOwner(_ context.Context, schedule persistence.OncallSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerKey(schedule.OwnerUserID, schedule.CalendarID)
	if existing, ok := s.schedules[key]; ok {
		schedule.ID = existing.ID
		schedule.CreatedAt = existing.CreatedAt
	}
	s.schedules[key] = schedule
	return nil
}

func (s *RosterStore) ListForUser(_ context.Context, companyID, userID string) ([]persistence.OncallSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.OncallSchedule
	for _, schedule := range s.schedules {
		if schedule.CompanyID != companyID {
			continue
		}
		if schedule.OwnerUserID == userID ||
			(schedule.AssignedUserID != nil && *schedule.AssignedUserID == userID) {
			out = append(out, schedule)
		}
	}
	return out, nil
}

// EventStore is an in-memory event store for service tests.
type EventStore struct {
	mu     sync.Mutex
	events []persistence.OncallEvent
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore(seed ...persistence.OncallEvent) *EventStore {
	return &EventStore{events: seed}
}

func (s *EventStore) CreateEvent(_ context.Context, event persistence.OncallEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *EventStore) ListEventsInRange(_ context.Context, companyID string, from, until time.Time) ([]persistence.OncallEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.OncallEvent
	for _, event := range s.events {
		if event.CompanyID != companyID {
			continue
		}
		if event.End.After(from) && event.Start.Before(until) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *EventStore) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, event := range s.events {
		if event.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

// InstanceStore is an in-memory WhatsApp instance store for service tests.
type InstanceStore struct {
	mu        sync.Mutex
	instances map[string]persistence.WhatsappInstance
	// FailCreate makes the next CreateInstance call fail, for saga tests.
	FailCreate error
}

// NewInstanceStore creates an empty in-memory instance store.
func NewInstanceStore() *InstanceStore {
	return &InstanceStore{instances: make(map[string]persistence.WhatsappInstance)}
}

func (s *InstanceStore) CreateInstance(_ context.Context, instance persistence.WhatsappInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		err := s.FailCreate
		s.FailCreate = nil
		return err
	}
	for _, existing := range s.instances {
		if existing.CompanyID == instance.CompanyID && existing.Name == instance.Name {
			return persistence.ErrDuplicate
		}
	}
	s.instances[instance.ID] = instance
	return nil
}

func (s *InstanceStore) GetInstance(_ context.Context, id string) (persistence.WhatsappInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[id]
	if !ok {
		return persistence.WhatsappInstance{}, persistence.ErrNotFound
	}
	return instance, nil
}

func (s *InstanceStore) ListInstances(_ context.Context, companyID string) ([]persistence.WhatsappInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.WhatsappInstance
	for _, instance := range s.instances {
		if instance.CompanyID == companyID {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (s *InstanceStore) UpdateInstanceStatus(_ context.Context, id, status, phone string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[id]
	if !ok {
		return persistence.ErrNotFound
	}
	instance.Status = status
	instance.Phone = phone
	instance.UpdatedAt = updatedAt
	s.instances[id] = instance
	return nil
}

func (s *InstanceStore) DeleteInstance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.instances, id)
	return nil
}

// EndpointStore is an in-memory endpoint store for service tests.
type EndpointStore struct {
	mu        sync.Mutex
	endpoints map[string]persistence.Endpoint
}

// NewEndpointStore creates an empty in-memory endpoint store.
func NewEndpointStore() *EndpointStore {
	return &EndpointStore{endpoints: make(map[string]persistence.Endpoint)}
}

func (s *EndpointStore) CreateEndpoint(_ context.Context, endpoint persistence.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints[endpoint.ID] = endpoint
	return nil
}

func (s *EndpointStore) GetEndpoint(_ context.Context, id string) (persistence.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	endpoint, ok := s.endpoints[id]
	if !ok {
		return persistence.Endpoint{}, persistence.ErrNotFound
	}
	return endpoint, nil
}

func (s *EndpointStore) ListEndpoints(_ context.Context, companyID string) ([]persistence.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.Endpoint
	for _, endpoint := range s.endpoints {
		if endpoint.CompanyID == companyID {
			out = append(out, endpoint)
		}
	}
	return out, nil
}

func (s *EndpointStore) RecordTestResult(_ context.Context, id string, status int, latency time.Duration, testedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	endpoint, ok := s.endpoints[id]
	if !ok {
		return persistence.ErrNotFound
	}
	endpoint.LastStatus = &status
	endpoint.LastLatency = &latency
	endpoint.LastTestedAt = &testedAt
	endpoint.UpdatedAt = testedAt
	s.endpoints[id] = endpoint
	return nil
}

func (s *EndpointStore) DeleteEndpoint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.endpoints, id)
	return nil
}

// NotificationStore is an in-memory notification store for service tests.
type NotificationStore struct {
	mu            sync.Mutex
	notifications []persistence.Notification
}

// NewNotificationStore creates an empty in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) CreateNotification(_ context.Context, notification persistence.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification)
	return nil
}

func (s *NotificationStore) ListNotifications(_ context.Context, userID string) ([]persistence.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.Notification
	for _, notification := range s.notifications {
		if notification.UserID == userID {
			out = append(out, notification)
		}
	}
	return out, nil
}

func (s *NotificationStore) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, notification := range s.notifications {
		if notification.ID == id {
			s.notifications[i].Read = true
			return nil
		}
	}
	return persistence.ErrNotFound
}
