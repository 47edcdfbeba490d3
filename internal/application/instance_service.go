package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/webhook"
)

// Instance states mirrored from the automation engine.
const (
	InstanceStateDisconnected = "desconectada"
	InstanceStateConnecting   = "conectando"
	InstanceStateConnected    = "conectada"
)

// InstanceClient is the automation engine surface the instance service needs.
type InstanceClient interface {
	CreateInstance(ctx context.Context, name string) error
	ConnectInstance(ctx context.Context, name string) (webhook.InstanceStatus, error)
	DisconnectInstance(ctx context.Context, name string) error
	DeleteInstance(ctx context.Context, name string) error
	InstanceState(ctx context.Context, name string) (webhook.InstanceStatus, error)
}

// InstanceStore captures the persistence operations needed by the instance service.
type InstanceStore interface {
	CreateInstance(ctx context.Context, instance persistence.WhatsappInstance) error
	GetInstance(ctx context.Context, id string) (persistence.WhatsappInstance, error)
	ListInstances(ctx context.Context, companyID string) ([]persistence.WhatsappInstance, error)
	UpdateInstanceStatus(ctx context.Context, id, status, phone string, updatedAt time.Time) error
	DeleteInstance(ctx context.Context, id string) error
}

var instanceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,31}$`)

// InstanceService manages WhatsApp instance lifecycle against the automation
// engine, keeping a local mirror row per instance.
type InstanceService struct {
	client      InstanceClient
	instances   InstanceStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewInstanceService wires dependencies for the instance service.
func NewInstanceService(client InstanceClient, instances InstanceStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *InstanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InstanceService{client: client, instances: instances, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *InstanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InstanceService", operation, attrs...)
}

// CreateInstance provisions a new instance on the engine and mirrors it
// locally. The two writes form a small saga: when the local insert fails after
// the engine accepted the instance, the engine-side instance is deleted again
// so no orphan keeps consuming a slot there.
func (s *InstanceService) CreateInstance(ctx context.Context, params CreateInstanceParams) (persistence.WhatsappInstance, error) {
	if s == nil || s.client == nil || s.instances == nil {
		return persistence.WhatsappInstance{}, fmt.Errorf("instance service not configured")
	}
	if !params.Principal.IsManager() {
		return persistence.WhatsappInstance{}, ErrUnauthorized
	}
	if !instanceNamePattern.MatchString(params.Name) {
		vErr := &ValidationError{}
		vErr.add("name", "instance name is invalid")
		return persistence.WhatsappInstance{}, vErr
	}

	logger := s.loggerWith(ctx, "CreateInstance", "name", params.Name)

	if err := s.client.CreateInstance(ctx, params.Name); err != nil {
		logger.ErrorContext(ctx, "engine rejected instance creation", "error", err)
		return persistence.WhatsappInstance{}, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	now := s.now()
	instance := persistence.WhatsappInstance{
		ID:        s.idGenerator(),
		CompanyID: params.Principal.CompanyID,
		Name:      params.Name,
		Status:    InstanceStateDisconnected,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.instances.CreateInstance(ctx, instance); err != nil {
		// Compensate: the engine-side instance must not outlive a failed
		// local mirror.
		if delErr := s.client.DeleteInstance(ctx, params.Name); delErr != nil {
			logger.ErrorContext(ctx, "compensating delete failed, instance orphaned on engine",
				"error", delErr, "cause", err)
		} else {
			logger.InfoContext(ctx, "compensating delete succeeded after local persist failure", "cause", err)
		}
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.WhatsappInstance{}, ErrAlreadyExists
		}
		return persistence.WhatsappInstance{}, err
	}

	logger.InfoContext(ctx, "instance created", "instance_id", instance.ID)
	return instance, nil
}

// Connect asks the engine to open a session for the instance and returns the
// pairing QR code while the session is still handshaking.
func (s *InstanceService) Connect(ctx context.Context, principal Principal, instanceID string) (webhook.InstanceStatus, error) {
	if s == nil || s.client == nil || s.instances == nil {
		return webhook.InstanceStatus{}, fmt.Errorf("instance service not configured")
	}
	if !principal.IsManager() {
		return webhook.InstanceStatus{}, ErrUnauthorized
	}

	instance, err := s.getCompanyInstance(ctx, principal, instanceID)
	if err != nil {
		return webhook.InstanceStatus{}, err
	}

	status, err := s.client.ConnectInstance(ctx, instance.Name)
	if err != nil {
		return webhook.InstanceStatus{}, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	state := InstanceStateConnecting
	if status.Connected {
		state = InstanceStateConnected
	}
	if err := s.instances.UpdateInstanceStatus(ctx, instance.ID, state, status.Phone, s.now()); err != nil {
		return webhook.InstanceStatus{}, err
	}
	return status, nil
}

// Disconnect closes the instance's session on the engine.
func (s *InstanceService) Disconnect(ctx context.Context, principal Principal, instanceID string) error {
	if s == nil || s.client == nil || s.instances == nil {
		return fmt.Errorf("instance service not configured")
	}
	if !principal.IsManager() {
		return ErrUnauthorized
	}

	instance, err := s.getCompanyInstance(ctx, principal, instanceID)
	if err != nil {
		return err
	}

	if err := s.client.DisconnectInstance(ctx, instance.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return s.instances.UpdateInstanceStatus(ctx, instance.ID, InstanceStateDisconnected, instance.Phone, s.now())
}

// Delete removes the instance from the engine and then locally. Engine
// deletion happens first: a local row without an engine instance is a benign
// leftover, the reverse is an invisible engine instance.
func (s *InstanceService) Delete(ctx context.Context, principal Principal, instanceID string) error {
	if s == nil || s.client == nil || s.instances == nil {
		return fmt.Errorf("instance service not configured")
	}
	if !principal.IsManager() {
		return ErrUnauthorized
	}

	instance, err := s.getCompanyInstance(ctx, principal, instanceID)
	if err != nil {
		return err
	}

	if err := s.client.DeleteInstance(ctx, instance.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return s.instances.DeleteInstance(ctx, instance.ID)
}

// RefreshStatus queries the engine for the instance's live state and stores it.
func (s *InstanceService) RefreshStatus(ctx context.Context, principal Principal, instanceID string) (persistence.WhatsappInstance, error) {
	if s == nil || s.client == nil || s.instances == nil {
		return persistence.WhatsappInstance{}, fmt.Errorf("instance service not configured")
	}

	instance, err := s.getCompanyInstance(ctx, principal, instanceID)
	if err != nil {
		return persistence.WhatsappInstance{}, err
	}

	status, err := s.client.InstanceState(ctx, instance.Name)
	if err != nil {
		return persistence.WhatsappInstance{}, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	state := InstanceStateDisconnected
	if status.Connected {
		state = InstanceStateConnected
	} else if status.State == InstanceStateConnecting {
		state = InstanceStateConnecting
	}

	now := s.now()
	if err := s.instances.UpdateInstanceStatus(ctx, instance.ID, state, status.Phone, now); err != nil {
		return persistence.WhatsappInstance{}, err
	}

	instance.Status = state
	instance.Phone = status.Phone
	instance.UpdatedAt = now
	return instance, nil
}

// List returns the company's mirrored instances.
func (s *InstanceService) List(ctx context.Context, principal Principal) ([]persistence.WhatsappInstance, error) {
	if s == nil || s.instances == nil {
		return nil, fmt.Errorf("instance service not configured")
	}
	return s.instances.ListInstances(ctx, principal.CompanyID)
}

func (s *InstanceService) getCompanyInstance(ctx context.Context, principal Principal, instanceID string) (persistence.WhatsappInstance, error) {
	instance, err := s.instances.GetInstance(ctx, instanceID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.WhatsappInstance{}, ErrNotFound
		}
		return persistence.WhatsappInstance{}, err
	}
	if instance.CompanyID != principal.CompanyID {
		return persistence.WhatsappInstance{}, ErrNotFound
	}
	return instance, nil
}
