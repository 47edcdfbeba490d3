package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/example/imob-backoffice/internal/persistence"
	"github.com/example/imob-backoffice/internal/webhook"
)

// EndpointStore captures the persistence operations needed by the endpoint service.
type EndpointStore interface {
	CreateEndpoint(ctx context.Context, endpoint persistence.Endpoint) error
	GetEndpoint(ctx context.Context, id string) (persistence.Endpoint, error)
	ListEndpoints(ctx context.Context, companyID string) ([]persistence.Endpoint, error)
	RecordTestResult(ctx context.Context, id string, status int, latency time.Duration, testedAt time.Time) error
	DeleteEndpoint(ctx context.Context, id string) error
}

// EndpointService manages automation endpoint registrations and runs signed
// connectivity tests against them.
type EndpointService struct {
	endpoints   EndpointStore
	signer      *webhook.Signer
	token       string
	httpClient  *http.Client
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEndpointService wires dependencies for the endpoint service. token is the
// shared bearer credential test probes present alongside the body signature,
// the same pair production deliveries carry.
func NewEndpointService(endpoints EndpointStore, signer *webhook.Signer, token string, httpClient *http.Client, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EndpointService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EndpointService{
		endpoints:   endpoints,
		signer:      signer,
		token:       token,
		httpClient:  httpClient,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EndpointService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EndpointService", operation, attrs...)
}

// Create registers a new endpoint for the principal's company. Managers only.
func (s *EndpointService) Create(ctx context.Context, params CreateEndpointParams) (persistence.Endpoint, error) {
	if s == nil || s.endpoints == nil {
		return persistence.Endpoint{}, fmt.Errorf("endpoint service not configured")
	}
	if !params.Principal.IsManager() {
		return persistence.Endpoint{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if params.Input.Name == "" {
		vErr.add("name", "name is required")
	}
	parsed, err := url.Parse(params.Input.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		vErr.add("url", "must be a valid URL")
	}
	if vErr.HasErrors() {
		return persistence.Endpoint{}, vErr
	}

	now := s.now()
	endpoint := persistence.Endpoint{
		ID:        s.idGenerator(),
		CompanyID: params.Principal.CompanyID,
		Name:      params.Input.Name,
		URL:       params.Input.URL,
		Enabled:   params.Input.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.endpoints.CreateEndpoint(ctx, endpoint); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Endpoint{}, ErrAlreadyExists
		}
		return persistence.Endpoint{}, err
	}
	return endpoint, nil
}

// List returns the company's registered endpoints.
func (s *EndpointService) List(ctx context.Context, principal Principal) ([]persistence.Endpoint, error) {
	if s == nil || s.endpoints == nil {
		return nil, fmt.Errorf("endpoint service not configured")
	}
	return s.endpoints.ListEndpoints(ctx, principal.CompanyID)
}

// Delete removes an endpoint. Managers only.
func (s *EndpointService) Delete(ctx context.Context, principal Principal, endpointID string) error {
	if s == nil || s.endpoints == nil {
		return fmt.Errorf("endpoint service not configured")
	}
	if !principal.IsManager() {
		return ErrUnauthorized
	}

	if _, err := s.getCompanyEndpoint(ctx, principal, endpointID); err != nil {
		return err
	}
	if err := s.endpoints.DeleteEndpoint(ctx, endpointID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// testPayload is the body sent on connectivity tests. Receiving workflows key
// off "teste" to avoid acting on it.
type testPayload struct {
	Teste    bool   `json:"teste"`
	Origem   string `json:"origem"`
	Enviado  string `json:"enviado_em"`
	Endpoint string `json:"endpoint_id"`
}

// Test posts a signed probe to the endpoint and records status and latency.
// The probe carries the same bearer token and HMAC signature header production
// deliveries use, so the receiving workflow can validate its verification
// logic end to end.
func (s *EndpointService) Test(ctx context.Context, principal Principal, endpointID string) (EndpointTestResult, error) {
	if s == nil || s.endpoints == nil {
		return EndpointTestResult{}, fmt.Errorf("endpoint service not configured")
	}
	if !principal.IsManager() {
		return EndpointTestResult{}, ErrUnauthorized
	}

	endpoint, err := s.getCompanyEndpoint(ctx, principal, endpointID)
	if err != nil {
		return EndpointTestResult{}, err
	}

	logger := s.loggerWith(ctx, "Test", "endpoint_id", endpointID, "url", endpoint.URL)

	testedAt := s.now()
	body, err := json.Marshal(testPayload{
		Teste:    true,
		Origem:   "backoffice",
		Enviado:  testedAt.UTC().Format(time.RFC3339),
		Endpoint: endpoint.ID,
	})
	if err != nil {
		return EndpointTestResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return EndpointTestResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if s.signer != nil {
		req.Header.Set(webhook.SignatureHeader, s.signer.Sign(body))
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	latency := time.Since(start)
	status := 0
	if err != nil {
		logger.ErrorContext(ctx, "endpoint unreachable", "error", err)
	} else {
		status = resp.StatusCode
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}

	if recErr := s.endpoints.RecordTestResult(ctx, endpoint.ID, status, latency, testedAt); recErr != nil {
		return EndpointTestResult{}, recErr
	}

	result := EndpointTestResult{
		EndpointID: endpoint.ID,
		Status:     status,
		Latency:    latency,
		TestedAt:   testedAt,
	}
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	logger.InfoContext(ctx, "endpoint tested", "status", status, "latency", latency)
	return result, nil
}

func (s *EndpointService) getCompanyEndpoint(ctx context.Context, principal Principal, endpointID string) (persistence.Endpoint, error) {
	endpoint, err := s.endpoints.GetEndpoint(ctx, endpointID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Endpoint{}, ErrNotFound
		}
		return persistence.Endpoint{}, err
	}
	if endpoint.CompanyID != principal.CompanyID {
		return persistence.Endpoint{}, ErrNotFound
	}
	return endpoint, nil
}
