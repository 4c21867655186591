package coordination

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openmarket-labs/vendorflow-backend/internal/orchestration"
	"github.com/openmarket-labs/vendorflow-backend/pkg/enums"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
)

type stubCoordinationService struct {
	orchestrate func(ctx context.Context, orderID uuid.UUID, opts orchestration.Options) (*orchestration.Context, error)
	status      func(ctx context.Context, orderID uuid.UUID) (*orchestration.Snapshot, error)
}

func (s *stubCoordinationService) Orchestrate(ctx context.Context, orderID uuid.UUID, opts orchestration.Options) (*orchestration.Context, error) {
	if s.orchestrate != nil {
		return s.orchestrate(ctx, orderID, opts)
	}
	return nil, nil
}

func (s *stubCoordinationService) Status(ctx context.Context, orderID uuid.UUID) (*orchestration.Snapshot, error) {
	if s.status != nil {
		return s.status(ctx, orderID)
	}
	return nil, nil
}

func testRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/orders/{orderId}/coordination", Start(svc, nil))
	r.Get("/api/v1/orders/{orderId}/coordination", Status(svc, nil))
	return r
}

func TestStartCreatesRun(t *testing.T) {
	orderID := uuid.New()
	runCtx := &orchestration.Context{
		OrderID: orderID,
		Status:  enums.CoordinationStatusCompleted,
	}
	svc := &stubCoordinationService{
		orchestrate: func(ctx context.Context, gotID uuid.UUID, opts orchestration.Options) (*orchestration.Context, error) {
			if gotID != orderID {
				t.Fatalf("unexpected order id %s", gotID)
			}
			if opts.Priority != "express" {
				t.Fatalf("unexpected priority %q", opts.Priority)
			}
			if !opts.ConsolidatedShipping {
				t.Fatalf("consolidated shipping not parsed")
			}
			return runCtx, nil
		},
	}

	body := strings.NewReader(`{"priority":"express","consolidated_shipping":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/coordination", body)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data orchestration.Context `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("unexpected order id in response")
	}
}

func TestStartDefaultsPriorityWithoutBody(t *testing.T) {
	orderID := uuid.New()
	svc := &stubCoordinationService{
		orchestrate: func(ctx context.Context, _ uuid.UUID, opts orchestration.Options) (*orchestration.Context, error) {
			if opts.Priority != "standard" {
				t.Fatalf("expected standard priority, got %q", opts.Priority)
			}
			if opts.ConsolidatedShipping {
				t.Fatalf("consolidated shipping should default to false")
			}
			return &orchestration.Context{OrderID: orderID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/coordination", nil)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStartRejectsInvalidPriority(t *testing.T) {
	called := false
	svc := &stubCoordinationService{
		orchestrate: func(ctx context.Context, _ uuid.UUID, _ orchestration.Options) (*orchestration.Context, error) {
			called = true
			return nil, nil
		},
	}

	body := strings.NewReader(`{"priority":"overnight"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/coordination", body)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatalf("service should not be invoked on validation failure")
	}
}

func TestStartRejectsMalformedOrderID(t *testing.T) {
	svc := &stubCoordinationService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/not-a-uuid/coordination", nil)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStartReturnsExistingRunOnConflict(t *testing.T) {
	orderID := uuid.New()
	existing := &orchestration.Context{
		OrderID: orderID,
		Status:  enums.CoordinationStatusCompleted,
	}
	svc := &stubCoordinationService{
		orchestrate: func(ctx context.Context, _ uuid.UUID, _ orchestration.Options) (*orchestration.Context, error) {
			return existing, pkgerrors.New(pkgerrors.CodeConflict, "order has already been orchestrated")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/coordination", nil)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data orchestration.Context `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("expected existing run in response")
	}
}

func TestStartSurfacesLeaseHeld(t *testing.T) {
	svc := &stubCoordinationService{
		orchestrate: func(ctx context.Context, _ uuid.UUID, _ orchestration.Options) (*orchestration.Context, error) {
			return nil, pkgerrors.New(pkgerrors.CodeLeaseHeld, "a coordination run for this order is already in progress")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/coordination", nil)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeLeaseHeld) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestStatusReportsProgress(t *testing.T) {
	orderID := uuid.New()
	snapshot := &orchestration.Snapshot{
		OrderID:         orderID,
		Status:          enums.CoordinationStatusCoordinating,
		CompletedSteps:  2,
		TotalSteps:      6,
		ProgressPercent: 33,
		UpdatedAt:       time.Now().UTC(),
	}
	svc := &stubCoordinationService{
		status: func(ctx context.Context, gotID uuid.UUID) (*orchestration.Snapshot, error) {
			if gotID != orderID {
				t.Fatalf("unexpected order id %s", gotID)
			}
			return snapshot, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/coordination", nil)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data orchestration.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ProgressPercent != 33 || envelope.Data.TotalSteps != 6 {
		t.Fatalf("unexpected snapshot %+v", envelope.Data)
	}
}

func TestStatusNotFound(t *testing.T) {
	svc := &stubCoordinationService{
		status: func(ctx context.Context, _ uuid.UUID) (*orchestration.Snapshot, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no coordination state for this order")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString()+"/coordination", nil)
	resp := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
