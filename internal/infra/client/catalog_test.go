package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/client"
	"github.com/boddenberg/ops-console-bfa-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newClient(t *testing.T, h http.HandlerFunc, cfg resilience.Config) *client.CatalogClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.NewCatalogClient(srv.Client(), srv.URL, resilience.NewCircuitBreaker("console-test", zap.NewNop()), cfg)
}

func TestCatalogClient_ListCustomers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/clientes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1","name":"Acme"},{"id":"2","legalName":"Beta Ltda"}]`))
	}, resilience.Config{MaxConcurrency: 2})

	got, err := c.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Acme" || got[1].DisplayName() != "Beta Ltda" {
		t.Errorf("unexpected customers: %+v", got)
	}
}

func TestCatalogClient_ListParts_NullBodyIsEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}, resilience.Config{MaxConcurrency: 1})

	got, err := c.ListParts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCatalogClient_ListServices_Prices(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"s1","name":"Revisão","unitPrice":150.5},{"id":"s2","name":"Brinde"}]`))
	}, resilience.Config{MaxConcurrency: 1})

	got, err := c.ListServices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].UnitPrice == nil || *got[0].UnitPrice != 150.5 {
		t.Errorf("expected price 150.5, got %v", got[0].UnitPrice)
	}
	if got[1].UnitPrice != nil {
		t.Errorf("expected missing price, got %v", *got[1].UnitPrice)
	}
}

func TestCatalogClient_ServerErrorNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, resilience.Config{MaxConcurrency: 1})

	_, err := c.ListCustomers(context.Background())

	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCatalogClient_RetriesWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}, resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 1})

	if _, err := c.ListParts(context.Background()); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestCatalogClient_CircuitOpen(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, resilience.Config{MaxConcurrency: 1})

	for i := 0; i < 5; i++ {
		_, _ = c.ListCustomers(context.Background())
	}

	_, err := c.ListCustomers(context.Background())
	var open *domain.ErrCircuitOpen
	if !errors.As(err, &open) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}
