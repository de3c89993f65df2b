package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"
)

// ============================================================
// Mocks
// ============================================================

type mockCatalog struct {
	customers []domain.Customer
	parts     []domain.Part
	services  []domain.Service

	customersErr error
	partsErr     error
	servicesErr  error

	delay      time.Duration
	panicOnAny bool
	calls      atomic.Int32
}

func (m *mockCatalog) wait(ctx context.Context) error {
	m.calls.Add(1)
	if m.panicOnAny {
		panic("catalog adapter exploded")
	}
	if m.delay == 0 {
		return nil
	}
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockCatalog) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.customersErr != nil {
		return nil, m.customersErr
	}
	return m.customers, nil
}

func (m *mockCatalog) ListParts(ctx context.Context) ([]domain.Part, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.partsErr != nil {
		return nil, m.partsErr
	}
	return m.parts, nil
}

func (m *mockCatalog) ListServices(ctx context.Context) ([]domain.Service, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.servicesErr != nil {
		return nil, m.servicesErr
	}
	return m.services, nil
}

type mockDiagnostics struct {
	mu   sync.Mutex
	errs []error
}

func (m *mockDiagnostics) LogError(_ context.Context, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

func (m *mockDiagnostics) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errs)
}

type mockNotifier struct {
	mu    sync.Mutex
	kinds []port.NotifyKind
}

func (m *mockNotifier) Notify(_ context.Context, kind port.NotifyKind, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
}

func (m *mockNotifier) last() port.NotifyKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.kinds) == 0 {
		return ""
	}
	return m.kinds[len(m.kinds)-1]
}

type mockNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (m *mockNavigator) Navigate(_ context.Context, route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func customers(names ...string) []domain.Customer {
	out := make([]domain.Customer, len(names))
	for i, n := range names {
		out[i] = domain.Customer{ID: string(rune('a' + i)), Name: n}
	}
	return out
}
