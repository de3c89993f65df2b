package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SnapshotStore holds the catalog snapshot of one assistant session.
// Readers get an immutable value; Load swaps in a complete new snapshot.
type SnapshotStore struct {
	catalog port.CatalogFetcher
	logger  *zap.Logger

	mu   sync.RWMutex
	snap *domain.Snapshot
}

// NewSnapshotStore creates a store holding an empty snapshot.
func NewSnapshotStore(catalog port.CatalogFetcher, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		catalog: catalog,
		logger:  logger,
		snap:    &domain.Snapshot{},
	}
}

// Current returns the last loaded snapshot. Callers must not modify it.
func (s *SnapshotStore) Current() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Load fetches customers, parts and services concurrently and replaces the
// snapshot only when all three succeed. On error the previous one is kept.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "SnapshotStore.Load")
	defer span.End()

	next := &domain.Snapshot{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c, err := s.catalog.ListCustomers(gCtx)
		if err != nil {
			return fmt.Errorf("customers fetch: %w", err)
		}
		next.Customers = c
		return nil
	})
	g.Go(func() error {
		p, err := s.catalog.ListParts(gCtx)
		if err != nil {
			return fmt.Errorf("parts fetch: %w", err)
		}
		next.Parts = p
		return nil
	})
	g.Go(func() error {
		sv, err := s.catalog.ListServices(gCtx)
		if err != nil {
			return fmt.Errorf("services fetch: %w", err)
		}
		next.Services = sv
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("snapshot load failed, keeping previous snapshot", zap.Error(err))
		return s.Current(), err
	}
	next.LoadedAt = time.Now()

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	s.logger.Debug("snapshot loaded",
		zap.Int("customers", len(next.Customers)),
		zap.Int("parts", len(next.Parts)),
		zap.Int("services", len(next.Services)),
	)
	return next, nil
}
