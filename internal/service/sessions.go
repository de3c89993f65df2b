package service

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"
	"github.com/boddenberg/ops-console-bfa-go/internal/shortcut"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Session is one mounted assistant widget: its catalog snapshot, its
// conversation log and its keyboard chord state.
type Session struct {
	ID           string
	Snapshot     *SnapshotStore
	Conversation port.ConversationStore

	keysMu sync.Mutex
	keys   *shortcut.Detector
}

// SessionConfig tunes the per-session shortcut detector.
type SessionConfig struct {
	ShortcutWindow time.Duration
	Clock          shortcut.Clock
}

// SessionManager creates and looks up assistant sessions.
type SessionManager struct {
	catalog   port.CatalogFetcher
	sessions  port.Cache[*Session]
	stores    port.ConversationStoreFactory
	notifier  port.Notifier
	navigator port.Navigator
	cfg       SessionConfig
	logger    *zap.Logger
}

// NewSessionManager creates the session manager with all dependencies injected.
func NewSessionManager(
	catalog port.CatalogFetcher,
	sessions port.Cache[*Session],
	stores port.ConversationStoreFactory,
	notifier port.Notifier,
	navigator port.Navigator,
	cfg SessionConfig,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		catalog:   catalog,
		sessions:  sessions,
		stores:    stores,
		notifier:  notifier,
		navigator: navigator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create mounts a new session and loads its snapshot once. A failed load is
// reported to the console and leaves the session with an empty snapshot.
func (m *SessionManager) Create(ctx context.Context) (*Session, error) {
	ctx, span := tracer.Start(ctx, "SessionManager.Create")
	defer span.End()

	id := uuid.New().String()
	span.SetAttributes(attribute.String("session.id", id))

	s := &Session{
		ID:           id,
		Snapshot:     NewSnapshotStore(m.catalog, m.logger.With(zap.String("session_id", id))),
		Conversation: m.stores.Open(id),
		keys:         shortcut.NewDetector(shortcut.DefaultBindings, m.cfg.ShortcutWindow, m.cfg.Clock),
	}

	if _, err := s.Snapshot.Load(ctx); err != nil {
		m.logger.Warn("session created without snapshot",
			zap.String("session_id", id),
			zap.Error(err),
		)
		m.notifier.Notify(ctx, port.NotifyError, "Não foi possível carregar os dados do assistente.")
	}

	m.sessions.Set(id, s)
	m.logger.Info("assistant session created", zap.String("session_id", id))
	return s, nil
}

// Get returns the session or ErrNotFound. Every successful lookup keeps the
// session alive for another TTL.
func (m *SessionManager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok || s == nil || !m.sessions.Touch(id) {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	return s, nil
}

// Reload replaces the session snapshot wholesale.
func (m *SessionManager) Reload(ctx context.Context, id string) (domain.SnapshotSummary, error) {
	ctx, span := tracer.Start(ctx, "SessionManager.Reload")
	defer span.End()

	s, err := m.Get(id)
	if err != nil {
		return domain.SnapshotSummary{}, err
	}

	snap, err := s.Snapshot.Load(ctx)
	if err != nil {
		m.notifier.Notify(ctx, port.NotifyError, "Não foi possível atualizar os dados do assistente.")
		return snap.Summary(), &domain.ErrExternalService{Service: "catalog", Err: err}
	}
	m.notifier.Notify(ctx, port.NotifySuccess, "Dados do assistente atualizados.")
	return snap.Summary(), nil
}

// Close forgets the session and drops its log. In-flight pipelines keep
// their reference and may still append to a log nobody reads.
func (m *SessionManager) Close(ctx context.Context, id string) error {
	m.sessions.Delete(id)
	if err := m.stores.Drop(ctx, id); err != nil {
		m.logger.Warn("conversation log not dropped", zap.String("session_id", id), zap.Error(err))
		return err
	}
	return nil
}

// Evicted drops the log of a session the cache expired. It matches the
// cache eviction callback signature.
func (m *SessionManager) Evicted(id string, _ *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.stores.Drop(ctx, id); err != nil {
		m.logger.Warn("expired session log not dropped", zap.String("session_id", id), zap.Error(err))
		return
	}
	m.logger.Info("assistant session expired", zap.String("session_id", id))
}

// PressKey feeds a key to the session chord detector and navigates when a
// chord completes.
func (m *SessionManager) PressKey(ctx context.Context, id, key string) (*domain.ShortcutResponse, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	s.keysMu.Lock()
	route, ok := s.keys.Press(key)
	pending := s.keys.Pending()
	s.keysMu.Unlock()

	if ok {
		m.navigator.Navigate(ctx, route)
	}
	return &domain.ShortcutResponse{Pending: pending, Route: route}, nil
}
