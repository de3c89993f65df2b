// Package conversation provides the append-only chat log backends: an
// in-memory log for single-instance deployments and a Redis list for shared ones.
package conversation

import (
	"context"
	"sync"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"
)

// Memory is a thread-safe in-memory conversation log.
type Memory struct {
	mu     sync.RWMutex
	turns  []domain.ConversationTurn
	typing int
}

// NewMemory creates an empty log.
func NewMemory() *Memory {
	return &Memory{}
}

// Append adds turn at the end of the log.
func (m *Memory) Append(_ context.Context, turn domain.ConversationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn)
	return nil
}

// Recent returns up to n of the latest turns, oldest first.
func (m *Memory) Recent(_ context.Context, n int) ([]domain.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 {
		return []domain.ConversationTurn{}, nil
	}
	start := len(m.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]domain.ConversationTurn, len(m.turns)-start)
	copy(out, m.turns[start:])
	return out, nil
}

// All returns a copy of the whole log.
func (m *Memory) All(_ context.Context) ([]domain.ConversationTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out, nil
}

// BeginTyping raises the typing indicator for one in-flight dispatch.
func (m *Memory) BeginTyping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.typing++
	return nil
}

// EndTyping lowers the typing indicator for one finished dispatch.
func (m *Memory) EndTyping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.typing > 0 {
		m.typing--
	}
	return nil
}

// Typing reports whether any dispatch is in flight.
func (m *Memory) Typing(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.typing > 0, nil
}

// MemoryFactory hands out one Memory log per session.
type MemoryFactory struct {
	mu   sync.Mutex
	logs map[string]*Memory
}

// NewMemoryFactory creates the factory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{logs: make(map[string]*Memory)}
}

// Open returns the log of sessionID, creating it on first use.
func (f *MemoryFactory) Open(sessionID string) port.ConversationStore {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.logs[sessionID]
	if !ok {
		m = NewMemory()
		f.logs[sessionID] = m
	}
	return m
}

// Drop forgets the log of sessionID.
func (f *MemoryFactory) Drop(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.logs, sessionID)
	return nil
}
