// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

// CatalogFetcher reads the console catalog. Implementations return an empty
// slice, never nil, when there are no records.
type CatalogFetcher interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListParts(ctx context.Context) ([]domain.Part, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
}

// ConversationStore is the append-only chat log of one session.
// Appends must be atomic; no ordering is guaranteed across concurrent callers.
type ConversationStore interface {
	Append(ctx context.Context, turn domain.ConversationTurn) error
	// Recent returns up to n of the latest turns, oldest first.
	Recent(ctx context.Context, n int) ([]domain.ConversationTurn, error)
	All(ctx context.Context) ([]domain.ConversationTurn, error)

	// Typing indicator. Each in-flight dispatch raises it once and lowers it
	// once; it is never stored as a turn.
	BeginTyping(ctx context.Context) error
	EndTyping(ctx context.Context) error
	Typing(ctx context.Context) (bool, error)
}

// ConversationStoreFactory opens the conversation log for a session.
// Drop discards a log; a store already opened keeps working on its own copy.
type ConversationStoreFactory interface {
	Open(sessionID string) ConversationStore
	Drop(ctx context.Context, sessionID string) error
}

// Navigator moves the console UI to a route. Fire-and-forget.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NotifyKind is the toast flavour shown by the console.
type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
)

// Notifier shows a toast in the console. Fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, kind NotifyKind, message string)
}

// Diagnostics receives every failure contained by the dispatcher, with full
// detail. Nothing it receives is ever shown to the user.
type Diagnostics interface {
	LogError(ctx context.Context, err error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	// Touch extends the TTL of a live entry.
	Touch(key string) bool
	Delete(key string)
}
