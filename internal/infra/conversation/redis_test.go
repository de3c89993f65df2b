package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedis_AppendRecentAll(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	store := NewRedisFactory(client, time.Hour).Open("s1")

	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, store.Append(ctx, domain.ConversationTurn{
			ID:        fmt.Sprint(i),
			Speaker:   domain.SpeakerUser,
			Text:      fmt.Sprint("msg ", i),
			Timestamp: ts,
		}))
	}
	require.NoError(t, store.Append(ctx, domain.ConversationTurn{
		ID:      "reply",
		Speaker: domain.SpeakerAssistant,
		Text:    "ok",
		Action:  &domain.ActionLink{Label: "Ver clientes", Route: "/clientes"},
		Error:   true,
	}))

	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, "reply", recent[2].ID)
	require.NotNil(t, recent[2].Action)
	assert.Equal(t, "/clientes", recent[2].Action.Route)
	assert.True(t, recent[2].Error)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.True(t, all[0].Timestamp.Equal(ts))
}

func TestRedis_KeysExpire(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedis(client, "s1", time.Minute)

	require.NoError(t, store.Append(ctx, domain.ConversationTurn{ID: "1"}))
	assert.Equal(t, time.Minute, mr.TTL("console:assistant:s1:turns"))

	mr.FastForward(2 * time.Minute)
	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedis_Typing(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	store := NewRedis(client, "s1", time.Hour)

	typing, err := store.Typing(ctx)
	require.NoError(t, err)
	assert.False(t, typing)

	require.NoError(t, store.BeginTyping(ctx))
	typing, _ = store.Typing(ctx)
	assert.True(t, typing)

	require.NoError(t, store.EndTyping(ctx))
	typing, _ = store.Typing(ctx)
	assert.False(t, typing)
}

func TestRedisFactory_Drop(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	f := NewRedisFactory(client, time.Hour)

	require.NoError(t, f.Open("s1").Append(ctx, domain.ConversationTurn{ID: "1"}))
	require.NoError(t, f.Drop(ctx, "s1"))

	assert.False(t, mr.Exists("console:assistant:s1:turns"))
}

func TestRedis_ServerDown(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedis(client, "s1", time.Hour)
	mr.Close()

	err := store.Append(ctx, domain.ConversationTurn{ID: "1"})
	var ext *domain.ErrExternalService
	assert.True(t, errors.As(err, &ext))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
