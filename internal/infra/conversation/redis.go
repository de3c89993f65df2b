package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/boddenberg/ops-console-bfa-go/internal/port"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "console:assistant"

// NewRedisClient creates a Redis client and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Redis stores a session log as a Redis list of JSON turns. RPUSH keeps each
// append atomic across BFA instances. Keys expire ttl after the last append.
type Redis struct {
	client    *redis.Client
	turnsKey  string
	typingKey string
	ttl       time.Duration
}

// NewRedis opens the log of sessionID.
func NewRedis(client *redis.Client, sessionID string, ttl time.Duration) *Redis {
	return &Redis{
		client:    client,
		turnsKey:  fmt.Sprintf("%s:%s:turns", keyPrefix, sessionID),
		typingKey: fmt.Sprintf("%s:%s:typing", keyPrefix, sessionID),
		ttl:       ttl,
	}
}

// Append pushes turn to the end of the list.
func (r *Redis) Append(ctx context.Context, turn domain.ConversationTurn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.turnsKey, payload)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.turnsKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "redis", Err: err}
	}
	return nil
}

// Recent returns up to n of the latest turns, oldest first.
func (r *Redis) Recent(ctx context.Context, n int) ([]domain.ConversationTurn, error) {
	if n <= 0 {
		return []domain.ConversationTurn{}, nil
	}
	return r.lrange(ctx, int64(-n), -1)
}

// All returns the whole log.
func (r *Redis) All(ctx context.Context) ([]domain.ConversationTurn, error) {
	return r.lrange(ctx, 0, -1)
}

func (r *Redis) lrange(ctx context.Context, start, stop int64) ([]domain.ConversationTurn, error) {
	raw, err := r.client.LRange(ctx, r.turnsKey, start, stop).Result()
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "redis", Err: err}
	}

	turns := make([]domain.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var t domain.ConversationTurn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// BeginTyping increments the in-flight counter.
func (r *Redis) BeginTyping(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.typingKey)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.typingKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "redis", Err: err}
	}
	return nil
}

// EndTyping decrements the in-flight counter.
func (r *Redis) EndTyping(ctx context.Context) error {
	if err := r.client.Decr(ctx, r.typingKey).Err(); err != nil {
		return &domain.ErrExternalService{Service: "redis", Err: err}
	}
	return nil
}

// Typing reports whether the in-flight counter is positive.
func (r *Redis) Typing(ctx context.Context) (bool, error) {
	n, err := r.client.Get(ctx, r.typingKey).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, &domain.ErrExternalService{Service: "redis", Err: err}
	}
	return n > 0, nil
}

// RedisFactory opens Redis-backed logs sharing one client.
type RedisFactory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFactory creates the factory.
func NewRedisFactory(client *redis.Client, ttl time.Duration) *RedisFactory {
	return &RedisFactory{client: client, ttl: ttl}
}

// Open implements port.ConversationStoreFactory.
func (f *RedisFactory) Open(sessionID string) port.ConversationStore {
	return NewRedis(f.client, sessionID, f.ttl)
}

// Drop deletes both keys of sessionID.
func (f *RedisFactory) Drop(ctx context.Context, sessionID string) error {
	r := NewRedis(f.client, sessionID, f.ttl)
	if err := f.client.Del(ctx, r.turnsKey, r.typingKey).Err(); err != nil {
		return &domain.ErrExternalService{Service: "redis", Err: err}
	}
	return nil
}
