package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	redisKeyPrefix = "ytbw:session:"
	redisTimeout   = 2 * time.Second
)

// Store persists session state. Load returns a fresh State for unknown IDs.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in a map
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
	ttl      time.Duration
}

// NewMemoryStore creates an in-memory store; ttl <= 0 keeps sessions forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*State), ttl: ttl}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || m.expired(state) {
		return NewState(id), nil
	}
	// Return a copy to prevent external modification without Save
	return state.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state.UpdatedAt = time.Now()
	m.sessions[state.ID] = state.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) expired(s *State) bool {
	return m.ttl > 0 && time.Since(s.UpdatedAt) > m.ttl
}

// RedisStore keeps sessions as JSON under ytbw:session:<id> with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return NewState(id), nil
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var state State
	if err := json.Unmarshal(val, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (r *RedisStore) Save(ctx context.Context, state *State) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	state.UpdatedAt = time.Now()
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	return r.client.Set(ctx, r.key(state.ID), b, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return r.client.Del(ctx, r.key(id)).Err()
}

// NewRedisClient constructs a go-redis client, or nil when addr is empty
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// PingRedis validates the connection
func PingRedis(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
