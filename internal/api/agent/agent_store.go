package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

// SessionStore keeps conversations between requests.
type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*types.AgentSession, error)
	Save(ctx context.Context, session *types.AgentSession) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var (
	_ SessionStore = (*MemoryStore)(nil)
	_ SessionStore = (*RedisStore)(nil)
)

// MemoryStore holds sessions in process; they expire after the TTL of their last save.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*types.AgentSession, error) {
	v, ok := s.cache.Get(id.String())
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return cloneSession(v.(*types.AgentSession)), nil
}

func (s *MemoryStore) Save(_ context.Context, session *types.AgentSession) error {
	s.cache.Set(session.ID.String(), cloneSession(session), cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.cache.Get(id.String()); !ok {
		return types.ErrSessionNotFound
	}
	s.cache.Delete(id.String())
	return nil
}

// cloneSession copies the history so callers cannot mutate stored state.
// Params are pointer fields but are always replaced, never written through.
func cloneSession(s *types.AgentSession) *types.AgentSession {
	out := *s
	out.History = append([]types.ConversationTurn(nil), s.History...)
	return &out
}

// RedisStore keeps sessions as JSON under agent:session:<id>.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("agent:session:%s", id)
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*types.AgentSession, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get agent session: %w", err)
	}

	var session types.AgentSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal agent session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *types.AgentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal agent session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set agent session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.redis.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete agent session: %w", err)
	}
	if n == 0 {
		return types.ErrSessionNotFound
	}
	return nil
}
