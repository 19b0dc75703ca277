//go:build integration

package agent

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-flight-explorer/internal/types"
)

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	store := NewRedisStore(client, time.Minute)
	session := &types.AgentSession{
		ID:           uuid.New(),
		History:      []types.ConversationTurn{{Role: types.RoleUser, Content: "beach", Timestamp: time.Now().UTC()}},
		Params:       types.TripParams{TripType: ptr("beach")},
		PendingParam: paramOrigin,
	}

	require.NoError(t, store.Save(ctx, session))
	ttl, err := client.TTL(ctx, sessionKey(session.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "beach", *got.Params.TripType)
	assert.Equal(t, paramOrigin, got.PendingParam)
	require.Len(t, got.History, 1)

	require.NoError(t, store.Delete(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, session.ID), types.ErrSessionNotFound)
}
