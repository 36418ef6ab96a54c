//go:build integration

package redis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulletin-board/internal/domain"
)

// Requires a running Redis; set BOARD_TEST_REDIS_ADDR=localhost:6379.
func TestRedisOptimisticUpdate(t *testing.T) {
	addr := os.Getenv("BOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BOARD_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	s := New(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Ping(ctx))

	id := uuid.NewString()
	t.Cleanup(func() { _ = s.Delete(context.Background(), id) })

	require.NoError(t, s.Create(ctx, &domain.JobType{ID: id, Name: "Plumber"}))
	assert.ErrorIs(t, s.Create(ctx, &domain.JobType{ID: id, Name: "Plumber"}), domain.ErrJobTypeAlreadyExists)

	first, err := s.Get(ctx, id)
	require.NoError(t, err)
	stale := *first

	first.Name = "Electrician"
	require.NoError(t, s.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	stale.Name = "Carpenter"
	assert.ErrorIs(t, s.Update(ctx, &stale), domain.ErrConcurrencyConflict)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Update(ctx, first), domain.ErrConcurrencyConflict)
	assert.ErrorIs(t, s.Delete(ctx, id), domain.ErrJobTypeNotFound)
}
