//go:build integration

package etcd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"bulletin-board/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running etcd; set BOARD_TEST_ETCD_ENDPOINTS=localhost:2379.
func newTestRepository(t *testing.T) domain.JobTypeRepository {
	t.Helper()
	endpoints := os.Getenv("BOARD_TEST_ETCD_ENDPOINTS")
	if endpoints == "" {
		t.Skip("BOARD_TEST_ETCD_ENDPOINTS not set")
	}
	client, err := NewClient(strings.Split(endpoints, ","), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewEtcdJobTypeRepository(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEtcdOptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	id := uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(context.Background(), id) })

	require.NoError(t, repo.Create(ctx, &domain.JobType{ID: id, Name: "Plumber"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.JobType{ID: id, Name: "Plumber"}), domain.ErrJobTypeAlreadyExists)

	first, err := repo.Get(ctx, id)
	require.NoError(t, err)
	stale := *first

	first.Name = "Electrician"
	require.NoError(t, repo.Update(ctx, first))
	assert.Greater(t, first.Version, stale.Version)

	stale.Name = "Carpenter"
	assert.ErrorIs(t, repo.Update(ctx, &stale), domain.ErrConcurrencyConflict)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Update(ctx, first), domain.ErrConcurrencyConflict)

	exists, err := repo.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}
