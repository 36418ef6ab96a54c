package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"bulletin-board/internal/config"
	"bulletin-board/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestOpenRepositorySQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "board.db"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeRepo() })

	m, ok := repo.(migrator)
	require.True(t, ok)
	require.NoError(t, m.Migrate(ctx))

	require.NoError(t, repo.Create(ctx, &domain.JobType{ID: "A1", Name: "Plumber"}))
	exists, err := repo.Exists(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOpenRepositoryMemoryHasNoSchema(t *testing.T) {
	repo, closeRepo, err := openRepository(context.Background(), &config.Config{StoreDriver: config.DriverMemory}, slog.Default())
	require.NoError(t, err)
	defer closeRepo()

	_, ok := repo.(migrator)
	assert.False(t, ok)
}

func TestOpenRepositoryUnknownDriver(t *testing.T) {
	_, _, err := openRepository(context.Background(), &config.Config{StoreDriver: "cassandra"}, slog.Default())
	assert.Error(t, err)
}
