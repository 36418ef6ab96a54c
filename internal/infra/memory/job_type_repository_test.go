package memory

import (
	"context"
	"sync"
	"testing"

	"bulletin-board/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewJobTypeRepository()

	jt := &domain.JobType{ID: "A1", Name: "Plumber"}
	require.NoError(t, repo.Create(ctx, jt))
	assert.Equal(t, int64(1), jt.Version)

	err := repo.Create(ctx, &domain.JobType{ID: "A1", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrJobTypeAlreadyExists)

	got, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, *jt, *got)

	exists, err := repo.Exists(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, "A1"))
	assert.ErrorIs(t, repo.Delete(ctx, "A1"), domain.ErrJobTypeNotFound)

	_, err = repo.Get(ctx, "A1")
	assert.ErrorIs(t, err, domain.ErrJobTypeNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewJobTypeRepository()
	require.NoError(t, repo.Create(ctx, &domain.JobType{ID: "A1", Name: "Plumber"}))

	got, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Plumber", again.Name)
}

func TestListOrdersByName(t *testing.T) {
	ctx := context.Background()
	repo := NewJobTypeRepository()
	for _, jt := range []*domain.JobType{
		{ID: "3", Name: "Welder"},
		{ID: "2", Name: "Electrician"},
		{ID: "1", Name: "Electrician"},
	} {
		require.NoError(t, repo.Create(ctx, jt))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestUpdateDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewJobTypeRepository()
	require.NoError(t, repo.Create(ctx, &domain.JobType{ID: "A1", Name: "Plumber"}))

	first, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "A1")
	require.NoError(t, err)

	first.Name = "Electrician"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Name = "Carpenter"
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrConcurrencyConflict)

	got, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Electrician", got.Name)
}

func TestUpdateMissingIsConflict(t *testing.T) {
	repo := NewJobTypeRepository()
	err := repo.Update(context.Background(), &domain.JobType{ID: "ZZ", Name: "X", Version: 1})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestConcurrentUpdatesOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewJobTypeRepository()
	require.NoError(t, repo.Create(ctx, &domain.JobType{ID: "A1", Name: "Plumber"}))

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jt := &domain.JobType{ID: "A1", Name: "Electrician", Version: 1}
			if err := repo.Update(ctx, jt); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}
