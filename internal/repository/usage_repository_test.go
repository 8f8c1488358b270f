package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

func TestUsageGetAbsentUserIsZero(t *testing.T) {
	repo := NewInMemoryUsageRepository(logger.New(logger.ERROR))

	count, err := repo.Get(context.Background(), "never-seen")

	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUsageIncrementIsMonotonic(t *testing.T) {
	repo := NewInMemoryUsageRepository(logger.New(logger.ERROR))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Increment(ctx, "user-1"))
		count, err := repo.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}
}

func TestUsageIncrementConcurrent(t *testing.T) {
	repo := NewInMemoryUsageRepository(logger.New(logger.ERROR))
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Increment(ctx, "user-1"))
		}()
	}
	wg.Wait()

	count, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, workers, count)
}

func TestUsageCountersAreIsolatedPerUser(t *testing.T) {
	repo := NewInMemoryUsageRepository(logger.New(logger.ERROR))
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, "user-1"))
	require.NoError(t, repo.Increment(ctx, "user-1"))
	require.NoError(t, repo.Increment(ctx, "user-2"))

	count1, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	count2, err := repo.Get(ctx, "user-2")
	require.NoError(t, err)

	assert.Equal(t, 2, count1)
	assert.Equal(t, 1, count2)
}
