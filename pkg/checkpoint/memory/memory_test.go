package memory_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/checkpoint/memory"
	"github.com/medgate/medgate/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCheckpoint(runID, token string) *models.Checkpoint {
	run := models.NewRun(runID, "https://example.org/page", "tester")
	run.Status = models.RunStatusAwaitingDecision

	return models.NewCheckpoint(run, models.GateHumanDecision, token)
}

func TestStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(slog.Default())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleCheckpoint("run-1", "token-1")))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "token-1", got.Token)
	assert.Equal(t, models.GateHumanDecision, got.Gate)
	assert.Equal(t, models.RunStatusAwaitingDecision, got.State.Status)

	require.NoError(t, store.Delete(ctx, "run-1"))

	_, err = store.Get(ctx, "run-1")
	assert.True(t, checkpoint.IsCheckpointNotFound(err))
}

func TestStore_PutOverwrites(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(slog.Default())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleCheckpoint("run-1", "token-1")))
	require.NoError(t, store.Put(ctx, sampleCheckpoint("run-1", "token-2")))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "token-2", got.Token, "Get must return the most recent write")
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(slog.Default())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, sampleCheckpoint("run-1", "token-1")))

	first, err := store.Get(ctx, "run-1")
	require.NoError(t, err)

	first.Token = "mutated"

	second, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", second.Token)
}

func TestStore_ConcurrentKeys(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(slog.Default())
	ctx := context.Background()

	const keys = 16

	var wg sync.WaitGroup

	for i := range keys {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			runID := fmt.Sprintf("run-%02d", i)
			assert.NoError(t, store.Put(ctx, sampleCheckpoint(runID, "token")))

			_, err := store.Get(ctx, runID)
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()
}
