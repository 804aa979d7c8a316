package file_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/persistence"
	"github.com/medgate/medgate/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	run := models.NewRun("run-1", "https://example.org/page", "tester")
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, run.URL, got.URL)
	assert.Equal(t, models.RunStatusPending, got.Status)
}

func TestPersistence_SaveIsUpsert(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	run := models.NewRun("run-1", "https://example.org/page", "tester")
	require.NoError(t, store.SaveRun(ctx, run))

	run.Status = models.RunStatusAwaitingDecision
	score := 0.9
	run.AggregateScore = &score
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.RunByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusAwaitingDecision, got.Status)
	require.NotNil(t, got.AggregateScore)
	assert.InDelta(t, 0.9, *got.AggregateScore, 0.0001)
}

func TestPersistence_RunNotFound(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	_, err := store.RunByID(context.Background(), "run-404")
	assert.True(t, persistence.IsRunNotFound(err))
}

func TestPersistence_RunsNewestFirstWithLimit(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	base := time.Now().UTC()

	for i := range 5 {
		run := models.NewRun(fmt.Sprintf("run-%d", i), "https://example.org/page", "tester")
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.Runs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-4", runs[0].ID)
	assert.Equal(t, "run-3", runs[1].ID)
	assert.Equal(t, "run-2", runs[2].ID)
}

func TestPersistence_RunsEmptyDirectory(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	runs, err := store.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
