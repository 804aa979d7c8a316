package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medgate/medgate/pkg/dispatch"
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	id       string
	result   *models.TaskResult
	err      error
	delay    time.Duration
	blockCtx bool
}

func (s *stubTask) ID() string { return s.id }

func (s *stubTask) Evaluate(ctx context.Context, _ *models.ContentSnapshot) (*models.TaskResult, error) {
	if s.blockCtx {
		<-ctx.Done()

		return nil, ctx.Err()
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	return s.result, s.err
}

func passing(id string, score float64) *stubTask {
	return &stubTask{
		id:     id,
		result: &models.TaskResult{TaskID: id, Passed: true, Score: score},
	}
}

func collect(ch <-chan dispatch.Outcome) map[string]dispatch.Outcome {
	outcomes := map[string]dispatch.Outcome{}
	for outcome := range ch {
		outcomes[outcome.TaskID] = outcome
	}

	return outcomes
}

func TestDispatch_EmptyTaskSet(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(time.Second)

	outcomes := collect(d.Dispatch(context.Background(), "run-1", nil, &models.ContentSnapshot{}))

	assert.Empty(t, outcomes, "empty task set must complete immediately")
}

func TestDispatch_OneOutcomePerTask(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(time.Second)
	tasks := []protocol.Task{
		passing("accuracy", 0.7),
		passing("editorial", 0.8),
		&stubTask{id: "compliance", err: errors.New("boom")},
	}

	outcomes := collect(d.Dispatch(context.Background(), "run-1", tasks, &models.ContentSnapshot{}))

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes["accuracy"].Err)
	assert.NoError(t, outcomes["editorial"].Err)
	require.Error(t, outcomes["compliance"].Err)
	assert.Nil(t, outcomes["compliance"].Result, "failure carries no result")
}

func TestDispatch_FailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(time.Second)
	slow := passing("metadata", 0.9)
	slow.delay = 50 * time.Millisecond

	tasks := []protocol.Task{
		&stubTask{id: "compliance", err: errors.New("boom")},
		slow,
	}

	outcomes := collect(d.Dispatch(context.Background(), "run-1", tasks, &models.ContentSnapshot{}))

	require.Error(t, outcomes["compliance"].Err)
	require.NoError(t, outcomes["metadata"].Err)
	assert.InDelta(t, 0.9, outcomes["metadata"].Result.Score, 0.0001)
}

func TestDispatch_TimeoutIsReportedAsFailure(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(30 * time.Millisecond)
	tasks := []protocol.Task{
		&stubTask{id: "accuracy", blockCtx: true},
		passing("metadata", 1.0),
	}

	outcomes := collect(d.Dispatch(context.Background(), "run-1", tasks, &models.ContentSnapshot{}))

	require.Len(t, outcomes, 2)
	require.Error(t, outcomes["accuracy"].Err)
	assert.Contains(t, outcomes["accuracy"].Err.Error(), "timed out")
	assert.NoError(t, outcomes["metadata"].Err)
}

func TestDispatch_RejectsMalformedResults(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(time.Second)
	tasks := []protocol.Task{
		&stubTask{id: "metadata", result: &models.TaskResult{TaskID: "other", Score: 0.5}},
		&stubTask{id: "editorial", result: &models.TaskResult{TaskID: "editorial", Score: 1.5}},
		&stubTask{id: "accuracy", result: nil},
	}

	outcomes := collect(d.Dispatch(context.Background(), "run-1", tasks, &models.ContentSnapshot{}))

	for id, outcome := range outcomes {
		assert.Errorf(t, outcome.Err, "task '%s' should have been rejected", id)
		assert.Nil(t, outcome.Result)
	}
}
