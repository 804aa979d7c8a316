// Package dispatch fans out a selected task set into concurrent executions
// and reports each task's terminal outcome independently.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/protocol"
	log "github.com/sirupsen/logrus"
)

const DefaultTaskTimeout = 2 * time.Minute

// Outcome is the terminal report of one dispatched task: either a result or
// an error, never both.
type Outcome struct {
	TaskID   string
	Result   *models.TaskResult
	Err      error
	Duration time.Duration
}

type Dispatcher struct {
	taskTimeout time.Duration
}

func NewDispatcher(taskTimeout time.Duration) *Dispatcher {
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}

	return &Dispatcher{taskTimeout: taskTimeout}
}

// Dispatch starts one goroutine per task and returns immediately. The
// returned channel delivers one outcome per task in completion order and is
// closed once every task has reported; an empty task set yields an
// immediately closed channel so the degenerate case cannot deadlock.
//
// A task failure never cancels its siblings. A task that overruns the
// per-call timeout is reported as a failure rather than left to hang.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, tasks []protocol.Task, content *models.ContentSnapshot) <-chan Outcome {
	outcomes := make(chan Outcome, len(tasks))

	if len(tasks) == 0 {
		close(outcomes)

		return outcomes
	}

	logger := log.WithFields(log.Fields{
		"module": "dispatcher",
		"run_id": runID,
		"tasks":  len(tasks),
	})
	logger.Info("Dispatching task set")

	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)

		go func(task protocol.Task) {
			defer wg.Done()

			outcomes <- d.execute(ctx, logger, task, content)
		}(task)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes
}

func (d *Dispatcher) execute(ctx context.Context, logger *log.Entry, task protocol.Task, content *models.ContentSnapshot) Outcome {
	taskCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	defer cancel()

	started := time.Now()

	type evaluation struct {
		result *models.TaskResult
		err    error
	}

	done := make(chan evaluation, 1)

	// The inner goroutine lets the deadline fire even when a task ignores
	// ctx; the straggler's late write lands in the buffered channel and is
	// dropped.
	go func() {
		result, err := task.Evaluate(taskCtx, content)
		done <- evaluation{result: result, err: err}
	}()

	var out Outcome

	select {
	case ev := <-done:
		out = Outcome{TaskID: task.ID(), Result: ev.result, Err: ev.err, Duration: time.Since(started)}

		if ev.err == nil {
			out.Err = validateResult(task.ID(), ev.result)
			if out.Err != nil {
				out.Result = nil
			}
		}
	case <-taskCtx.Done():
		out = Outcome{
			TaskID:   task.ID(),
			Err:      fmt.Errorf("task '%s' timed out after %s: %w", task.ID(), d.taskTimeout, taskCtx.Err()),
			Duration: time.Since(started),
		}
	}

	taskLogger := logger.WithFields(log.Fields{
		"task_id":     task.ID(),
		"duration_ms": out.Duration.Milliseconds(),
	})

	if out.Err != nil {
		taskLogger.Warnf("Task failed: %v", out.Err)
	} else {
		taskLogger.Infof("Task completed, score=%.3f passed=%t", out.Result.Score, out.Result.Passed)
	}

	return out
}

// validateResult rejects malformed task output so the reducer only ever sees
// results honoring the task contract.
func validateResult(taskID string, result *models.TaskResult) error {
	if result == nil {
		return fmt.Errorf("task '%s' returned no result", taskID)
	}

	if result.TaskID != taskID {
		return fmt.Errorf("task '%s' returned result for task '%s'", taskID, result.TaskID)
	}

	if result.Score < 0 || result.Score > 1 {
		return fmt.Errorf("task '%s' returned score %f outside [0,1]", taskID, result.Score)
	}

	return nil
}
