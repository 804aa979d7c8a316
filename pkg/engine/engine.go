// Package engine orchestrates the validation pipeline: fetch, route,
// fan-out, merge, synthesize, suspend at the human gate and resume on a
// reviewer decision. Suspension is state-based; no goroutine blocks while a
// run waits, and a resume may happen in a different process than the start.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/dispatch"
	"github.com/medgate/medgate/pkg/eventbus"
	"github.com/medgate/medgate/pkg/events"
	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/otelhelper"
	"github.com/medgate/medgate/pkg/persistence"
	"github.com/medgate/medgate/pkg/protocol"
	"github.com/medgate/medgate/pkg/reduce"
	"github.com/medgate/medgate/pkg/registry"
	"github.com/medgate/medgate/pkg/routing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultRunTimeout bounds the execution phase of a run, from fetch through
// suspension. Time spent suspended at the human gate is not bounded.
const DefaultRunTimeout = 10 * time.Minute

// Config wires the engine's collaborators. Fetcher, Synthesizer, Registry,
// Router, Persistence and Checkpoints are required; Tracer defaults to a
// no-op and RunTimeout to DefaultRunTimeout.
type Config struct {
	Logger      *slog.Logger
	Persistence persistence.Persistence
	Checkpoints checkpoint.Store
	Registry    *registry.Registry
	Router      *routing.Router
	Dispatcher  *dispatch.Dispatcher
	Fetcher     protocol.Fetcher
	Synthesizer protocol.Synthesizer
	EventBus    eventbus.EventBus
	Tracer      trace.Tracer
	RunTimeout  time.Duration
}

type Engine struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	checkpoints checkpoint.Store
	registry    *registry.Registry
	router      *routing.Router
	dispatcher  *dispatch.Dispatcher
	fetcher     protocol.Fetcher
	synthesizer protocol.Synthesizer
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validator   *validator.Validate
	runTimeout  time.Duration

	mu     sync.Mutex
	active map[string]bool
}

func NewEngine(cfg Config) *Engine {
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("engine")
	}

	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}

	if cfg.Dispatcher == nil {
		cfg.Dispatcher = dispatch.NewDispatcher(dispatch.DefaultTaskTimeout)
	}

	return &Engine{
		logger:      cfg.Logger.With("module", "engine"),
		persistence: cfg.Persistence,
		checkpoints: cfg.Checkpoints,
		registry:    cfg.Registry,
		router:      cfg.Router,
		dispatcher:  cfg.Dispatcher,
		fetcher:     cfg.Fetcher,
		synthesizer: cfg.Synthesizer,
		eventBus:    cfg.EventBus,
		tracer:      cfg.Tracer,
		validator:   validator.New(),
		runTimeout:  cfg.RunTimeout,
		active:      make(map[string]bool),
	}
}

// Start creates a run for the given URL, persists it and launches the
// execution phase in the background. The returned run is the pending record;
// callers observe progress through persistence or the event stream.
func (e *Engine) Start(ctx context.Context, url, requestedBy string) (*models.Run, error) {
	run := models.NewRun(uuid.New().String(), url, requestedBy)

	if err := e.validator.Struct(run); err != nil {
		return nil, fmt.Errorf("invalid run request: %w", err)
	}

	if !e.activate(run.ID) {
		return nil, ErrRunAlreadyActive
	}

	if err := e.saveRun(ctx, run); err != nil {
		e.deactivate(run.ID)

		return nil, err
	}

	e.publish(ctx, run.ID, events.RunExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.RunExecutionStartedEvent, run.ID),
		URL:         run.URL,
		RequestedBy: run.RequestedBy,
	})

	// The caller gets a snapshot; the execution goroutine owns and mutates
	// the original from here on.
	snapshot := *run

	// Execution outlives the request context. Its lifetime is bounded by the
	// run timeout instead.
	go func() {
		execCtx, cancel := context.WithTimeout(context.Background(), e.runTimeout)
		defer cancel()

		e.execute(execCtx, run)
	}()

	return &snapshot, nil
}

// Resume applies a reviewer decision to a run suspended at the human gate.
// The run state is rehydrated from the checkpoint store, never from memory,
// so the decision may arrive at any process and any time after suspension.
func (e *Engine) Resume(ctx context.Context, runID string, decision models.Decision, feedback, reviewedBy string) (*models.Run, error) {
	if decision != models.DecisionApprove && decision != models.DecisionReject {
		return nil, fmt.Errorf("%w: got '%s'", ErrInvalidDecision, decision)
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.resume",
		attribute.String(otelhelper.RunIDKey, runID),
		attribute.String(otelhelper.DecisionKey, string(decision)),
	)
	defer span.End()

	stored, err := e.persistence.RunByID(ctx, runID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if stored.Decision != nil {
		return nil, fmt.Errorf("%w: run '%s' is %s", ErrAlreadyDecided, runID, stored.Status)
	}

	if stored.Status != models.RunStatusAwaitingDecision {
		return nil, fmt.Errorf("%w: run '%s' is %s", ErrNotAwaitingDecision, runID, stored.Status)
	}

	if !e.activate(runID) {
		return nil, ErrRunAlreadyActive
	}
	defer e.deactivate(runID)

	cp, err := e.checkpoints.Get(ctx, runID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to load checkpoint for run '%s': %w", runID, err)
	}

	run := cp.State

	logger := e.logger.With("run_id", run.ID, "decision", decision)
	logger.Info("Resuming suspended run")

	run.Status = models.RunStatusResuming
	if err := e.saveRun(ctx, &run); err != nil {
		return nil, err
	}

	e.publish(ctx, run.ID, events.RunExecutionResumed{
		BaseEvent: events.NewBaseEvent(events.RunExecutionResumedEvent, run.ID),
		Decision:  decision,
		ResumedBy: reviewedBy,
	})

	run.Decision = &decision
	run.Feedback = feedback
	run.ReviewedBy = reviewedBy

	if decision == models.DecisionApprove {
		run.Status = models.RunStatusApproved
	} else {
		run.Status = models.RunStatusRejected
	}

	if err := e.saveRun(ctx, &run); err != nil {
		return nil, err
	}

	// The run is terminal; the checkpoint served its purpose. A leftover
	// checkpoint is harmless because resume re-checks status first.
	if err := e.checkpoints.Delete(ctx, run.ID); err != nil {
		logger.Warn("Failed to delete checkpoint after resume", "error", err)
	}

	e.publish(ctx, run.ID, events.RunExecutionFinished{
		BaseEvent:  events.NewBaseEvent(events.RunExecutionFinishedEvent, run.ID),
		Status:     run.Status,
		DurationMs: time.Since(run.CreatedAt).Milliseconds(),
	})

	logger.Info("Run finished", "status", run.Status)

	return &run, nil
}

func (e *Engine) execute(ctx context.Context, run *models.Run) {
	defer e.deactivate(run.ID)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.execute",
		attribute.String(otelhelper.RunIDKey, run.ID),
		attribute.String(otelhelper.RunURLKey, run.URL),
	)
	defer span.End()

	logger := e.logger.With("run_id", run.ID)

	run.Status = models.RunStatusFetching
	if err := e.saveRun(ctx, run); err != nil {
		e.fail(ctx, span, run, err)

		return
	}

	content, err := e.fetcher.Fetch(ctx, run.URL)
	if err != nil {
		e.fail(ctx, span, run, fmt.Errorf("failed to fetch content: %w", err))

		return
	}

	decision := e.router.Route(run.URL, e.registry.Catalog())
	run.Routing = &decision

	logger.Info("Routing completed", "label", decision.Label, "run", decision.Run, "skip", decision.Skip)

	if err := e.saveRun(ctx, run); err != nil {
		e.fail(ctx, span, run, err)

		return
	}

	e.publish(ctx, run.ID, events.RunRoutingCompleted{
		BaseEvent: events.NewBaseEvent(events.RunRoutingCompletedEvent, run.ID),
		Routing:   decision,
	})

	set := reduce.NewResultSet()

	tasks := make([]protocol.Task, 0, len(decision.Run))

	for _, taskID := range decision.Run {
		task, err := e.registry.CreateTask(taskID, nil)
		if err != nil {
			// The task still gets a terminal outcome so the aggregation
			// barrier is satisfied without it.
			set.Fail(taskID, err.Error())
			run.RecordError(fmt.Sprintf("%s: %v", taskID, err))

			continue
		}

		tasks = append(tasks, task)
	}

	run.Status = models.RunStatusDispatched
	if err := e.saveRun(ctx, run); err != nil {
		e.fail(ctx, span, run, err)

		return
	}

	for outcome := range e.dispatcher.Dispatch(ctx, run.ID, tasks, content) {
		e.applyOutcome(ctx, run, set, outcome)
	}

	if !set.Complete(decision.Run) {
		// Every created task reports through the outcome channel and every
		// creation failure is recorded above, so this is unreachable.
		e.fail(ctx, span, run, fmt.Errorf("task set incomplete after dispatch"))

		return
	}

	run.Results = set.Results()
	run.AggregateScore, run.AggregatePass = reduce.Aggregate(&decision, set)

	synthesis, err := e.synthesizer.Synthesize(ctx, run)
	if err != nil {
		// Synthesis is advisory. Its absence is recorded but never blocks
		// the human gate.
		run.RecordError(fmt.Sprintf("synthesis: %v", err))
		logger.Warn("Synthesis failed, suspending without it", "error", err)
	} else {
		run.Synthesis = synthesis

		e.publish(ctx, run.ID, events.RunSynthesisReady{
			BaseEvent: events.NewBaseEvent(events.RunSynthesisReadyEvent, run.ID),
			Synthesis: *synthesis,
		})
	}

	e.suspend(ctx, span, run)
}

func (e *Engine) applyOutcome(ctx context.Context, run *models.Run, set *reduce.ResultSet, outcome dispatch.Outcome) {
	if outcome.Err != nil {
		if set.Fail(outcome.TaskID, outcome.Err.Error()) {
			run.RecordError(fmt.Sprintf("%s: %v", outcome.TaskID, outcome.Err))
		}

		e.publish(ctx, run.ID, events.RunTaskFailed{
			BaseEvent:  events.NewBaseEvent(events.RunTaskFailedEvent, run.ID),
			TaskID:     outcome.TaskID,
			Error:      outcome.Err.Error(),
			DurationMs: outcome.Duration.Milliseconds(),
		})
	} else {
		set.Apply(*outcome.Result)

		e.publish(ctx, run.ID, events.RunTaskCompleted{
			BaseEvent:  events.NewBaseEvent(events.RunTaskCompletedEvent, run.ID),
			TaskID:     outcome.TaskID,
			Result:     *outcome.Result,
			DurationMs: outcome.Duration.Milliseconds(),
		})
	}

	// Upsert after every outcome so the audit trail reflects progress even
	// if the process dies mid-dispatch.
	run.Results = set.Results()

	if err := e.saveRun(ctx, run); err != nil {
		e.logger.Warn("Failed to persist task outcome", "run_id", run.ID, "task_id", outcome.TaskID, "error", err)
	}
}

// suspend parks the run at the human gate. The checkpoint write is confirmed
// before the awaiting status becomes externally visible; if it fails the run
// fails rather than suspending unrecoverably.
func (e *Engine) suspend(ctx context.Context, span trace.Span, run *models.Run) {
	run.Status = models.RunStatusAwaitingDecision
	run.UpdatedAt = time.Now().UTC()

	cp := models.NewCheckpoint(run, models.GateHumanDecision, uuid.New().String())

	if err := e.checkpoints.Put(ctx, cp); err != nil {
		e.fail(ctx, span, run, fmt.Errorf("failed to write checkpoint: %w", err))

		return
	}

	if err := e.saveRun(ctx, run); err != nil {
		e.fail(ctx, span, run, err)

		return
	}

	span.SetAttributes(attribute.String(otelhelper.GateKey, string(cp.Gate)))

	e.publish(ctx, run.ID, events.RunDecisionRequired{
		BaseEvent:      events.NewBaseEvent(events.RunDecisionRequiredEvent, run.ID),
		URL:            run.URL,
		AggregateScore: run.AggregateScore,
		AggregatePass:  run.AggregatePass,
		Results:        run.Results,
		Synthesis:      run.Synthesis,
	})

	e.logger.Info("Run suspended at human gate", "run_id", run.ID, "token", cp.Token)
}

func (e *Engine) fail(ctx context.Context, span trace.Span, run *models.Run, cause error) {
	otelhelper.SetError(span, cause, attribute.String(otelhelper.RunIDKey, run.ID))

	e.logger.Error("Run failed", "run_id", run.ID, "error", cause)

	run.Status = models.RunStatusFailed
	run.RecordError(cause.Error())

	if err := e.saveRun(ctx, run); err != nil {
		e.logger.Error("Failed to persist failed run", "run_id", run.ID, "error", err)
	}

	// The failed event is terminal and therefore last.
	e.publish(ctx, run.ID, events.RunExecutionFailed{
		BaseEvent: events.NewBaseEvent(events.RunExecutionFailedEvent, run.ID),
		Error:     cause.Error(),
		Status:    run.Status,
	})
}

func (e *Engine) saveRun(ctx context.Context, run *models.Run) error {
	run.UpdatedAt = time.Now().UTC()

	if err := e.persistence.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run '%s': %w", run.ID, err)
	}

	return nil
}

func (e *Engine) publish(ctx context.Context, runID string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, runID, event); err != nil {
		e.logger.Warn("Failed to publish event", "run_id", runID, "event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) activate(runID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active[runID] {
		return false
	}

	e.active[runID] = true

	return true
}

func (e *Engine) deactivate(runID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.active, runID)
}
