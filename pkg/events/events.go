// Package events defines the typed lifecycle events a run emits. Consumers
// must tolerate duplicate delivery; ordering is best-effort except that a
// finished or failed event is always the last event for a run.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/medgate/medgate/pkg/models"
)

type EventType string

// Topic carries every run lifecycle event.
const Topic = "medgate.runs"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	RunExecutionStartedEvent EventType = "run.execution.started"
	RunRoutingCompletedEvent EventType = "run.routing.completed"
	RunTaskCompletedEvent    EventType = "run.task.completed"
	RunTaskFailedEvent       EventType = "run.task.failed"
	RunSynthesisReadyEvent   EventType = "run.synthesis.ready"
	RunDecisionRequiredEvent EventType = "run.decision.required"
	RunExecutionResumedEvent EventType = "run.execution.resumed"
	RunExecutionFinishedEvent EventType = "run.execution.finished"
	RunExecutionFailedEvent  EventType = "run.execution.failed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// GetRunID lets consumers route a decoded event by run without knowing its
// concrete type.
func (e BaseEvent) GetRunID() string {
	return e.RunID
}

func NewBaseEvent(eventType EventType, runID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Metadata:  make(map[string]any),
	}
}

type RunExecutionStarted struct {
	BaseEvent

	URL         string `json:"url"`
	RequestedBy string `json:"requested_by"`
}

func (e RunExecutionStarted) GetType() EventType {
	return RunExecutionStartedEvent
}

type RunRoutingCompleted struct {
	BaseEvent

	Routing models.RoutingDecision `json:"routing"`
}

func (e RunRoutingCompleted) GetType() EventType {
	return RunRoutingCompletedEvent
}

type RunTaskCompleted struct {
	BaseEvent

	TaskID     string            `json:"task_id"`
	Result     models.TaskResult `json:"result"`
	DurationMs int64             `json:"duration_ms"`
}

func (e RunTaskCompleted) GetType() EventType {
	return RunTaskCompletedEvent
}

type RunTaskFailed struct {
	BaseEvent

	TaskID     string `json:"task_id"`
	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (e RunTaskFailed) GetType() EventType {
	return RunTaskFailedEvent
}

type RunSynthesisReady struct {
	BaseEvent

	Synthesis models.Synthesis `json:"synthesis"`
}

func (e RunSynthesisReady) GetType() EventType {
	return RunSynthesisReadyEvent
}

// RunDecisionRequired signals that the run is suspended at the human gate.
// It carries everything a reviewer needs to make an informed call.
type RunDecisionRequired struct {
	BaseEvent

	URL            string              `json:"url"`
	AggregateScore *float64            `json:"aggregate_score"`
	AggregatePass  *bool               `json:"aggregate_pass"`
	Results        []models.TaskResult `json:"results"`
	Synthesis      *models.Synthesis   `json:"synthesis,omitempty"`
}

func (e RunDecisionRequired) GetType() EventType {
	return RunDecisionRequiredEvent
}

type RunExecutionResumed struct {
	BaseEvent

	Decision  models.Decision `json:"decision"`
	ResumedBy string          `json:"resumed_by"`
}

func (e RunExecutionResumed) GetType() EventType {
	return RunExecutionResumedEvent
}

type RunExecutionFinished struct {
	BaseEvent

	Status     models.RunStatus `json:"status"`
	DurationMs int64            `json:"duration_ms"`
}

func (e RunExecutionFinished) GetType() EventType {
	return RunExecutionFinishedEvent
}

type RunExecutionFailed struct {
	BaseEvent

	Error  string           `json:"error"`
	Status models.RunStatus `json:"status"`
}

func (e RunExecutionFailed) GetType() EventType {
	return RunExecutionFailedEvent
}
