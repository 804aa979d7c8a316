package web

import (
	"context"
	"log/slog"
	"sync"

	"github.com/medgate/medgate/pkg/eventbus"
	"github.com/medgate/medgate/pkg/events"
)

// streamBufferSize bounds each subscriber's queue. A subscriber that stops
// draining loses events rather than stalling the bus.
const streamBufferSize = 32

// StreamEvent is one event as delivered to a stream subscriber.
type StreamEvent struct {
	Type  events.EventType
	RunID string
	Event any
}

// runEvent is satisfied by every decoded event through its embedded base.
type runEvent interface {
	GetType() events.EventType
	GetRunID() string
}

// StreamBroker fans run lifecycle events out to per-run subscribers. It is
// the bridge between the event bus and the SSE endpoint.
type StreamBroker struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[string]map[chan StreamEvent]bool
}

func NewStreamBroker(logger *slog.Logger) *StreamBroker {
	return &StreamBroker{
		logger:      logger.With("module", "stream-broker"),
		subscribers: make(map[string]map[chan StreamEvent]bool),
	}
}

// Attach registers the broker on every run event type and starts consuming.
func (b *StreamBroker) Attach(ctx context.Context, bus eventbus.EventBus) error {
	eventTypes := []events.EventType{
		events.RunExecutionStartedEvent,
		events.RunRoutingCompletedEvent,
		events.RunTaskCompletedEvent,
		events.RunTaskFailedEvent,
		events.RunSynthesisReadyEvent,
		events.RunDecisionRequiredEvent,
		events.RunExecutionResumedEvent,
		events.RunExecutionFinishedEvent,
		events.RunExecutionFailedEvent,
	}

	for _, eventType := range eventTypes {
		if err := bus.Handle(eventType, b.forward); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}

func (b *StreamBroker) forward(_ context.Context, event any) error {
	typed, ok := event.(runEvent)
	if !ok {
		return nil
	}

	streamEvent := StreamEvent{
		Type:  typed.GetType(),
		RunID: typed.GetRunID(),
		Event: event,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers[streamEvent.RunID] {
		select {
		case ch <- streamEvent:
		default:
			b.logger.Warn("Dropping event for slow stream subscriber",
				"run_id", streamEvent.RunID, "event_type", streamEvent.Type)
		}
	}

	return nil
}

// Subscribe returns a channel of events for runID and a cancel function. The
// channel is closed by the cancel function, never by the broker.
func (b *StreamBroker) Subscribe(runID string) (<-chan StreamEvent, func()) {
	ch := make(chan StreamEvent, streamBufferSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[runID] == nil {
		b.subscribers[runID] = make(map[chan StreamEvent]bool)
	}

	b.subscribers[runID][ch] = true

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if subs := b.subscribers[runID]; subs != nil && subs[ch] {
			delete(subs, ch)
			close(ch)

			if len(subs) == 0 {
				delete(b.subscribers, runID)
			}
		}
	}

	return ch, cancel
}
