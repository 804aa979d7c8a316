// Package registry maps stable task identifiers to task factories. The task
// set is a closed, typed catalog: routing references identifiers only, and
// dispatch goes through CreateTask rather than any dynamic lookup.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/medgate/medgate/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger        *slog.Logger
	taskFactories map[string]protocol.TaskFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:        logger,
		taskFactories: make(map[string]protocol.TaskFactory),
	}
}

func (r *Registry) RegisterTask(factory protocol.TaskFactory) {
	r.taskFactories[factory.ID()] = factory
	r.logger.Debug("Registered task factory", "task_id", factory.ID())
}

// CreateTask validates config against the factory's JSON schema and builds
// the task.
func (r *Registry) CreateTask(taskID string, config map[string]any) (protocol.Task, error) {
	factory, ok := r.taskFactories[taskID]
	if !ok {
		return nil, fmt.Errorf("task '%s' not registered", taskID)
	}

	if schema := factory.Schema(); schema != nil {
		if config == nil {
			config = map[string]any{}
		}

		result, err := gojsonschema.Validate(
			gojsonschema.NewGoLoader(schema),
			gojsonschema.NewGoLoader(config),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to validate config for task '%s': %w", taskID, err)
		}

		if !result.Valid() {
			return nil, fmt.Errorf("invalid config for task '%s': %v", taskID, result.Errors())
		}
	}

	return factory.Create(config)
}

// Catalog returns the sorted identifiers of every registered task. Routing
// partitions this set into run and skip sets.
func (r *Registry) Catalog() []string {
	ids := make([]string, 0, len(r.taskFactories))
	for id := range r.taskFactories {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (r *Registry) IsRegistered(taskID string) bool {
	_, ok := r.taskFactories[taskID]

	return ok
}

// HealthCheck reports the registered task identifiers and whether the
// catalog is non-empty.
func (r *Registry) HealthCheck() (map[string]string, bool) {
	checks := make(map[string]string, len(r.taskFactories))
	for id := range r.taskFactories {
		checks[id] = "registered"
	}

	return checks, len(checks) > 0
}
