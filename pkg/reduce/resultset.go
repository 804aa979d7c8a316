// Package reduce merges concurrently produced task outcomes into one
// accumulated state and computes the aggregate summary over it.
package reduce

import (
	"sort"
	"sync"

	"github.com/medgate/medgate/pkg/models"
)

// ResultSet accumulates task outcomes keyed by task identifier. The merge is
// insert-if-absent: applying the same outcome twice is a no-op, and the final
// set is independent of arrival order. Re-delivery never replaces an
// existing entry; that policy is deliberate, not incidental.
type ResultSet struct {
	mu       sync.Mutex
	results  map[string]models.TaskResult
	failures map[string]string
}

func NewResultSet() *ResultSet {
	return &ResultSet{
		results:  make(map[string]models.TaskResult),
		failures: make(map[string]string),
	}
}

// Apply records a successful task result. It returns true when the result
// was inserted and false when the task already had a terminal outcome.
func (s *ResultSet) Apply(result models.TaskResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminalLocked(result.TaskID) {
		return false
	}

	s.results[result.TaskID] = result

	return true
}

// Fail records a task failure. Idempotent under the same rule as Apply.
func (s *ResultSet) Fail(taskID, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminalLocked(taskID) {
		return false
	}

	s.failures[taskID] = message

	return true
}

func (s *ResultSet) terminalLocked(taskID string) bool {
	if _, ok := s.results[taskID]; ok {
		return true
	}

	_, ok := s.failures[taskID]

	return ok
}

// HasOutcome reports whether taskID has a terminal outcome (result or
// recorded failure).
func (s *ResultSet) HasOutcome(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.terminalLocked(taskID)
}

// Complete reports whether every task identifier in taskIDs has a terminal
// outcome. This is the aggregation barrier predicate.
func (s *ResultSet) Complete(taskIDs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range taskIDs {
		if !s.terminalLocked(id) {
			return false
		}
	}

	return true
}

// Results returns the successful results sorted by task identifier, so the
// merged list is deterministic regardless of completion order.
func (s *ResultSet) Results() []models.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TaskResult, 0, len(s.results))
	for _, result := range s.results {
		out = append(out, result)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })

	return out
}

// Failures returns recorded failures as "taskID: message" keyed by task ID.
func (s *ResultSet) Failures() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.failures))
	for id, msg := range s.failures {
		out[id] = msg
	}

	return out
}
