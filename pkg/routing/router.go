// Package routing implements the deterministic triage step: inspecting an
// input URL and selecting which task set runs for the execution.
package routing

import (
	"errors"
	"sort"
	"strings"

	"github.com/medgate/medgate/pkg/models"
)

// MethodURLBased is the selection method recorded on every decision this
// router produces.
const MethodURLBased = "url_based"

// Rule selects a task set when its pattern occurs in the input URL. An empty
// pattern is the mandatory catch-all.
type Rule struct {
	Label   string
	Pattern string
	Tasks   []string
}

// Router evaluates rules against an input URL. Routing is pure: no external
// calls, no side effects, same decision for the same input every time.
type Router struct {
	rules []Rule
}

var ErrNoCatchAllRule = errors.New("routing rules must include a catch-all rule with an empty pattern")

// NewRouter orders rules most-specific-first (longest pattern wins) and
// rejects rule sets without a catch-all, so exactly one rule always matches.
func NewRouter(rules []Rule) (*Router, error) {
	hasCatchAll := false

	for _, rule := range rules {
		if rule.Pattern == "" {
			hasCatchAll = true
		}
	}

	if !hasCatchAll {
		return nil, ErrNoCatchAllRule
	}

	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Pattern) > len(ordered[j].Pattern)
	})

	return &Router{rules: ordered}, nil
}

// Route matches url against the rules and partitions catalog into run and
// skip sets. Task identifiers in a rule that are absent from the catalog are
// dropped so the partition invariant holds for any rule set.
func (r *Router) Route(url string, catalog []string) models.RoutingDecision {
	matched := r.match(url)

	inCatalog := make(map[string]bool, len(catalog))
	for _, id := range catalog {
		inCatalog[id] = true
	}

	selected := make(map[string]bool, len(matched.Tasks))
	run := make([]string, 0, len(matched.Tasks))

	for _, id := range matched.Tasks {
		if inCatalog[id] && !selected[id] {
			selected[id] = true

			run = append(run, id)
		}
	}

	skip := make([]string, 0, len(catalog)-len(run))

	for _, id := range catalog {
		if !selected[id] {
			skip = append(skip, id)
		}
	}

	sort.Strings(run)
	sort.Strings(skip)

	return models.RoutingDecision{
		Run:    run,
		Skip:   skip,
		Label:  matched.Label,
		Method: MethodURLBased,
	}
}

func (r *Router) match(url string) Rule {
	for _, rule := range r.rules {
		if rule.Pattern == "" || strings.Contains(url, rule.Pattern) {
			return rule
		}
	}

	// NewRouter guarantees a catch-all, so this is unreachable.
	return Rule{}
}
