package reduce

import (
	"math"

	"github.com/medgate/medgate/pkg/models"
)

// Aggregate computes the summary over a completed result set.
//
// Policy (fixed and tested, see the failed-task handling below): a task that
// failed outright is excluded from the score mean but counts as a failing
// contribution to the aggregate pass flag. The aggregate score is the
// arithmetic mean of the available task scores rounded to three decimals;
// the aggregate pass is the logical AND of the available pass flags, forced
// false when any dispatched task failed.
//
// An empty run set yields a nil score and a trivially true pass.
// A run set where every task failed yields a nil score and a false pass.
func Aggregate(decision *models.RoutingDecision, set *ResultSet) (*float64, *bool) {
	if decision == nil || len(decision.Run) == 0 {
		pass := true

		return nil, &pass
	}

	results := set.Results()
	failures := set.Failures()

	anyFailed := false

	for _, id := range decision.Run {
		if _, ok := failures[id]; ok {
			anyFailed = true

			break
		}
	}

	if len(results) == 0 {
		pass := false

		return nil, &pass
	}

	sum := 0.0
	pass := !anyFailed

	for _, result := range results {
		sum += result.Score

		if !result.Passed {
			pass = false
		}
	}

	score := math.Round(sum/float64(len(results))*1000) / 1000

	return &score, &pass
}
