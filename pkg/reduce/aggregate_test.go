package reduce_test

import (
	"testing"

	"github.com/medgate/medgate/pkg/models"
	"github.com/medgate/medgate/pkg/reduce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decision(run ...string) *models.RoutingDecision {
	return &models.RoutingDecision{Run: run, Label: "standard", Method: "url_based"}
}

func TestAggregate_MeanAndAnd(t *testing.T) {
	t.Parallel()

	set := reduce.NewResultSet()
	set.Apply(result("accuracy", 0.9, true))
	set.Apply(result("editorial", 0.95, true))
	set.Apply(result("metadata", 1.0, true))

	score, pass := reduce.Aggregate(decision("accuracy", "editorial", "metadata"), set)

	require.NotNil(t, score)
	require.NotNil(t, pass)
	assert.InDelta(t, 0.95, *score, 0.0001)
	assert.True(t, *pass)
}

func TestAggregate_OneFailingFlagFailsTheSet(t *testing.T) {
	t.Parallel()

	set := reduce.NewResultSet()
	set.Apply(result("accuracy", 0.9, true))
	set.Apply(result("compliance", 0.4, false))

	score, pass := reduce.Aggregate(decision("accuracy", "compliance"), set)

	require.NotNil(t, score)
	require.NotNil(t, pass)
	assert.InDelta(t, 0.65, *score, 0.0001)
	assert.False(t, *pass)
}

func TestAggregate_FailedTaskExcludedFromMeanButFailsPass(t *testing.T) {
	t.Parallel()

	set := reduce.NewResultSet()
	set.Apply(result("accuracy", 0.9, true))
	set.Apply(result("editorial", 0.8, true))
	set.Fail("metadata", "timed out")

	score, pass := reduce.Aggregate(decision("accuracy", "editorial", "metadata"), set)

	require.NotNil(t, score)
	require.NotNil(t, pass)
	assert.InDelta(t, 0.85, *score, 0.0001, "failed task must not contribute to the mean")
	assert.False(t, *pass, "failed task must count as failing against the pass flag")
}

func TestAggregate_EmptyRunSet(t *testing.T) {
	t.Parallel()

	score, pass := reduce.Aggregate(decision(), reduce.NewResultSet())

	assert.Nil(t, score)
	require.NotNil(t, pass)
	assert.True(t, *pass, "an empty task set has nothing failing")
}

func TestAggregate_AllTasksFailed(t *testing.T) {
	t.Parallel()

	set := reduce.NewResultSet()
	set.Fail("accuracy", "boom")
	set.Fail("editorial", "boom")

	score, pass := reduce.Aggregate(decision("accuracy", "editorial"), set)

	assert.Nil(t, score, "no scores exist when every task failed")
	require.NotNil(t, pass)
	assert.False(t, *pass)
}

func TestAggregate_RoundsToThreeDecimals(t *testing.T) {
	t.Parallel()

	set := reduce.NewResultSet()
	set.Apply(result("accuracy", 1.0, true))
	set.Apply(result("editorial", 1.0, true))
	set.Apply(result("metadata", 0.0, false))

	score, _ := reduce.Aggregate(decision("accuracy", "editorial", "metadata"), set)

	require.NotNil(t, score)
	assert.InDelta(t, 0.667, *score, 0.00001)
}
