package problems_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpsim/bpsim/sim"
	"github.com/bpsim/bpsim/sim/planners"
	"github.com/bpsim/bpsim/sim/problems"
)

// End-to-end conservation check: the simulated M/M/c waiting time must land
// in the neighborhood of the Erlang C analytical value.
func TestMMc_SimulatedWaitingTimeNearAnalytical(t *testing.T) {
	const (
		c       = 2
		horizon = 10000.0
		warmup  = 1000.0
		reps    = 20
	)
	rate, ep := problems.MMcParameters(c)
	analytical := problems.MMcAnalyticalWaitingTime(c, rate, ep)
	require.Greater(t, analytical, 0.0)

	factory := func(rng *rand.Rand) (sim.Problem, error) {
		return problems.NewMMc(c, horizon, rng)
	}
	instances, err := sim.GenerateInstances(factory, reps, 42)
	require.NoError(t, err)

	r := &sim.Replicator{Horizon: horizon, Seed: 42}
	result := r.Replicate(instances, planners.Greedy{}, func() sim.Reporter {
		return sim.NewMetricsReporter(warmup)
	})
	require.Equal(t, reps, result.Succeeded)

	aggs := sim.AggregateMetrics(result.Metrics)
	waiting := aggs[sim.MetricAvgWaitingTime]

	// Generous band: the point is conservation, not precision.
	assert.Greater(t, waiting.Mean, 0.4*analytical,
		"simulated waiting %v far below analytical %v", waiting.Mean, analytical)
	assert.Less(t, waiting.Mean, 2.5*analytical,
		"simulated waiting %v far above analytical %v", waiting.Mean, analytical)

	// Throughput conservation: completions track the arrival rate.
	tasks := aggs[sim.MetricTasksCompleted]
	expected := rate * (horizon - warmup)
	assert.InDelta(t, expected, tasks.Mean, 0.3*expected)
}
