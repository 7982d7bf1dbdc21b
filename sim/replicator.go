package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ProblemFactory builds one problem instance from a dedicated random
// stream. Each replication gets its own stream, so instances are
// independent yet reproducible under a fixed master seed.
type ProblemFactory func(rng *rand.Rand) (Problem, error)

// GenerateInstances builds n independent problem instances, one per
// replication, with streams derived from the master seed.
func GenerateInstances(factory ProblemFactory, n int, seed int64) ([]Problem, error) {
	prng := NewPartitionedRNG(seed)
	problems := make([]Problem, 0, n)
	for i := 0; i < n; i++ {
		p, err := factory(prng.ForStream(ReplicationStream(i)))
		if err != nil {
			return nil, fmt.Errorf("generating instance %d: %w", i, err)
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// RunResult is the outcome of one replication.
type RunResult struct {
	ID      uuid.UUID
	Index   int
	Summary map[string]float64
	Err     error
}

// ReplicationResult collects all replication outcomes. Metrics holds, per
// metric name, the values of the successful runs in replication order,
// ready for aggregation. Failed runs keep their error in Runs so an
// experiment reports how many replications succeeded instead of aborting.
type ReplicationResult struct {
	Runs      []RunResult
	Metrics   map[string][]float64
	Succeeded int
	Failed    int
}

// Aggregate is the cross-replication statistic of one metric: the sample
// mean and the 95% confidence half-width (Student's t, n-1 degrees of
// freedom). With fewer than two samples the half-width is NaN by contract,
// never a false zero-width interval.
type Aggregate struct {
	Mean      float64
	HalfWidth float64
	N         int
}

// Replicator drives independent replications of one problem/planner/
// reporter triple and aggregates their summaries.
type Replicator struct {
	// Horizon is the simulated time at which each run stops.
	Horizon float64

	// Seed derives the per-replication engine random streams.
	Seed int64

	// Workers sets how many replications run concurrently. Values below 2
	// run sequentially. Replications share no simulated state; with more
	// than one worker the problems must be distinct instances.
	Workers int

	// Lenient is passed through to each engine (see Config.Lenient).
	Lenient bool
}

// Replicate runs one replication per problem instance. Before each run the
// reporter (fresh from newReporter) and the problem are restarted. The
// planner is shared across replications and must be stateless.
func (r *Replicator) Replicate(problems []Problem, planner Planner, newReporter func() Reporter) *ReplicationResult {
	n := len(problems)
	result := &ReplicationResult{
		Runs:    make([]RunResult, n),
		Metrics: make(map[string][]float64),
	}

	workers := r.Workers
	if workers < 2 || n < 2 {
		for i := 0; i < n; i++ {
			result.Runs[i] = r.runOne(i, problems[i], planner, newReporter())
		}
	} else {
		if workers > n {
			workers = n
		}
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					result.Runs[i] = r.runOne(i, problems[i], planner, newReporter())
				}
			}()
		}
		for i := 0; i < n; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for _, run := range result.Runs {
		if run.Err != nil {
			result.Failed++
			logrus.Warnf("replication %d (%s) failed: %v", run.Index, run.ID, run.Err)
			continue
		}
		result.Succeeded++
		for name, value := range run.Summary {
			result.Metrics[name] = append(result.Metrics[name], value)
		}
	}
	return result
}

func (r *Replicator) runOne(i int, problem Problem, planner Planner, reporter Reporter) RunResult {
	run := RunResult{ID: uuid.New(), Index: i}
	reporter.Restart()
	engineRNG := NewPartitionedRNG(r.Seed).ForStream(StreamEngine(i))
	s, err := NewSimulator(problem, planner, reporter, Config{Lenient: r.Lenient, RNG: engineRNG})
	if err != nil {
		run.Err = fmt.Errorf("replication %d: %w", i, err)
		return run
	}
	logrus.Debugf("replication %d (%s) starting, horizon=%.1f", i, run.ID, r.Horizon)
	if err := s.Run(r.Horizon); err != nil {
		run.Err = fmt.Errorf("replication %d: %w", i, err)
		return run
	}
	run.Summary = reporter.Summarize()
	return run
}

// AggregateMetrics computes, per metric, the sample mean and the 95%
// confidence half-width across replications.
func AggregateMetrics(metrics map[string][]float64) map[string]Aggregate {
	out := make(map[string]Aggregate, len(metrics))
	for name, xs := range metrics {
		out[name] = aggregate(xs)
	}
	return out
}

func aggregate(xs []float64) Aggregate {
	n := len(xs)
	if n == 0 {
		return Aggregate{Mean: math.NaN(), HalfWidth: math.NaN()}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	agg := Aggregate{Mean: mean, N: n}
	if n < 2 {
		// A confidence interval needs at least two samples; undefined, not zero.
		agg.HalfWidth = math.NaN()
		return agg
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	agg.HalfWidth = t.Quantile(0.975) * std / math.Sqrt(float64(n))
	return agg
}

// MetricNames returns the aggregated metric names in sorted order, for
// stable presentation.
func MetricNames(aggs map[string]Aggregate) []string {
	names := make([]string, 0, len(aggs))
	for name := range aggs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
