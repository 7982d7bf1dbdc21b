package problems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/bpsim/bpsim/sim"
)

// MMcParameters returns the arrival rate and mean processing time of the
// M/M/c problem family with c servers. The load is chosen so the queue is
// stable but busy, matching the original research setup.
func MMcParameters(c int) (rate, processingMean float64) {
	return 0.1 * math.Max(float64(c-1), 1), 9
}

// MMcDefinition describes an M/M/c queue: one task type, c resources,
// exponential interarrival and processing times.
func MMcDefinition(c int) Definition {
	rate, ep := MMcParameters(c)
	resources := make([]string, c)
	for i := range resources {
		resources[i] = fmt.Sprintf("R%d", i+1)
	}
	return Definition{
		Name:            "mmc",
		Resources:       resources,
		TaskTypes:       []string{"T"},
		InitialTaskType: "T",
		Interarrival: func(rng *rand.Rand) float64 {
			return rng.ExpFloat64() / rate
		},
		ProcessingTime: func(rng *rand.Rand, _ string, _ *sim.Task) float64 {
			return rng.ExpFloat64() * ep
		},
	}
}

// NewMMc generates an M/M/c instance with arrivals up to duration.
func NewMMc(c int, duration float64, rng *rand.Rand) (*GeneratedProblem, error) {
	if c < 1 {
		return nil, fmt.Errorf("m/m/c needs at least one server, got %d", c)
	}
	return Generate(MMcDefinition(c), duration, rng)
}

// MMcAnalyticalWaitingTime computes the expected waiting time of an M/M/c
// queue via the Erlang C formula, for conservation tests against the
// simulated average.
func MMcAnalyticalWaitingTime(c int, rate, processingMean float64) float64 {
	rho := rate * processingMean / float64(c)
	if rho >= 1 {
		return math.Inf(1)
	}
	cRho := float64(c) * rho
	sum := 0.0
	for n := 0; n < c; n++ {
		sum += math.Pow(cRho, float64(n)) / factorial(n)
	}
	top := math.Pow(cRho, float64(c)) / factorial(c)
	piWait := top / ((1-rho)*sum + top)
	return piWait * (1 / (1 - rho)) * (processingMean / float64(c))
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
