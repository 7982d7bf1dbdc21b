package problems

import (
	"fmt"
	"math/rand"

	"github.com/bpsim/bpsim/sim"
)

// ImbalancedProcessingMean is the base mean processing time of the
// imbalanced and sequential problem families. Predicters for these
// problems rely on it.
const ImbalancedProcessingMean = 18.0

// ImbalancedDefinition describes a problem with two resources whose
// performance on the same task differs. spread in [0, 2) controls how
// different: the task's "optimal_resource" data field names the resource
// processing it with mean (1-spread/2)*18, the other with (1+spread/2)*18.
func ImbalancedDefinition(spread float64) Definition {
	resources := []string{"R1", "R2"}
	return Definition{
		Name:            "imbalanced",
		Resources:       resources,
		TaskTypes:       []string{"T"},
		InitialTaskType: "T",
		Interarrival: func(rng *rand.Rand) float64 {
			return rng.ExpFloat64() * 10
		},
		DataSample: func(rng *rand.Rand, _ string) map[string]any {
			return map[string]any{"optimal_resource": resources[rng.Intn(len(resources))]}
		},
		ProcessingTime: func(rng *rand.Rand, resource string, t *sim.Task) float64 {
			ep := ImbalancedProcessingMean
			if resource == t.DataString("optimal_resource") {
				return rng.ExpFloat64() * (1.0 - spread/2.0) * ep
			}
			return rng.ExpFloat64() * (1.0 + spread/2.0) * ep
		},
	}
}

// NewImbalanced generates an imbalanced-problem instance.
func NewImbalanced(spread, duration float64, rng *rand.Rand) (*GeneratedProblem, error) {
	if spread < 0 || spread >= 2 {
		return nil, fmt.Errorf("spread must be in [0, 2), got %f", spread)
	}
	return Generate(ImbalancedDefinition(spread), duration, rng)
}
