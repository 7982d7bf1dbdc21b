package problems

import (
	"math/rand"

	"github.com/bpsim/bpsim/sim"
)

// SequentialDefinition describes a two-stage process: every case starts
// with a T1 task and continues with a T2 task once T1 completes. Resource
// R1 performs best on T1 and R2 on T2; a task's "optimal_resource" data
// field records its best match.
func SequentialDefinition() Definition {
	return Definition{
		Name:            "sequential",
		Resources:       []string{"R1", "R2"},
		TaskTypes:       []string{"T1", "T2"},
		InitialTaskType: "T1",
		Interarrival: func(rng *rand.Rand) float64 {
			return rng.ExpFloat64() * 20
		},
		DataSample: func(_ *rand.Rand, taskType string) map[string]any {
			// T1 -> R1, T2 -> R2
			return map[string]any{"optimal_resource": "R" + taskType[1:]}
		},
		ProcessingTime: func(rng *rand.Rand, resource string, t *sim.Task) float64 {
			ep := ImbalancedProcessingMean
			if resource == t.DataString("optimal_resource") {
				return rng.ExpFloat64() * 0.5 * ep
			}
			return rng.ExpFloat64() * 1.5 * ep
		},
		NextTaskTypes: func(_ *rand.Rand, t *sim.Task) []string {
			if t.Type == "T1" {
				return []string{"T2"}
			}
			return nil
		},
	}
}

// NewSequential generates a sequential-problem instance.
func NewSequential(duration float64, rng *rand.Rand) (*GeneratedProblem, error) {
	return Generate(SequentialDefinition(), duration, rng)
}
