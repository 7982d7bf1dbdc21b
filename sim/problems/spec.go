package problems

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bpsim/bpsim/sim"
	"github.com/bpsim/bpsim/sim/dist"
)

// ProblemSpecVersion is the schema version this package reads and writes.
const ProblemSpecVersion = "1"

// RoutingChoice is one possible set of successor task types, drawn with
// probability proportional to Weight when the owning task type completes.
// An empty Next ends the case branch.
type RoutingChoice struct {
	Next   []string `yaml:"next"`
	Weight float64  `yaml:"weight"`
}

// ProblemSpec is the versioned document schema describing a problem family:
// vocabularies, distributions and routing probabilities. It replaces opaque
// object-graph dumps with an explicit, forward-compatible contract, e.g.
// for parameters mined from event logs by external tooling.
type ProblemSpec struct {
	Version         string                          `yaml:"version"`
	Name            string                          `yaml:"name"`
	Resources       []string                        `yaml:"resources"`
	TaskTypes       []string                        `yaml:"task_types"`
	InitialTaskType string                          `yaml:"initial_task_type"`
	ResourcePools   map[string][]string             `yaml:"resource_pools,omitempty"`
	EventTypes      []string                        `yaml:"event_types,omitempty"`
	Interarrival    dist.Spec                       `yaml:"interarrival"`
	Processing      map[string]map[string]dist.Spec `yaml:"processing"`
	Routing         map[string][]RoutingChoice      `yaml:"routing,omitempty"`
	MaxCases        int                             `yaml:"max_cases,omitempty"`
	Schedule        []int                           `yaml:"schedule,omitempty"`
	ResourceWeights map[string]float64              `yaml:"resource_weights,omitempty"`
}

// LoadProblemSpec reads and parses a problem spec from a YAML file.
func LoadProblemSpec(path string) (*ProblemSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem spec: %w", err)
	}
	return ParseProblemSpec(data)
}

// ParseProblemSpec parses a problem spec from YAML bytes.
func ParseProblemSpec(data []byte) (*ProblemSpec, error) {
	var spec ProblemSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing problem spec: %w", err)
	}
	if spec.Version != ProblemSpecVersion {
		return nil, fmt.Errorf("unsupported problem spec version %q (want %q)", spec.Version, ProblemSpecVersion)
	}
	return &spec, nil
}

// Definition compiles the spec into a generatable problem definition.
func (s *ProblemSpec) Definition() (Definition, error) {
	interarrival, err := dist.New(s.Interarrival)
	if err != nil {
		return Definition{}, fmt.Errorf("interarrival: %w", err)
	}

	// taskType -> resource (or "*") -> sampler
	processing := make(map[string]map[string]dist.Sampler, len(s.Processing))
	for tt, perResource := range s.Processing {
		processing[tt] = make(map[string]dist.Sampler, len(perResource))
		for r, spec := range perResource {
			sampler, err := dist.New(spec)
			if err != nil {
				return Definition{}, fmt.Errorf("processing time of %q on %q: %w", tt, r, err)
			}
			processing[tt][r] = sampler
		}
	}
	for _, tt := range s.TaskTypes {
		if _, ok := processing[tt]; !ok {
			return Definition{}, fmt.Errorf("task type %q has no processing time distribution", tt)
		}
	}

	routing := make(map[string][]RoutingChoice, len(s.Routing))
	for tt, choices := range s.Routing {
		total := 0.0
		for _, c := range choices {
			if c.Weight < 0 {
				return Definition{}, fmt.Errorf("routing of %q has negative weight", tt)
			}
			total += c.Weight
		}
		if total <= 0 {
			return Definition{}, fmt.Errorf("routing of %q has no positive weights", tt)
		}
		routing[tt] = choices
	}

	events := make(map[string]bool, len(s.EventTypes))
	for _, tt := range s.EventTypes {
		events[tt] = true
	}

	return Definition{
		Name:            s.Name,
		Resources:       s.Resources,
		TaskTypes:       s.TaskTypes,
		InitialTaskType: s.InitialTaskType,
		ResourcePools:   s.ResourcePools,
		EventTypes:      events,
		Interarrival: func(rng *rand.Rand) float64 {
			return interarrival.Sample(rng)
		},
		ProcessingTime: func(rng *rand.Rand, resource string, t *sim.Task) float64 {
			perResource := processing[t.Type]
			if sampler, ok := perResource[resource]; ok {
				return sampler.Sample(rng)
			}
			if sampler, ok := perResource["*"]; ok {
				return sampler.Sample(rng)
			}
			return 0
		},
		NextTaskTypes: func(rng *rand.Rand, t *sim.Task) []string {
			choices, ok := routing[t.Type]
			if !ok {
				return nil
			}
			return pickRouting(rng, choices)
		},
		MaxCases:        s.MaxCases,
		Schedule:        s.Schedule,
		ResourceWeights: s.ResourceWeights,
	}, nil
}

// Generate draws a concrete instance directly from the spec.
func (s *ProblemSpec) Generate(duration float64, rng *rand.Rand) (*GeneratedProblem, error) {
	def, err := s.Definition()
	if err != nil {
		return nil, err
	}
	return Generate(def, duration, rng)
}

func pickRouting(rng *rand.Rand, choices []RoutingChoice) []string {
	total := 0.0
	for _, c := range choices {
		total += c.Weight
	}
	x := rng.Float64() * total
	for _, c := range choices {
		x -= c.Weight
		if x <= 0 {
			return c.Next
		}
	}
	return choices[len(choices)-1].Next
}
