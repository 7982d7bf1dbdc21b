// Package problems provides concrete Problem implementations for the
// simulation engine: generator-backed instances, the classic M/M/c,
// imbalanced and sequential research problems, YAML-specified problems,
// and versioned instance serialization.
package problems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/bpsim/bpsim/sim"
)

// Definition describes a problem family. Generate draws a concrete,
// fully pre-sampled instance from it; the samplers are closures so problem
// families can encode arbitrary coupling between data fields and durations.
type Definition struct {
	Name            string
	Resources       []string
	TaskTypes       []string
	InitialTaskType string

	// ResourcePools restricts which resources may process each task type.
	// A nil map (or missing entry) means every resource qualifies.
	ResourcePools map[string][]string

	// EventTypes marks instantaneous pseudo-task types that need no resource.
	EventTypes map[string]bool

	// Interarrival samples the time between consecutive case arrivals.
	// Returning +Inf ends the arrival stream early.
	Interarrival func(rng *rand.Rand) float64

	// ProcessingTime samples how long resource takes on t. Event task types
	// are sampled with an empty resource.
	ProcessingTime func(rng *rand.Rand, resource string, t *sim.Task) float64

	// DataSample produces the data fields of a new task. Optional.
	DataSample func(rng *rand.Rand, taskType string) map[string]any

	// NextTaskTypes samples the task types enabled when t completes.
	// Optional; nil means every case is a single task.
	NextTaskTypes func(rng *rand.Rand, t *sim.Task) []string

	// MaxCases caps the number of generated cases. Zero means unlimited
	// (the generation duration is the only bound).
	MaxCases int

	// Schedule and ResourceWeights configure the optional shift model.
	Schedule        []int
	ResourceWeights map[string]float64
}

type caseRecord struct {
	arrival float64
	first   *sim.Task
}

// GeneratedProblem is a pre-sampled problem instance: the full case stream,
// task graph and processing times are fixed at generation time, so a
// replication replays it deterministically and Restart only rewinds the
// arrival cursor.
type GeneratedProblem struct {
	name      string
	resources []string
	taskTypes []string
	pools     map[string][]string
	events    map[string]bool

	cases      []caseRecord
	successors map[int64][]*sim.Task
	procTimes  map[int64]map[string]float64

	schedule []int
	weights  map[string]float64

	cursor int
}

// Generate instantiates a problem by sampling cases, their task graphs and
// processing times up to the given duration of arrivals.
func Generate(def Definition, duration float64, rng *rand.Rand) (*GeneratedProblem, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	p := &GeneratedProblem{
		name:       def.Name,
		resources:  def.Resources,
		taskTypes:  def.TaskTypes,
		pools:      make(map[string][]string, len(def.TaskTypes)),
		events:     def.EventTypes,
		successors: make(map[int64][]*sim.Task),
		procTimes:  make(map[int64]map[string]float64),
		schedule:   def.Schedule,
		weights:    def.ResourceWeights,
	}
	if p.events == nil {
		p.events = make(map[string]bool)
	}
	for _, tt := range def.TaskTypes {
		if pool, ok := def.ResourcePools[tt]; ok {
			p.pools[tt] = pool
		} else {
			p.pools[tt] = def.Resources
		}
	}

	newTask := func(id, caseID int64, taskType string) *sim.Task {
		t := &sim.Task{ID: id, CaseID: caseID, Type: taskType}
		if def.DataSample != nil {
			t.Data = def.DataSample(rng, taskType)
		}
		return t
	}

	// First pass: case arrivals with their initial tasks.
	var nextTaskID int64
	frontier := make([]*sim.Task, 0)
	now := 0.0
	for caseID := int64(0); ; caseID++ {
		if def.MaxCases > 0 && int(caseID) >= def.MaxCases {
			break
		}
		if now >= duration {
			break
		}
		iat := def.Interarrival(rng)
		if math.IsInf(iat, 1) {
			break
		}
		if iat < 0 || math.IsNaN(iat) {
			return nil, fmt.Errorf("interarrival sample %f is invalid", iat)
		}
		at := now + iat
		first := newTask(nextTaskID, caseID, def.InitialTaskType)
		nextTaskID++
		p.cases = append(p.cases, caseRecord{arrival: at, first: first})
		frontier = append(frontier, first)
		now = at
	}

	// Second pass: finish tasks breadth-first, sampling processing times
	// and revealing successor tasks.
	for len(frontier) > 0 {
		t := frontier[0]
		frontier = frontier[1:]

		times := make(map[string]float64)
		if p.events[t.Type] {
			times[""] = def.ProcessingTime(rng, "", t)
		} else {
			for _, r := range p.pools[t.Type] {
				times[r] = def.ProcessingTime(rng, r, t)
			}
		}
		p.procTimes[t.ID] = times

		if def.NextTaskTypes == nil {
			continue
		}
		for _, tt := range def.NextTaskTypes(rng, t) {
			succ := newTask(nextTaskID, t.CaseID, tt)
			nextTaskID++
			p.successors[t.ID] = append(p.successors[t.ID], succ)
			frontier = append(frontier, succ)
		}
	}

	return p, nil
}

func validateDefinition(def Definition) error {
	if len(def.Resources) == 0 {
		return fmt.Errorf("definition %q has no resources", def.Name)
	}
	if len(def.TaskTypes) == 0 {
		return fmt.Errorf("definition %q has no task types", def.Name)
	}
	types := make(map[string]bool, len(def.TaskTypes))
	for _, tt := range def.TaskTypes {
		types[tt] = true
	}
	if !types[def.InitialTaskType] {
		return fmt.Errorf("initial task type %q is not in the task type vocabulary", def.InitialTaskType)
	}
	for tt, pool := range def.ResourcePools {
		if !types[tt] {
			return fmt.Errorf("resource pool declared for unknown task type %q", tt)
		}
		for _, r := range pool {
			if !containsString(def.Resources, r) {
				return fmt.Errorf("resource pool of %q contains unknown resource %q", tt, r)
			}
		}
	}
	if def.Interarrival == nil || def.ProcessingTime == nil {
		return fmt.Errorf("definition %q needs interarrival and processing time samplers", def.Name)
	}
	return nil
}

// Name returns the problem family name.
func (p *GeneratedProblem) Name() string { return p.name }

// CaseCount returns the number of pre-generated cases.
func (p *GeneratedProblem) CaseCount() int { return len(p.cases) }

// Resources implements sim.Problem.
func (p *GeneratedProblem) Resources() []string { return p.resources }

// TaskTypes implements sim.Problem.
func (p *GeneratedProblem) TaskTypes() []string { return p.taskTypes }

// ResourcePool implements sim.Problem.
func (p *GeneratedProblem) ResourcePool(taskType string) []string { return p.pools[taskType] }

// Restart implements sim.Problem: rewinds the arrival cursor without
// touching the pre-generated stream.
func (p *GeneratedProblem) Restart() { p.cursor = 0 }

// NextCase implements sim.Problem.
func (p *GeneratedProblem) NextCase() (float64, *sim.Task, bool) {
	if p.cursor >= len(p.cases) {
		return 0, nil, false
	}
	c := p.cases[p.cursor]
	p.cursor++
	return c.arrival, c.first, true
}

// ProcessingTime implements sim.Problem. Times were sampled at generation;
// repeated calls return the same value.
func (p *GeneratedProblem) ProcessingTime(t *sim.Task, resource string) float64 {
	return p.procTimes[t.ID][resource]
}

// IsEvent implements sim.Problem.
func (p *GeneratedProblem) IsEvent(taskType string) bool { return p.events[taskType] }

// CompleteTask implements sim.Problem.
func (p *GeneratedProblem) CompleteTask(t *sim.Task) []*sim.Task {
	return p.successors[t.ID]
}

// Schedule implements sim.ShiftProblem. Empty unless the definition carried
// a shift schedule.
func (p *GeneratedProblem) Schedule() []int { return p.schedule }

// ResourceWeight implements sim.ShiftProblem; unknown resources weigh 1.
func (p *GeneratedProblem) ResourceWeight(resource string) float64 {
	if w, ok := p.weights[resource]; ok {
		return w
	}
	return 1
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
