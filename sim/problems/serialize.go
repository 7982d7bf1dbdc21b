package problems

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bpsim/bpsim/sim"
)

// InstanceVersion is the schema version of serialized problem instances.
const InstanceVersion = "1"

// taskDoc serializes one task with its pre-sampled processing times and
// successor references.
type taskDoc struct {
	ID         int64              `yaml:"id"`
	Type       string             `yaml:"type"`
	Data       map[string]any     `yaml:"data,omitempty"`
	Successors []int64            `yaml:"successors,omitempty"`
	Processing map[string]float64 `yaml:"processing"`
}

type caseDoc struct {
	ID      int64     `yaml:"id"`
	Arrival float64   `yaml:"arrival"`
	Tasks   []taskDoc `yaml:"tasks"`
}

// instanceDoc is the versioned on-disk form of a GeneratedProblem.
type instanceDoc struct {
	Version         string              `yaml:"version"`
	Name            string              `yaml:"name"`
	Resources       []string            `yaml:"resources"`
	TaskTypes       []string            `yaml:"task_types"`
	ResourcePools   map[string][]string `yaml:"resource_pools"`
	EventTypes      []string            `yaml:"event_types,omitempty"`
	Schedule        []int               `yaml:"schedule,omitempty"`
	ResourceWeights map[string]float64  `yaml:"resource_weights,omitempty"`
	Cases           []caseDoc           `yaml:"cases"`
}

// Save writes the instance as a versioned YAML document.
func (p *GeneratedProblem) Save(w io.Writer) error {
	doc := instanceDoc{
		Version:         InstanceVersion,
		Name:            p.name,
		Resources:       p.resources,
		TaskTypes:       p.taskTypes,
		ResourcePools:   p.pools,
		Schedule:        p.schedule,
		ResourceWeights: p.weights,
	}
	for tt := range p.events {
		doc.EventTypes = append(doc.EventTypes, tt)
	}
	sort.Strings(doc.EventTypes)

	for caseID, c := range p.cases {
		cd := caseDoc{ID: int64(caseID), Arrival: c.arrival}
		// Case tasks in revelation order, initial task first.
		pending := []*sim.Task{c.first}
		for len(pending) > 0 {
			t := pending[0]
			pending = pending[1:]
			td := taskDoc{
				ID:         t.ID,
				Type:       t.Type,
				Data:       t.Data,
				Processing: p.procTimes[t.ID],
			}
			for _, succ := range p.successors[t.ID] {
				td.Successors = append(td.Successors, succ.ID)
				pending = append(pending, succ)
			}
			cd.Tasks = append(cd.Tasks, td)
		}
		doc.Cases = append(doc.Cases, cd)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding instance: %w", err)
	}
	return nil
}

// SaveFile writes the instance to a YAML file.
func (p *GeneratedProblem) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating instance file: %w", err)
	}
	defer f.Close()
	return p.Save(f)
}

// Load reads a problem instance from a versioned YAML document.
func Load(r io.Reader) (*GeneratedProblem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading instance: %w", err)
	}
	var doc instanceDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing instance: %w", err)
	}
	if doc.Version != InstanceVersion {
		return nil, fmt.Errorf("unsupported instance version %q (want %q)", doc.Version, InstanceVersion)
	}

	p := &GeneratedProblem{
		name:       doc.Name,
		resources:  doc.Resources,
		taskTypes:  doc.TaskTypes,
		pools:      doc.ResourcePools,
		events:     make(map[string]bool, len(doc.EventTypes)),
		successors: make(map[int64][]*sim.Task),
		procTimes:  make(map[int64]map[string]float64),
		schedule:   doc.Schedule,
		weights:    doc.ResourceWeights,
	}
	if p.pools == nil {
		p.pools = make(map[string][]string)
	}
	for _, tt := range doc.EventTypes {
		p.events[tt] = true
	}

	for _, cd := range doc.Cases {
		tasks := make(map[int64]*sim.Task, len(cd.Tasks))
		for _, td := range cd.Tasks {
			if _, dup := tasks[td.ID]; dup {
				return nil, fmt.Errorf("case %d declares task %d twice", cd.ID, td.ID)
			}
			tasks[td.ID] = &sim.Task{ID: td.ID, CaseID: cd.ID, Type: td.Type, Data: td.Data}
			p.procTimes[td.ID] = td.Processing
		}
		for _, td := range cd.Tasks {
			for _, succID := range td.Successors {
				succ, ok := tasks[succID]
				if !ok {
					return nil, fmt.Errorf("case %d: task %d references unknown successor %d", cd.ID, td.ID, succID)
				}
				p.successors[td.ID] = append(p.successors[td.ID], succ)
			}
		}
		if len(cd.Tasks) == 0 {
			return nil, fmt.Errorf("case %d has no tasks", cd.ID)
		}
		p.cases = append(p.cases, caseRecord{arrival: cd.Arrival, first: tasks[cd.Tasks[0].ID]})
	}

	return p, nil
}

// LoadFile reads a problem instance from a YAML file.
func LoadFile(path string) (*GeneratedProblem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening instance file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
