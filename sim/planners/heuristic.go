package planners

import "github.com/bpsim/bpsim/sim"

// Heuristic plans the preferred resource for each task when it is free,
// and falls back to any resource only once no perfect match can happen
// anymore (i.e. there are at least as many free resources as tasks left to
// consider). Otherwise it leaves the task for a later plan event.
type Heuristic struct {
	// Preferred maps a task type to the resource that performs it best.
	Preferred map[string]string
}

// NewHeuristic builds a heuristic planner from a task-type -> resource
// preference table.
func NewHeuristic(preferred map[string]string) *Heuristic {
	return &Heuristic{Preferred: preferred}
}

// SequentialPreferences is the preference table of the two-stage
// sequential problem: R1 performs best on T1, R2 on T2.
func SequentialPreferences() map[string]string {
	return map[string]string{"T1": "R1", "T2": "R2"}
}

// Assign implements sim.Planner.
func (p *Heuristic) Assign(view *sim.PlannerView) []sim.Assignment {
	available := append([]string(nil), view.AvailableResources...)
	var out []sim.Assignment
	remaining := len(view.UnassignedTasks)
	for _, t := range view.UnassignedTasks {
		if len(available) == 0 {
			break
		}
		if pref, ok := p.Preferred[t.Type]; ok && containsString(available, pref) {
			available = removeString(available, pref)
			out = append(out, sim.Assignment{Task: t, Resource: pref, Moment: view.Now})
		} else if remaining <= len(available) {
			// No perfect match possible anymore; match anyway.
			if r, rest, ok := takeFromPool(available, view.Problem.ResourcePool(t.Type)); ok {
				available = rest
				out = append(out, sim.Assignment{Task: t, Resource: r, Moment: view.Now})
			}
		}
		remaining--
	}
	return out
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
