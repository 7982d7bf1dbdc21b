// Package planners provides resource-allocation policies for the
// simulation engine, from naive greedy matching to predictive planners
// that defer assignments when a better resource is about to free up.
package planners

import "github.com/bpsim/bpsim/sim"

// Greedy assigns unassigned tasks to available resources in order: the
// first task gets the first permitted resource, and so on, at the current
// moment. It is the baseline policy.
type Greedy struct{}

// Assign implements sim.Planner.
func (Greedy) Assign(view *sim.PlannerView) []sim.Assignment {
	available := append([]string(nil), view.AvailableResources...)
	var out []sim.Assignment
	for _, t := range view.UnassignedTasks {
		if len(available) == 0 {
			break
		}
		r, rest, ok := takeFromPool(available, view.Problem.ResourcePool(t.Type))
		if !ok {
			continue
		}
		available = rest
		out = append(out, sim.Assignment{Task: t, Resource: r, Moment: view.Now})
	}
	return out
}

// takeFromPool removes and returns the first resource that is in pool.
func takeFromPool(available []string, pool []string) (string, []string, bool) {
	for i, r := range available {
		if containsString(pool, r) {
			return r, append(available[:i], available[i+1:]...), true
		}
	}
	return "", available, false
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
