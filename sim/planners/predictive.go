package planners

import (
	"github.com/bpsim/bpsim/sim"
	"github.com/bpsim/bpsim/sim/problems"
)

// Predictive is a variant of the heuristic planner that defers an
// assignment when the predicter expects the task's preferred resource to
// finish its current work and process the task sooner than an available
// fallback resource would. Designed for the two-resource research problems;
// the preference table makes the pairing explicit.
type Predictive struct {
	Preferred map[string]string
	Predicter sim.Predicter
}

// NewPredictive builds a predictive planner.
func NewPredictive(preferred map[string]string, predicter sim.Predicter) *Predictive {
	return &Predictive{Preferred: preferred, Predicter: predicter}
}

// Assign implements sim.Planner.
func (p *Predictive) Assign(view *sim.PlannerView) []sim.Assignment {
	available := append([]string(nil), view.AvailableResources...)
	var out []sim.Assignment
	remaining := len(view.UnassignedTasks)
	for _, t := range view.UnassignedTasks {
		if len(available) == 0 {
			break
		}
		pref, hasPref := p.Preferred[t.Type]
		switch {
		case hasPref && containsString(available, pref):
			// Perfect match possible; make it.
			available = removeString(available, pref)
			out = append(out, sim.Assignment{Task: t, Resource: pref, Moment: view.Now})
		case hasPref && p.worthWaitingFor(view, pref, t, available):
			// The preferred resource frees up soon enough; leave the task
			// unassigned and let a later plan event pick it up.
		case remaining <= len(available):
			if r, rest, ok := takeFromPool(available, view.Problem.ResourcePool(t.Type)); ok {
				available = rest
				out = append(out, sim.Assignment{Task: t, Resource: r, Moment: view.Now})
			}
		}
		remaining--
	}
	return out
}

// worthWaitingFor reports whether waiting for the busy preferred resource
// beats starting now on some available fallback resource.
func (p *Predictive) worthWaitingFor(view *sim.PlannerView, pref string, t *sim.Task, available []string) bool {
	busy, ok := view.BusyResources[pref]
	if !ok {
		return false
	}
	alt, _, ok := takeFromPool(append([]string(nil), available...), view.Problem.ResourcePool(t.Type))
	if !ok {
		return false
	}
	remaining := p.Predicter.PredictRemainingProcessingTime(view.Problem, pref, busy.Task, busy.Start, view.Now)
	onPref := p.Predicter.PredictProcessingTime(view.Problem, pref, t)
	onAlt := p.Predicter.PredictProcessingTime(view.Problem, alt, t)
	return remaining+onPref < onAlt
}

// ImbalancedPredicter estimates with the distribution means of the
// imbalanced and sequential problem families: half the base mean on a
// task's optimal resource, one-and-a-half times it elsewhere.
type ImbalancedPredicter struct{}

// PredictProcessingTime implements sim.Predicter.
func (ImbalancedPredicter) PredictProcessingTime(_ sim.Problem, resource string, t *sim.Task) float64 {
	ep := problems.ImbalancedProcessingMean
	if resource == t.DataString("optimal_resource") {
		return 0.5 * ep
	}
	return 1.5 * ep
}

// PredictRemainingProcessingTime implements sim.Predicter. The estimate
// ignores elapsed time, as the exponential is memoryless.
func (p ImbalancedPredicter) PredictRemainingProcessingTime(problem sim.Problem, resource string, t *sim.Task, _, _ float64) float64 {
	return p.PredictProcessingTime(problem, resource, t)
}

// PerfectPredicter is an oracle: it reads the problem's pre-sampled
// processing times instead of estimating them.
type PerfectPredicter struct{}

// PredictProcessingTime implements sim.Predicter.
func (PerfectPredicter) PredictProcessingTime(problem sim.Problem, resource string, t *sim.Task) float64 {
	return problem.ProcessingTime(t, resource)
}

// PredictRemainingProcessingTime implements sim.Predicter.
func (PerfectPredicter) PredictRemainingProcessingTime(problem sim.Problem, resource string, t *sim.Task, start, now float64) float64 {
	return start + problem.ProcessingTime(t, resource) - now
}
