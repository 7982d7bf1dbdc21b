package planners

import "github.com/bpsim/bpsim/sim"

// ShortestProcessingTime assigns the single unassigned task with the
// smallest value of a numeric data field (the known or predicted
// processing time) to the first permitted available resource. One
// assignment per plan event keeps the ordering strictly shortest-first as
// resources free up.
type ShortestProcessingTime struct {
	// Field is the task data field holding the processing time estimate.
	Field string
}

// NewShortestProcessingTime builds an SPT planner reading the given field.
func NewShortestProcessingTime(field string) *ShortestProcessingTime {
	return &ShortestProcessingTime{Field: field}
}

// Assign implements sim.Planner.
func (p *ShortestProcessingTime) Assign(view *sim.PlannerView) []sim.Assignment {
	var best *sim.Task
	var bestValue float64
	for _, t := range view.UnassignedTasks {
		v := t.DataFloat(p.Field)
		if best == nil || v < bestValue {
			best, bestValue = t, v
		}
	}
	if best == nil {
		return nil
	}
	r, _, ok := takeFromPool(append([]string(nil), view.AvailableResources...), view.Problem.ResourcePool(best.Type))
	if !ok {
		return nil
	}
	return []sim.Assignment{{Task: best, Resource: r, Moment: view.Now}}
}
