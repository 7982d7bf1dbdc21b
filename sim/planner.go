package sim

// PlannerView is the read-only snapshot of engine state a planner decides
// on. All collections are copies; a buggy or adversarial planner cannot
// corrupt the live engine state through it.
type PlannerView struct {
	// Now is the current simulated time.
	Now float64

	// UnassignedTasks holds the assignable tasks in activation order.
	UnassignedTasks []*Task

	// AvailableResources holds the idle resources in deterministic order.
	AvailableResources []string

	// BusyResources maps each busy resource to the task it is processing
	// and the time it started.
	BusyResources map[string]BusyInfo

	// Problem gives planners access to pools, sampled processing times and
	// task vocabularies.
	Problem Problem
}

// Planner is a resource-allocation policy: a pure function from the current
// simulation state to a batch of assignments. The engine validates each
// assignment against its live state before applying it, in the order
// returned.
type Planner interface {
	Assign(view *PlannerView) []Assignment
}

// Predicter estimates processing times. It is consumed by predictive
// planners to decide whether deferring an assignment pays off; the kernel
// itself never calls it.
type Predicter interface {
	// PredictProcessingTime estimates how long resource would take on t.
	PredictProcessingTime(p Problem, resource string, t *Task) float64

	// PredictRemainingProcessingTime estimates how much longer a resource
	// that started t at start will keep working, as seen from now.
	PredictRemainingProcessingTime(p Problem, resource string, t *Task, start, now float64) float64
}
