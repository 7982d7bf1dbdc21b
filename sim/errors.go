package sim

import "fmt"

// PolicyViolationError reports a planner assignment that broke the planning
// contract: the task was not unassigned, the resource was not available (or
// was double-booked within the batch), the resource is outside the task
// type's pool, or the start moment lies in the past.
type PolicyViolationError struct {
	Assignment Assignment
	Reason     string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("planner contract violation: %v: %s", e.Assignment, e.Reason)
}

// InvariantError reports a broken internal-consistency invariant. It always
// indicates an engine bug and must never be swallowed; the run aborts and
// the error carries a dump of the offending state.
type InvariantError struct {
	Context string
	Dump    string
}

func (e *InvariantError) Error() string {
	if e.Dump == "" {
		return fmt.Sprintf("invariant violation: %s", e.Context)
	}
	return fmt.Sprintf("invariant violation: %s: %s", e.Context, e.Dump)
}

// transitionError builds the error for an illegal resource state transition.
func transitionError(resource, from, to string) error {
	return fmt.Errorf("resource %q: illegal transition %s->%s", resource, from, to)
}
