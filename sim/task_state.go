package sim

import "fmt"

// assignedEntry records the resource and planned start of an assigned task.
type assignedEntry struct {
	Task     *Task
	Resource string
	Moment   float64
}

// TaskState partitions live tasks into unassigned and assigned, and tracks
// per-case live-task sets to detect case completion. A task id is in at most
// one of the two partitions; tasks leave both on completion.
type TaskState struct {
	unassigned []*Task // activation order, drives deterministic planning
	assigned   map[int64]assignedEntry

	// liveCases maps case id -> set of live (activated, not completed)
	// task ids. A case completes when its set empties.
	liveCases map[int64]map[int64]struct{}

	completed int
}

// NewTaskState creates an empty task lifecycle state.
func NewTaskState() *TaskState {
	return &TaskState{
		unassigned: make([]*Task, 0),
		assigned:   make(map[int64]assignedEntry),
		liveCases:  make(map[int64]map[int64]struct{}),
	}
}

// Activate enters a newly arrived or newly revealed task into the
// unassigned partition and its case's live set.
func (s *TaskState) Activate(t *Task) error {
	if s.isLive(t) {
		return fmt.Errorf("task %v activated twice", t)
	}
	s.unassigned = append(s.unassigned, t)
	live, ok := s.liveCases[t.CaseID]
	if !ok {
		live = make(map[int64]struct{})
		s.liveCases[t.CaseID] = live
	}
	live[t.ID] = struct{}{}
	return nil
}

func (s *TaskState) isLive(t *Task) bool {
	if _, ok := s.assigned[t.ID]; ok {
		return true
	}
	for _, u := range s.unassigned {
		if u.ID == t.ID {
			return true
		}
	}
	return false
}

// MarkAssigned moves a task from unassigned to assigned. Instantaneous
// event tasks pass an empty resource.
func (s *TaskState) MarkAssigned(t *Task, resource string, moment float64) error {
	if _, dup := s.assigned[t.ID]; dup {
		return fmt.Errorf("task %v already assigned", t)
	}
	found := false
	for i, u := range s.unassigned {
		if u.ID == t.ID {
			s.unassigned = append(s.unassigned[:i], s.unassigned[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("task %v is not unassigned", t)
	}
	s.assigned[t.ID] = assignedEntry{Task: t, Resource: resource, Moment: moment}
	return nil
}

// Complete removes a task from the assigned partition and its case's live
// set. Successors activated afterwards re-grow the live set; call
// CaseClosed once they are in to decide whether the case finished.
func (s *TaskState) Complete(t *Task) error {
	if _, ok := s.assigned[t.ID]; !ok {
		return fmt.Errorf("completing task %v that is not assigned", t)
	}
	delete(s.assigned, t.ID)
	if live, ok := s.liveCases[t.CaseID]; ok {
		delete(live, t.ID)
	}
	s.completed++
	return nil
}

// CaseClosed reports whether the case has no live tasks left, and forgets
// the case if so.
func (s *TaskState) CaseClosed(caseID int64) bool {
	live, ok := s.liveCases[caseID]
	if !ok {
		return false
	}
	if len(live) == 0 {
		delete(s.liveCases, caseID)
		return true
	}
	return false
}

// IsUnassigned reports whether the task id is in the unassigned partition.
func (s *TaskState) IsUnassigned(id int64) bool {
	for _, u := range s.unassigned {
		if u.ID == id {
			return true
		}
	}
	return false
}

// Unassigned returns the unassigned tasks in activation order, as a copy.
func (s *TaskState) Unassigned() []*Task {
	out := make([]*Task, len(s.unassigned))
	copy(out, s.unassigned)
	return out
}

// UnassignedCount returns the size of the unassigned partition.
func (s *TaskState) UnassignedCount() int { return len(s.unassigned) }

// AssignedCount returns the size of the assigned partition.
func (s *TaskState) AssignedCount() int { return len(s.assigned) }

// CompletedCount returns how many tasks have completed so far.
func (s *TaskState) CompletedCount() int { return s.completed }

// LiveCaseCount returns the number of cases with at least one live task.
func (s *TaskState) LiveCaseCount() int { return len(s.liveCases) }

// CheckConsistency verifies that no task id sits in both partitions and
// that every unassigned or assigned task is live in its case.
func (s *TaskState) CheckConsistency() error {
	for _, u := range s.unassigned {
		if _, both := s.assigned[u.ID]; both {
			return &InvariantError{
				Context: fmt.Sprintf("task %v is both unassigned and assigned", u),
				Dump:    fmt.Sprintf("unassigned=%d assigned=%d", len(s.unassigned), len(s.assigned)),
			}
		}
		if !s.caseHas(u.CaseID, u.ID) {
			return &InvariantError{Context: fmt.Sprintf("unassigned task %v missing from case live set", u)}
		}
	}
	for _, entry := range s.assigned {
		if !s.caseHas(entry.Task.CaseID, entry.Task.ID) {
			return &InvariantError{Context: fmt.Sprintf("assigned task %v missing from case live set", entry.Task)}
		}
	}
	return nil
}

func (s *TaskState) caseHas(caseID, taskID int64) bool {
	live, ok := s.liveCases[caseID]
	if !ok {
		return false
	}
	_, ok = live[taskID]
	return ok
}
