package sim

import "fmt"

// EventKind identifies what a scheduled event does when dispatched.
// The set is closed: the engine switches over it exhaustively.
type EventKind int

const (
	// KindCaseArrival marks the arrival of a new case with its initial task.
	KindCaseArrival EventKind = iota
	// KindStartTask starts processing of a planned task on its resource.
	KindStartTask
	// KindCompleteTask finishes a running task and reveals its successors.
	KindCompleteTask
	// KindPlanTasks invokes the planner if tasks and resources are available.
	KindPlanTasks
	// KindTaskActivated is a reporter-only notification that a task became
	// assignable. It is never enqueued.
	KindTaskActivated
	// KindTaskPlanned is a reporter-only notification that a task was
	// assigned to a resource. It is never enqueued.
	KindTaskPlanned
	// KindCompleteCase fires when the last live task of a case completes.
	KindCompleteCase
	// KindScheduleResources is the periodic shift tick that moves resources
	// between away and available.
	KindScheduleResources
)

var eventKindNames = map[EventKind]string{
	KindCaseArrival:       "case_arrival",
	KindStartTask:         "start_task",
	KindCompleteTask:      "complete_task",
	KindPlanTasks:         "plan_tasks",
	KindTaskActivated:     "task_activated",
	KindTaskPlanned:       "task_planned",
	KindCompleteCase:      "complete_case",
	KindScheduleResources: "schedule_resources",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event_kind(%d)", int(k))
}

// Event is an immutable record of a moment in simulated time. Fields that
// are irrelevant to a kind are zero-valued (e.g. Resource for case_arrival).
// Events are transient: created, dispatched once, discarded.
type Event struct {
	Kind     EventKind
	Time     float64
	Task     *Task
	Resource string

	// TaskCount and ResourceCount snapshot the number of unassigned tasks
	// and available resources at the moment a plan_tasks event is scheduled.
	TaskCount     int
	ResourceCount int

	// seq is the insertion sequence number assigned by the event queue.
	// Equal-time events dispatch in insertion order (strict FIFO).
	seq uint64
}

func (e *Event) String() string {
	s := fmt.Sprintf("%s (%.2f)", e.Kind, e.Time)
	if e.Task != nil {
		s += " " + e.Task.String()
	}
	if e.Resource != "" {
		s += "," + e.Resource
	}
	return s
}
