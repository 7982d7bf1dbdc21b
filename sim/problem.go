package sim

// Problem supplies the case arrival stream and everything the engine needs
// to know about tasks and resources. The kernel never inspects a problem
// beyond this contract; concrete problems live in sim/problems.
type Problem interface {
	// Resources returns the fixed resource vocabulary.
	Resources() []string

	// TaskTypes returns the fixed task-type vocabulary.
	TaskTypes() []string

	// ResourcePool returns the subset of resources permitted to process
	// tasks of the given type.
	ResourcePool(taskType string) []string

	// Restart resets the arrival cursor to the first case without
	// reallocating the pre-generated or generator-backed event stream.
	Restart()

	// NextCase returns the next case arrival: its simulated arrival time
	// and initial task. ok is false once the arrival stream is exhausted,
	// which the engine treats as "stop scheduling arrivals", not an error.
	NextCase() (arrival float64, first *Task, ok bool)

	// ProcessingTime returns the duration the resource will take on the
	// task. Repeated calls with the same arguments return the same value,
	// so predicters may use it as an oracle. Instantaneous event tasks are
	// queried with an empty resource.
	ProcessingTime(t *Task, resource string) float64

	// IsEvent reports whether the task type is an instantaneous event
	// pseudo-task that starts without a resource.
	IsEvent(taskType string) bool

	// CompleteTask reveals the successor tasks enabled by the completion
	// of t. The full task graph of a case need not be known in advance.
	CompleteTask(t *Task) []*Task
}

// ShiftProblem is an optional Problem capability that adds a periodic
// desired-headcount schedule. Schedule()[floor(now) mod len] is the desired
// number of working (available+reserved+busy) resources at time now; the
// engine fires a schedule_resources tick once per simulated time unit.
type ShiftProblem interface {
	Problem

	// Schedule returns the repeating desired-headcount sequence. An empty
	// schedule disables the shift model.
	Schedule() []int

	// ResourceWeight returns the presence weight of a resource: resources
	// with higher weight are more likely to be recalled on shift.
	ResourceWeight(resource string) float64
}
