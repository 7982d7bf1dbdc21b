package sim

import "math"

// Reporter observes the event stream of one simulation run. The engine
// calls Report synchronously for every dispatched event plus the synthetic
// task_activated and task_planned notifications, Restart before each
// replication, and Summarize once the run finishes.
type Reporter interface {
	Restart()
	Report(e *Event)
	Summarize() map[string]float64
}

// Metric names produced by MetricsReporter.
const (
	MetricTasksCompleted      = "tasks completed"
	MetricCasesCompleted      = "cases completed"
	MetricAvgWaitingTime      = "avg waiting time"
	MetricAvgProcessingTime   = "avg processing time"
	MetricAvgCycleTime        = "avg cycle time"
	MetricPlanEvents          = "plan events"
	MetricAvgTasksPerPlan     = "avg tasks per plan event"
	MetricAvgResourcesPerPlan = "avg resources per plan event"
)

// MetricsReporter accumulates waiting, processing and cycle times over one
// run. Tasks whose activation falls inside the warmup window are excluded
// from the averages. Averages over zero observations summarize as NaN, not
// as a false zero.
type MetricsReporter struct {
	warmup float64

	activated map[int64]float64
	started   map[int64]float64
	arrivals  map[int64]float64 // case id -> arrival time

	tasks           int
	totalWaiting    float64
	totalProcessing float64

	cases      int
	totalCycle float64

	planEvents       int
	tasksPlanned     int
	resourcesPlanned int
}

// NewMetricsReporter creates a reporter that ignores tasks activated before
// the warmup time.
func NewMetricsReporter(warmup float64) *MetricsReporter {
	r := &MetricsReporter{warmup: warmup}
	r.Restart()
	return r
}

// Restart clears all accumulated per-run state.
func (r *MetricsReporter) Restart() {
	r.activated = make(map[int64]float64)
	r.started = make(map[int64]float64)
	r.arrivals = make(map[int64]float64)
	r.tasks = 0
	r.totalWaiting = 0
	r.totalProcessing = 0
	r.cases = 0
	r.totalCycle = 0
	r.planEvents = 0
	r.tasksPlanned = 0
	r.resourcesPlanned = 0
}

// Report consumes one event.
func (r *MetricsReporter) Report(e *Event) {
	switch e.Kind {
	case KindCaseArrival:
		r.arrivals[e.Task.CaseID] = e.Time
	case KindTaskActivated:
		r.activated[e.Task.ID] = e.Time
	case KindStartTask:
		r.started[e.Task.ID] = e.Time
	case KindCompleteTask:
		act, hasAct := r.activated[e.Task.ID]
		start, hasStart := r.started[e.Task.ID]
		if hasAct && hasStart && act >= r.warmup {
			r.tasks++
			r.totalWaiting += start - act
			r.totalProcessing += e.Time - start
		}
		delete(r.activated, e.Task.ID)
		delete(r.started, e.Task.ID)
	case KindCompleteCase:
		if arr, ok := r.arrivals[e.Task.CaseID]; ok {
			if arr >= r.warmup {
				r.cases++
				r.totalCycle += e.Time - arr
			}
			delete(r.arrivals, e.Task.CaseID)
		}
	case KindPlanTasks:
		r.planEvents++
		r.tasksPlanned += e.TaskCount
		r.resourcesPlanned += e.ResourceCount
	}
}

// Summarize returns the per-run metric values.
func (r *MetricsReporter) Summarize() map[string]float64 {
	return map[string]float64{
		MetricTasksCompleted:      float64(r.tasks),
		MetricCasesCompleted:      float64(r.cases),
		MetricAvgWaitingTime:      ratio(r.totalWaiting, r.tasks),
		MetricAvgProcessingTime:   ratio(r.totalProcessing, r.tasks),
		MetricAvgCycleTime:        ratio(r.totalCycle, r.cases),
		MetricPlanEvents:          float64(r.planEvents),
		MetricAvgTasksPerPlan:     ratio(float64(r.tasksPlanned), r.planEvents),
		MetricAvgResourcesPerPlan: ratio(float64(r.resourcesPlanned), r.planEvents),
	}
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
