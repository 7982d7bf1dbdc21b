package sim

import (
	"math"
	"testing"
)

func TestMetricsReporter_OneTaskOneCase(t *testing.T) {
	// GIVEN one task activated at 0, started at 2, completed at 5
	r := NewMetricsReporter(0)
	task := &Task{ID: 1, CaseID: 1, Type: "T"}
	r.Report(&Event{Kind: KindCaseArrival, Time: 0, Task: task})
	r.Report(&Event{Kind: KindTaskActivated, Time: 0, Task: task})
	r.Report(&Event{Kind: KindStartTask, Time: 2, Task: task, Resource: "R1"})
	r.Report(&Event{Kind: KindCompleteTask, Time: 5, Task: task, Resource: "R1"})
	r.Report(&Event{Kind: KindCompleteCase, Time: 5, Task: task})

	// WHEN summarized
	sum := r.Summarize()

	// THEN waiting=2, processing=3, cycle=5
	if got := sum[MetricTasksCompleted]; got != 1 {
		t.Errorf("tasks completed: got %v, want 1", got)
	}
	if got := sum[MetricAvgWaitingTime]; got != 2 {
		t.Errorf("avg waiting time: got %v, want 2", got)
	}
	if got := sum[MetricAvgProcessingTime]; got != 3 {
		t.Errorf("avg processing time: got %v, want 3", got)
	}
	if got := sum[MetricCasesCompleted]; got != 1 {
		t.Errorf("cases completed: got %v, want 1", got)
	}
	if got := sum[MetricAvgCycleTime]; got != 5 {
		t.Errorf("avg cycle time: got %v, want 5", got)
	}
}

func TestMetricsReporter_WarmupExclusion(t *testing.T) {
	// GIVEN a task activated before the warmup time and one after
	r := NewMetricsReporter(10)
	early := &Task{ID: 1, CaseID: 1, Type: "T"}
	late := &Task{ID: 2, CaseID: 2, Type: "T"}

	r.Report(&Event{Kind: KindCaseArrival, Time: 5, Task: early})
	r.Report(&Event{Kind: KindTaskActivated, Time: 5, Task: early})
	r.Report(&Event{Kind: KindStartTask, Time: 6, Task: early})
	r.Report(&Event{Kind: KindCompleteTask, Time: 8, Task: early})

	r.Report(&Event{Kind: KindCaseArrival, Time: 12, Task: late})
	r.Report(&Event{Kind: KindTaskActivated, Time: 12, Task: late})
	r.Report(&Event{Kind: KindStartTask, Time: 13, Task: late})
	r.Report(&Event{Kind: KindCompleteTask, Time: 16, Task: late})

	sum := r.Summarize()

	// THEN only the post-warmup task contributes
	if got := sum[MetricTasksCompleted]; got != 1 {
		t.Errorf("tasks completed: got %v, want 1", got)
	}
	if got := sum[MetricAvgWaitingTime]; got != 1 {
		t.Errorf("avg waiting time: got %v, want 1", got)
	}
}

func TestMetricsReporter_NoObservations_NaN(t *testing.T) {
	// Averages over zero observations must be NaN, not a false zero.
	r := NewMetricsReporter(0)
	sum := r.Summarize()

	for _, name := range []string{MetricAvgWaitingTime, MetricAvgProcessingTime, MetricAvgCycleTime} {
		if !math.IsNaN(sum[name]) {
			t.Errorf("%s with no observations: got %v, want NaN", name, sum[name])
		}
	}
	if got := sum[MetricTasksCompleted]; got != 0 {
		t.Errorf("tasks completed: got %v, want 0", got)
	}
}

func TestMetricsReporter_PlanEventCounters(t *testing.T) {
	r := NewMetricsReporter(0)
	r.Report(&Event{Kind: KindPlanTasks, Time: 0, TaskCount: 2, ResourceCount: 3})
	r.Report(&Event{Kind: KindPlanTasks, Time: 1, TaskCount: 4, ResourceCount: 1})

	sum := r.Summarize()
	if got := sum[MetricPlanEvents]; got != 2 {
		t.Errorf("plan events: got %v, want 2", got)
	}
	if got := sum[MetricAvgTasksPerPlan]; got != 3 {
		t.Errorf("avg tasks per plan: got %v, want 3", got)
	}
	if got := sum[MetricAvgResourcesPerPlan]; got != 2 {
		t.Errorf("avg resources per plan: got %v, want 2", got)
	}
}

func TestMetricsReporter_Restart_ClearsState(t *testing.T) {
	r := NewMetricsReporter(0)
	task := &Task{ID: 1, CaseID: 1, Type: "T"}
	r.Report(&Event{Kind: KindTaskActivated, Time: 0, Task: task})
	r.Report(&Event{Kind: KindStartTask, Time: 1, Task: task})
	r.Report(&Event{Kind: KindCompleteTask, Time: 2, Task: task})

	r.Restart()

	if got := r.Summarize()[MetricTasksCompleted]; got != 0 {
		t.Errorf("tasks completed after Restart: got %v, want 0", got)
	}
}
