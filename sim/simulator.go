package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Config tunes one simulation run.
type Config struct {
	// Lenient makes the engine skip a contract-violating assignment and
	// continue with the rest of the batch instead of aborting the run.
	// Rejections are logged and counted either way.
	Lenient bool

	// RNG drives engine-internal randomness (shift-tick resource
	// selection). Defaults to a fixed-seed stream when nil.
	RNG *rand.Rand
}

// Simulator is the discrete-event kernel of one run: the event queue, the
// task and resource state machines, and the dispatch loop. It owns all
// mutable state; planners and reporters only ever see read-only views.
type Simulator struct {
	Now     float64
	horizon float64

	queue     *EventQueue
	resources *ResourcePool
	tasks     *TaskState

	problem  Problem
	planner  Planner
	reporter Reporter
	shift    ShiftProblem // nil unless the problem carries a schedule

	rng      *rand.Rand
	lenient  bool
	rejected int
}

// NewSimulator binds a problem, planner and reporter into a ready-to-run
// engine: all resources available, the problem restarted, the first case
// arrival (and the first shift tick, if any) enqueued.
func NewSimulator(problem Problem, planner Planner, reporter Reporter, cfg Config) (*Simulator, error) {
	pool, err := NewResourcePool(problem.Resources())
	if err != nil {
		return nil, fmt.Errorf("building resource pool: %w", err)
	}
	rng := cfg.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	s := &Simulator{
		queue:     NewEventQueue(),
		resources: pool,
		tasks:     NewTaskState(),
		problem:   problem,
		planner:   planner,
		reporter:  reporter,
		rng:       rng,
		lenient:   cfg.Lenient,
	}
	if sp, ok := problem.(ShiftProblem); ok && len(sp.Schedule()) > 0 {
		s.shift = sp
		s.queue.Push(&Event{Kind: KindScheduleResources, Time: 0})
	}
	problem.Restart()
	if at, first, ok := problem.NextCase(); ok {
		s.queue.Push(&Event{Kind: KindCaseArrival, Time: at, Task: first})
	}
	return s, nil
}

// Run dispatches events in chronological order until the pending set is
// empty or the next event lies beyond the horizon. Each dispatch runs to
// completion before the next is popped; state mutations are never partially
// visible to a planner invoked later in the same instant.
func (s *Simulator) Run(horizon float64) error {
	if horizon < 0 || math.IsNaN(horizon) {
		return fmt.Errorf("invalid horizon %f", horizon)
	}
	s.horizon = horizon
	for s.queue.Len() > 0 {
		e := s.queue.Pop()
		if e.Time > horizon {
			s.Now = horizon
			break
		}
		if e.Time < s.Now {
			return &InvariantError{
				Context: fmt.Sprintf("event %v scheduled before current time %.4f", e, s.Now),
			}
		}
		s.Now = e.Time
		logrus.Debugf("[t=%10.2f] %v", s.Now, e)
		s.reporter.Report(e)

		var err error
		switch e.Kind {
		case KindCaseArrival:
			err = s.handleCaseArrival(e)
		case KindStartTask:
			err = s.handleStartTask(e)
		case KindCompleteTask:
			err = s.handleCompleteTask(e)
		case KindPlanTasks:
			err = s.handlePlanTasks()
		case KindCompleteCase:
			// Reporting only; the case was already closed out.
		case KindScheduleResources:
			err = s.handleScheduleResources(e)
		default:
			err = fmt.Errorf("event kind %v must never be enqueued", e.Kind)
		}
		if err != nil {
			return err
		}
		if err := s.resources.CheckPartition(); err != nil {
			return err
		}
	}
	logrus.Infof("[t=%10.2f] run ended: %d tasks completed, %d assignments rejected",
		s.Now, s.tasks.CompletedCount(), s.rejected)
	return nil
}

// RejectedAssignments returns how many planner assignments were rejected in
// lenient mode.
func (s *Simulator) RejectedAssignments() int { return s.rejected }

// CheckInvariants runs the full (not just per-dispatch) consistency checks.
func (s *Simulator) CheckInvariants() error {
	if err := s.resources.CheckPartition(); err != nil {
		return err
	}
	return s.tasks.CheckConsistency()
}

func (s *Simulator) handleCaseArrival(e *Event) error {
	if err := s.activate(e.Task); err != nil {
		return err
	}
	s.schedulePlan()
	if at, first, ok := s.problem.NextCase(); ok {
		s.queue.Push(&Event{Kind: KindCaseArrival, Time: at, Task: first})
	}
	return nil
}

// activate enters a task into the unassigned partition and notifies the
// reporter. Instantaneous event tasks bypass planning and start at once.
func (s *Simulator) activate(t *Task) error {
	if err := s.tasks.Activate(t); err != nil {
		return err
	}
	s.reporter.Report(&Event{Kind: KindTaskActivated, Time: s.Now, Task: t})
	if s.problem.IsEvent(t.Type) {
		if err := s.tasks.MarkAssigned(t, "", s.Now); err != nil {
			return err
		}
		s.queue.Push(&Event{Kind: KindStartTask, Time: s.Now, Task: t})
	}
	return nil
}

func (s *Simulator) schedulePlan() {
	available, _, _, _ := s.resources.Counts()
	s.queue.Push(&Event{
		Kind:          KindPlanTasks,
		Time:          s.Now,
		TaskCount:     s.tasks.UnassignedCount(),
		ResourceCount: available,
	})
}

func (s *Simulator) handleStartTask(e *Event) error {
	if e.Resource != "" {
		if err := s.resources.BeginWork(e.Resource, e.Task, s.Now); err != nil {
			return err
		}
	}
	d := s.problem.ProcessingTime(e.Task, e.Resource)
	if d < 0 || math.IsNaN(d) {
		return fmt.Errorf("problem returned invalid processing time %f for %v on %q", d, e.Task, e.Resource)
	}
	s.queue.Push(&Event{Kind: KindCompleteTask, Time: s.Now + d, Task: e.Task, Resource: e.Resource})
	return nil
}

func (s *Simulator) handleCompleteTask(e *Event) error {
	if e.Resource != "" {
		if err := s.releaseResource(e.Resource); err != nil {
			return err
		}
	}
	if err := s.tasks.Complete(e.Task); err != nil {
		return err
	}
	for _, succ := range s.problem.CompleteTask(e.Task) {
		if err := s.activate(succ); err != nil {
			return err
		}
	}
	if s.tasks.CaseClosed(e.Task.CaseID) {
		s.queue.Push(&Event{Kind: KindCompleteCase, Time: s.Now, Task: e.Task})
	}
	s.schedulePlan()
	return nil
}

// releaseResource frees a busy resource. Under an active shift schedule the
// resource goes away instead of available when keeping it on shift would
// exceed the desired headcount of the current tick.
func (s *Simulator) releaseResource(r string) error {
	if s.shift != nil && s.resources.Working() > s.desiredHeadcount() {
		return s.resources.ReleaseAway(r)
	}
	return s.resources.Release(r)
}

func (s *Simulator) desiredHeadcount() int {
	sched := s.shift.Schedule()
	return sched[int(math.Floor(s.Now))%len(sched)]
}

func (s *Simulator) handlePlanTasks() error {
	available, _, _, _ := s.resources.Counts()
	if s.tasks.UnassignedCount() == 0 || available == 0 {
		return nil
	}
	batch := s.planner.Assign(s.snapshot())
	for _, a := range batch {
		if err := s.applyAssignment(a); err != nil {
			var pv *PolicyViolationError
			if errors.As(err, &pv) && s.lenient {
				s.rejected++
				logrus.Warnf("[t=%10.2f] %v", s.Now, err)
				continue
			}
			return err
		}
	}
	return nil
}

// applyAssignment validates one planner decision against live state and, if
// sound, transitions the task and resource in lockstep and schedules the
// start event.
func (s *Simulator) applyAssignment(a Assignment) error {
	if err := s.validateAssignment(a); err != nil {
		return err
	}
	if err := s.tasks.MarkAssigned(a.Task, a.Resource, a.Moment); err != nil {
		return err
	}
	if err := s.resources.Reserve(a.Resource, a.Task, a.Moment); err != nil {
		return err
	}
	s.queue.Push(&Event{Kind: KindStartTask, Time: a.Moment, Task: a.Task, Resource: a.Resource})
	s.reporter.Report(&Event{Kind: KindTaskPlanned, Time: s.Now, Task: a.Task, Resource: a.Resource})
	return nil
}

func (s *Simulator) validateAssignment(a Assignment) error {
	reject := func(reason string) error {
		return &PolicyViolationError{Assignment: a, Reason: reason}
	}
	switch {
	case a.Task == nil:
		return reject("assignment has no task")
	case a.Resource == "":
		return reject("assignment has no resource")
	case !s.tasks.IsUnassigned(a.Task.ID):
		return reject("task is not unassigned")
	case !s.resources.IsAvailable(a.Resource):
		// Also catches a resource double-booked earlier in the same batch:
		// the first assignment already moved it to reserved.
		return reject("resource is not available")
	case !containsString(s.problem.ResourcePool(a.Task.Type), a.Resource):
		return reject(fmt.Sprintf("resource not in pool for task type %q", a.Task.Type))
	case a.Moment < s.Now:
		return reject(fmt.Sprintf("start moment %.4f lies in the past", a.Moment))
	}
	return nil
}

func (s *Simulator) snapshot() *PlannerView {
	return &PlannerView{
		Now:                s.Now,
		UnassignedTasks:    s.tasks.Unassigned(),
		AvailableResources: s.resources.Available(),
		BusyResources:      s.resources.BusyResources(),
		Problem:            s.problem,
	}
}

func (s *Simulator) handleScheduleResources(e *Event) error {
	desired := s.desiredHeadcount()
	working := s.resources.Working()
	switch {
	case desired > working:
		recalled := weightedSample(s.rng, s.resources.Away(), s.shift.ResourceWeight, desired-working)
		for _, r := range recalled {
			if err := s.resources.Recall(r); err != nil {
				return err
			}
		}
		if len(recalled) > 0 {
			s.schedulePlan()
		}
	case desired < working:
		// Only idle resources go off shift; busy and reserved finish first.
		idle := s.resources.Available()
		for i := working - desired; i > 0 && len(idle) > 0; i-- {
			j := s.rng.Intn(len(idle))
			r := idle[j]
			idle = append(idle[:j], idle[j+1:]...)
			if err := s.resources.Withdraw(r); err != nil {
				return err
			}
		}
	}
	if next := e.Time + 1; next <= s.horizon {
		s.queue.Push(&Event{Kind: KindScheduleResources, Time: next})
	}
	return nil
}

// weightedSample draws up to n items without replacement, with probability
// proportional to weight. Non-positive weights fall back to uniform draws.
func weightedSample(rng *rand.Rand, items []string, weight func(string) float64, n int) []string {
	pool := make([]string, len(items))
	copy(pool, items)
	out := make([]string, 0, n)
	for len(out) < n && len(pool) > 0 {
		total := 0.0
		for _, r := range pool {
			if w := weight(r); w > 0 {
				total += w
			}
		}
		var pick int
		if total <= 0 {
			pick = rng.Intn(len(pool))
		} else {
			x := rng.Float64() * total
			for i, r := range pool {
				if w := weight(r); w > 0 {
					x -= w
				}
				if x <= 0 {
					pick = i
					break
				}
				pick = i
			}
		}
		out = append(out, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
