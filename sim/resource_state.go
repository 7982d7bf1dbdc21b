package sim

import (
	"fmt"
	"strings"
)

// resourceStatus is the current partition a resource belongs to. At any
// simulated instant each resource is in exactly one status.
type resourceStatus int

const (
	statusAvailable resourceStatus = iota
	statusReserved
	statusBusy
	statusAway
)

var statusNames = map[resourceStatus]string{
	statusAvailable: "available",
	statusReserved:  "reserved",
	statusBusy:      "busy",
	statusAway:      "away",
}

// BusyInfo records what a reserved or busy resource is working on.
// For reserved resources Start is the planned start moment.
type BusyInfo struct {
	Task  *Task
	Start float64
}

// ResourcePool partitions a fixed resource vocabulary into
// available / reserved / busy / away and guards every transition.
// The available and away sets keep insertion order so that iteration is
// deterministic across replications.
type ResourcePool struct {
	order     []string
	status    map[string]resourceStatus
	available []string
	away      []string
	reserved  map[string]BusyInfo
	busy      map[string]BusyInfo
}

// NewResourcePool creates a pool with every resource available.
func NewResourcePool(resources []string) (*ResourcePool, error) {
	p := &ResourcePool{
		order:     make([]string, 0, len(resources)),
		status:    make(map[string]resourceStatus, len(resources)),
		available: make([]string, 0, len(resources)),
		away:      make([]string, 0),
		reserved:  make(map[string]BusyInfo),
		busy:      make(map[string]BusyInfo),
	}
	for _, r := range resources {
		if _, dup := p.status[r]; dup {
			return nil, fmt.Errorf("duplicate resource %q", r)
		}
		p.order = append(p.order, r)
		p.status[r] = statusAvailable
		p.available = append(p.available, r)
	}
	return p, nil
}

// Size returns the total resource count.
func (p *ResourcePool) Size() int { return len(p.order) }

// IsAvailable reports whether the resource is currently assignable.
func (p *ResourcePool) IsAvailable(r string) bool {
	return p.status[r] == statusAvailable && p.contains(r)
}

func (p *ResourcePool) contains(r string) bool {
	_, ok := p.status[r]
	return ok
}

// Available returns the available resources in insertion order.
// The slice is a copy; mutating it does not affect the pool.
func (p *ResourcePool) Available() []string {
	out := make([]string, len(p.available))
	copy(out, p.available)
	return out
}

// Away returns the away resources in insertion order, as a copy.
func (p *ResourcePool) Away() []string {
	out := make([]string, len(p.away))
	copy(out, p.away)
	return out
}

// BusyResources returns a copy of the busy set with task and start time.
func (p *ResourcePool) BusyResources() map[string]BusyInfo {
	out := make(map[string]BusyInfo, len(p.busy))
	for r, info := range p.busy {
		out[r] = info
	}
	return out
}

// Counts returns the size of each partition.
func (p *ResourcePool) Counts() (available, reserved, busy, away int) {
	return len(p.available), len(p.reserved), len(p.busy), len(p.away)
}

// Working returns |available| + |reserved| + |busy|, the on-shift headcount
// the periodic schedule steers towards its desired value.
func (p *ResourcePool) Working() int {
	return len(p.available) + len(p.reserved) + len(p.busy)
}

// Reserve claims an available resource for a planned task.
func (p *ResourcePool) Reserve(r string, t *Task, moment float64) error {
	if !p.contains(r) {
		return fmt.Errorf("unknown resource %q", r)
	}
	if p.status[r] != statusAvailable {
		return transitionError(r, statusNames[p.status[r]], "reserved")
	}
	p.removeAvailable(r)
	p.status[r] = statusReserved
	p.reserved[r] = BusyInfo{Task: t, Start: moment}
	return nil
}

// BeginWork moves a reserved resource to busy when its start event fires.
func (p *ResourcePool) BeginWork(r string, t *Task, now float64) error {
	if p.status[r] != statusReserved || !p.contains(r) {
		return transitionError(r, statusNames[p.status[r]], "busy")
	}
	delete(p.reserved, r)
	p.status[r] = statusBusy
	p.busy[r] = BusyInfo{Task: t, Start: now}
	return nil
}

// Release frees a busy resource back to available on task completion.
func (p *ResourcePool) Release(r string) error {
	if p.status[r] != statusBusy || !p.contains(r) {
		return transitionError(r, statusNames[p.status[r]], "available")
	}
	delete(p.busy, r)
	p.status[r] = statusAvailable
	p.available = append(p.available, r)
	return nil
}

// ReleaseAway sends a busy resource off shift on task completion. Used when
// releasing to available would exceed the schedule's desired headcount.
func (p *ResourcePool) ReleaseAway(r string) error {
	if p.status[r] != statusBusy || !p.contains(r) {
		return transitionError(r, statusNames[p.status[r]], "away")
	}
	delete(p.busy, r)
	p.status[r] = statusAway
	p.away = append(p.away, r)
	return nil
}

// Recall brings an away resource back on shift.
func (p *ResourcePool) Recall(r string) error {
	if p.status[r] != statusAway || !p.contains(r) {
		return transitionError(r, statusNames[p.status[r]], "available")
	}
	p.removeAway(r)
	p.status[r] = statusAvailable
	p.available = append(p.available, r)
	return nil
}

// Withdraw sends an idle available resource off shift. Busy and reserved
// resources are never withdrawn.
func (p *ResourcePool) Withdraw(r string) error {
	if p.status[r] != statusAvailable || !p.contains(r) {
		return transitionError(r, statusNames[p.status[r]], "away")
	}
	p.removeAvailable(r)
	p.status[r] = statusAway
	p.away = append(p.away, r)
	return nil
}

// CheckPartition verifies that the four sets partition the vocabulary.
// A failure is an engine bug; the returned error carries a state dump.
func (p *ResourcePool) CheckPartition() error {
	total := len(p.available) + len(p.reserved) + len(p.busy) + len(p.away)
	if total != len(p.order) {
		return &InvariantError{
			Context: fmt.Sprintf("resource partition sums to %d, vocabulary has %d", total, len(p.order)),
			Dump:    p.dump(),
		}
	}
	for _, r := range p.available {
		if p.status[r] != statusAvailable {
			return &InvariantError{Context: fmt.Sprintf("resource %q in available set with status %s", r, statusNames[p.status[r]]), Dump: p.dump()}
		}
	}
	for _, r := range p.away {
		if p.status[r] != statusAway {
			return &InvariantError{Context: fmt.Sprintf("resource %q in away set with status %s", r, statusNames[p.status[r]]), Dump: p.dump()}
		}
	}
	for r := range p.reserved {
		if p.status[r] != statusReserved {
			return &InvariantError{Context: fmt.Sprintf("resource %q in reserved set with status %s", r, statusNames[p.status[r]]), Dump: p.dump()}
		}
	}
	for r := range p.busy {
		if p.status[r] != statusBusy {
			return &InvariantError{Context: fmt.Sprintf("resource %q in busy set with status %s", r, statusNames[p.status[r]]), Dump: p.dump()}
		}
	}
	return nil
}

func (p *ResourcePool) dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "available=%v away=%v reserved=[", p.available, p.away)
	for r, info := range p.reserved {
		fmt.Fprintf(&b, "%s:%v ", r, info.Task)
	}
	b.WriteString("] busy=[")
	for r, info := range p.busy {
		fmt.Fprintf(&b, "%s:%v ", r, info.Task)
	}
	b.WriteString("]")
	return b.String()
}

func (p *ResourcePool) removeAvailable(r string) {
	p.available = removeString(p.available, r)
}

func (p *ResourcePool) removeAway(r string) {
	p.away = removeString(p.away, r)
}

func removeString(s []string, v string) []string {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
