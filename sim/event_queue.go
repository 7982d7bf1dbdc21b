package sim

import "container/heap"

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: time → insertion sequence. The sequence tie-break makes
// same-timestamp dispatch FIFO, which fixes replication reproducibility.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventQueue is the pending event set of one simulation run. It supports
// insertion at arbitrary times and always extracts the minimum-time event
// next, breaking ties by insertion order.
type EventQueue struct {
	h       eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{h: make(eventHeap, 0)}
	heap.Init(&q.h)
	return q
}

// Push schedules an event, stamping it with the next insertion sequence.
func (q *EventQueue) Push(e *Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.h, e)
}

// Pop removes and returns the next chronological event, or nil if empty.
func (q *EventQueue) Pop() *Event {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Event)
}

// Peek returns the next event without removing it, or nil if empty.
func (q *EventQueue) Peek() *Event {
	if q.h.Len() == 0 {
		return nil
	}
	return q.h[0]
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.h.Len()
}
