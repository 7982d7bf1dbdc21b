// Package sim provides the core discrete-event simulation engine for
// business-process operations: cases flow through typed tasks that are
// assigned to resources under pluggable planning policies.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the closed set of event kinds and the immutable event record
//   - resource_state.go / task_state.go: the mutually-constrained state
//     partitions (available/reserved/busy/away resources, unassigned/assigned
//     tasks, live-case tracking)
//   - simulator.go: the event loop, the planning protocol, and the periodic
//     shift tick
//
// # Architecture
//
// The sim package defines the capability contracts; implementations live in
// sub-packages:
//   - sim/problems/: concrete problems (M/M/c, imbalanced, sequential,
//     YAML-specified), instance generation and serialization
//   - sim/planners/: planning policies (greedy, heuristic, predictive, SPT)
//     and predicters
//   - sim/dist/: distribution samplers consumed by problem generators
//
// # Key Interfaces
//
// The extension points are small interfaces chosen at construction time:
//   - Problem: arrival stream, processing-time samples, resource pools,
//     successor revelation (ShiftProblem adds a headcount schedule)
//   - Planner: current assignable state -> batch of assignments
//   - Predicter: processing/remaining time estimates for predictive planners
//   - Reporter: synchronous observer of the event stream
//
// The Replicator drives many independent runs and aggregates their metric
// summaries into means with Student-t confidence intervals.
package sim
