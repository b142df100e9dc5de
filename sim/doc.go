// Package sim provides the discrete-event simulation engine for evaluating
// real-time task-selection policies on parallel machines.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - task.go: Task specification, per-run Outcome, and derived quantities
//     (deadline pressure, laxity, response ratio)
//   - event.go: Arrival/Completion events and the deterministic EventQueue
//   - simulator.go: the run loop, ready queue and machine dispatch
//
// # Architecture
//
// The sim package holds the engine and the policy family; supporting code
// lives in sub-packages:
//   - sim/trace/: the event log returned as data from every run
//   - sim/scenario/: built-in and YAML-loaded task sets
//   - sim/experiment/: fan-out of policy × scenario runs and CSV export
//
// # Key Interfaces
//
// SelectionPolicy is the single extension point: given the ready tasks a
// machine can fit and the current simulated time, pick one. Policies are
// pure, so one instance may be shared across concurrent runs. Every run owns
// its Task copies and Outcome records; nothing is shared between Simulators.
package sim
