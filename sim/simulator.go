// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rtsched/rtsched/sim/trace"
)

// Option configures a Simulator.
type Option func(*Simulator)

// WithTrace sets the event-log level. The default records every event.
func WithTrace(level trace.Level) Option {
	return func(s *Simulator) { s.trace = trace.NewSimulationTrace(level) }
}

// Simulator is the core object that holds simulated time, machine state, the
// event queue and the ready queue for one run.
type Simulator struct {
	Clock float64

	policy   SelectionPolicy
	tasks    []Task      // normalized specs, input order
	index    map[int]int // task ID → position in tasks/outcomes
	outcomes []Outcome   // per-run results, parallel to tasks
	machines []*Machine  // sorted by ID
	events   *EventQueue
	// ready holds arrived, not-yet-started tasks in arrival-event order.
	ready []*Task
	trace *trace.SimulationTrace
	ran   bool
}

// NewSimulator validates its inputs and returns a simulator ready to Run.
// tasks is copied; the caller's slice is never modified.
func NewSimulator(tasks []Task, cfg MachineConfig, policy SelectionPolicy, opts ...Option) (*Simulator, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: nil policy", ErrUnknownPolicy)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		policy:   policy,
		tasks:    make([]Task, len(tasks)),
		index:    make(map[int]int, len(tasks)),
		outcomes: make([]Outcome, len(tasks)),
		machines: cfg.Build(),
		events:   NewEventQueue(),
		ready:    make([]*Task, 0, len(tasks)),
		trace:    trace.NewSimulationTrace(trace.LevelEvents),
	}
	for i, t := range tasks {
		t = t.Normalize()
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.index[t.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTask, t.ID)
		}
		if !s.fitsAnyMachine(&t) {
			return nil, fmt.Errorf("%w: no machine can ever run task %d (cpu=%d, ram=%d)",
				ErrUnschedulable, t.ID, t.CPURequired, t.RAMRequired)
		}
		s.tasks[i] = t
		s.index[t.ID] = i
		s.outcomes[i] = Outcome{TaskID: t.ID}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) fitsAnyMachine(t *Task) bool {
	for _, m := range s.machines {
		if m.CanFit(t) {
			return true
		}
	}
	return false
}

// Machines returns the machine pool. Callers must not modify it.
func (s *Simulator) Machines() []*Machine {
	return s.machines
}

// Run drives the simulation to completion. It seeds one arrival per task,
// then alternates between draining the earliest event batch and dispatching
// ready tasks to idle machines until both queues are empty.
// A Simulator runs at most once.
func (s *Simulator) Run(ctx context.Context) (*Results, error) {
	if s.ran {
		return nil, ErrAlreadyRun
	}
	s.ran = true

	for i := range s.tasks {
		s.events.Schedule(&Event{Time: s.tasks[i].ArrivalTime, Kind: EventArrival, TaskID: s.tasks[i].ID})
	}

	for s.events.Len() > 0 || len(s.ready) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted at t=%g: %w", s.Clock, err)
		}
		if batch := s.events.PopNextBatch(); batch != nil {
			s.Clock = batch[0].Time
			for _, ev := range batch {
				s.apply(ev)
			}
		}
		s.dispatch()

		// Every busy machine has a pending completion, so an empty event queue
		// means all machines are idle and none could take the remaining tasks.
		if s.events.Len() == 0 && len(s.ready) > 0 {
			ids := make([]string, len(s.ready))
			for i, t := range s.ready {
				ids[i] = fmt.Sprint(t.ID)
			}
			return nil, fmt.Errorf("%w: deadlock at t=%g, no machine can run tasks [%s]",
				ErrUnschedulable, s.Clock, strings.Join(ids, " "))
		}
	}
	return s.results(), nil
}

// apply processes one event. PopNextBatch already orders arrivals first.
func (s *Simulator) apply(ev *Event) {
	i := s.index[ev.TaskID]
	t := &s.tasks[i]
	switch ev.Kind {
	case EventArrival:
		s.ready = append(s.ready, t)
		s.trace.RecordArrival(s.Clock, t.ID, t.CPURequired, t.RAMRequired)
	case EventCompletion:
		m := s.machines[ev.MachineID]
		m.occupyUntil(s.Clock)
		s.outcomes[i].CompletionTime = s.Clock
		s.outcomes[i].Completed = true
		s.trace.RecordCompletion(s.Clock, t.ID, m.ID)
	default:
		panic(fmt.Sprintf("unhandled event kind %v", ev.Kind))
	}
}

// dispatch offers each idle machine, in ID order, the ready tasks it can fit.
func (s *Simulator) dispatch() {
	for _, m := range s.machines {
		if len(s.ready) == 0 {
			return
		}
		if !m.IsIdle(s.Clock) {
			continue
		}
		compatible := make([]*Task, 0, len(s.ready))
		for _, t := range s.ready {
			if m.CanFit(t) {
				compatible = append(compatible, t)
			}
		}
		if len(compatible) == 0 {
			continue
		}
		chosen, ok := s.policy.Select(compatible, s.Clock)
		if !ok {
			continue
		}
		s.start(chosen, m)
	}
}

func (s *Simulator) start(t *Task, m *Machine) {
	s.removeReady(t)
	i := s.index[t.ID]
	if s.outcomes[i].Started {
		panic(fmt.Sprintf("task %d dispatched twice", t.ID))
	}
	completion := s.Clock + t.ProcessingTime
	s.outcomes[i].Started = true
	s.outcomes[i].StartTime = s.Clock
	s.outcomes[i].MachineID = m.ID
	m.occupyUntil(completion)
	s.events.Schedule(&Event{Time: completion, Kind: EventCompletion, TaskID: t.ID, MachineID: m.ID})
	s.trace.RecordStart(s.Clock, t.ID, m.ID, completion, t.ArrivalTime)
}

func (s *Simulator) removeReady(t *Task) {
	for i, r := range s.ready {
		if r == t {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("policy %s selected task %d which is not ready", s.policy.Name(), t.ID))
}

func (s *Simulator) results() *Results {
	r := &Results{
		Policy:       s.policy.Name(),
		TotalTasks:   len(s.tasks),
		Tasks:        make([]ScheduledTask, len(s.tasks)),
		Log:          s.trace.Records,
		SimEndedTime: s.Clock,
	}
	for i := range s.tasks {
		st := ScheduledTask{Task: s.tasks[i], Outcome: s.outcomes[i]}
		r.Tasks[i] = st
		if st.Completed && st.CompletionTime > r.Makespan {
			r.Makespan = st.CompletionTime
		}
		stats := &r.HighPriority
		if st.Priority == PriorityLow {
			stats = &r.LowPriority
		}
		stats.Total++
		if st.MeetsDeadline() {
			stats.MetDeadline++
		}
	}
	sort.SliceStable(r.Tasks, func(i, j int) bool { return r.Tasks[i].ID < r.Tasks[j].ID })
	return r
}
