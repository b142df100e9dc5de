package sim

import "fmt"

// Machine executes one task at a time.
type Machine struct {
	ID          int     `json:"id"`
	AvailableAt float64 `json:"available_at"` // earliest time the machine can start its next task
	CPUCapacity int     `json:"cpu_capacity"`
	RAMCapacity int     `json:"ram_capacity"`
}

// IsIdle reports whether the machine can start a task at now.
func (m *Machine) IsIdle(now float64) bool {
	return now >= m.AvailableAt
}

// CanFit reports whether the machine has the capacity the task requires.
func (m *Machine) CanFit(t *Task) bool {
	return m.CPUCapacity >= t.CPURequired && m.RAMCapacity >= t.RAMRequired
}

// occupyUntil advances AvailableAt. Machine time never runs backwards.
func (m *Machine) occupyUntil(t float64) {
	if t < m.AvailableAt {
		panic(fmt.Sprintf("machine %d: available_at would move backwards from %g to %g", m.ID, m.AvailableAt, t))
	}
	m.AvailableAt = t
}

// Machine layouts accepted by MachineConfig.
const (
	LayoutAlternating = "alternating"
	LayoutUniform     = "uniform"
)

// Capacities of the alternating layout: even IDs are large, odd IDs small.
const (
	LargeMachineCPU = 8
	LargeMachineRAM = 32
	SmallMachineCPU = 4
	SmallMachineRAM = 8

	DefaultMachineCPU = 8
	DefaultMachineRAM = 16
)

var validLayouts = map[string]bool{"": true, LayoutAlternating: true, LayoutUniform: true}

// IsValidLayout returns true if name is a recognized machine layout.
func IsValidLayout(name string) bool {
	return validLayouts[name]
}

// MachineConfig describes the machine pool of one simulation.
// Empty Layout means alternating. CPUCapacity/RAMCapacity apply to the
// uniform layout only; zero values use DefaultMachineCPU/DefaultMachineRAM.
type MachineConfig struct {
	NumMachines int    `yaml:"num_machines" json:"num_machines"`
	Layout      string `yaml:"layout,omitempty" json:"layout,omitempty"`
	CPUCapacity int    `yaml:"cpu_capacity,omitempty" json:"cpu_capacity,omitempty"`
	RAMCapacity int    `yaml:"ram_capacity,omitempty" json:"ram_capacity,omitempty"`
}

// Validate checks machine count, layout name and capacities.
func (c MachineConfig) Validate() error {
	if c.NumMachines <= 0 {
		return fmt.Errorf("%w, got %d", ErrNoMachines, c.NumMachines)
	}
	if !IsValidLayout(c.Layout) {
		return fmt.Errorf("%w: unknown layout %q; valid: alternating, uniform", ErrInvalidMachineConfig, c.Layout)
	}
	if c.CPUCapacity < 0 || c.RAMCapacity < 0 {
		return fmt.Errorf("%w: capacities must be non-negative (cpu=%d, ram=%d)", ErrInvalidMachineConfig, c.CPUCapacity, c.RAMCapacity)
	}
	return nil
}

// Build creates the machine pool, IDs 0..NumMachines-1, all available at time 0.
func (c MachineConfig) Build() []*Machine {
	machines := make([]*Machine, c.NumMachines)
	for i := range machines {
		m := &Machine{ID: i}
		switch c.Layout {
		case LayoutUniform:
			m.CPUCapacity, m.RAMCapacity = c.CPUCapacity, c.RAMCapacity
			if m.CPUCapacity == 0 {
				m.CPUCapacity = DefaultMachineCPU
			}
			if m.RAMCapacity == 0 {
				m.RAMCapacity = DefaultMachineRAM
			}
		default:
			if i%2 == 0 {
				m.CPUCapacity, m.RAMCapacity = LargeMachineCPU, LargeMachineRAM
			} else {
				m.CPUCapacity, m.RAMCapacity = SmallMachineCPU, SmallMachineRAM
			}
		}
		machines[i] = m
	}
	return machines
}
