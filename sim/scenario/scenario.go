// Package scenario provides the task sets simulations run against: a
// built-in catalogue embedded in the binary and user files in YAML.
package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rtsched/rtsched/sim"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Scenario is a named task set with the number of machines to run it on.
type Scenario struct {
	Name        string     `yaml:"name" json:"name"`
	Category    string     `yaml:"category,omitempty" json:"category,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	NumMachines int        `yaml:"num_machines" json:"num_machines"`
	Tasks       []sim.Task `yaml:"tasks" json:"tasks"`
}

// File is the top-level layout of a scenario YAML file.
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Categories of the built-in catalogue, in listing order.
var Categories = []string{"simple", "challenge", "extreme", "advanced", "new"}

// Builtin returns fresh copies of the built-in scenarios.
// Panics if the embedded catalogue is malformed.
func Builtin() []Scenario {
	scenarios, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in scenarios: %v", err))
	}
	return scenarios
}

// LoadFile reads and validates a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) ([]Scenario, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file defines no scenarios")
	}
	seen := make(map[string]bool, len(f.Scenarios))
	for i := range f.Scenarios {
		if err := f.Scenarios[i].Validate(); err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if seen[f.Scenarios[i].Name] {
			return nil, fmt.Errorf("scenarios[%d]: duplicate name %q", i, f.Scenarios[i].Name)
		}
		seen[f.Scenarios[i].Name] = true
	}
	return f.Scenarios, nil
}

// Validate checks the name, machine count and every task.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name must not be empty")
	}
	if s.NumMachines <= 0 {
		return fmt.Errorf("%s: %w, got %d", s.Name, sim.ErrNoMachines, s.NumMachines)
	}
	ids := make(map[int]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if err := t.Normalize().Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		if ids[t.ID] {
			return fmt.Errorf("%s: %w: %d", s.Name, sim.ErrDuplicateTask, t.ID)
		}
		ids[t.ID] = true
	}
	return nil
}

// Clone returns a deep copy, so runs never share a task slice.
func (s Scenario) Clone() Scenario {
	s.Tasks = append([]sim.Task(nil), s.Tasks...)
	return s
}

// MachineConfig returns the scenario's machine count with the given layout.
func (s Scenario) MachineConfig(layout string) sim.MachineConfig {
	return sim.MachineConfig{NumMachines: s.NumMachines, Layout: layout}
}

// Find returns the scenario whose name matches (case-insensitive).
func Find(scenarios []Scenario, name string) (Scenario, bool) {
	for _, s := range scenarios {
		if strings.EqualFold(s.Name, name) {
			return s.Clone(), true
		}
	}
	return Scenario{}, false
}

// ByCategory groups scenarios by category, preserving order within each group.
func ByCategory(scenarios []Scenario) map[string][]Scenario {
	out := make(map[string][]Scenario)
	for _, s := range scenarios {
		out[s.Category] = append(out[s.Category], s)
	}
	return out
}

// CategoryOrder lists the categories present in scenarios: built-in
// categories first in Categories order, then any others in first-seen order.
func CategoryOrder(scenarios []Scenario) []string {
	groups := ByCategory(scenarios)
	order := make([]string, 0, len(groups))
	for _, c := range Categories {
		if _, ok := groups[c]; ok {
			order = append(order, c)
		}
	}
	seen := make(map[string]bool, len(order))
	for _, c := range order {
		seen[c] = true
	}
	for _, s := range scenarios {
		if !seen[s.Category] {
			seen[s.Category] = true
			order = append(order, s.Category)
		}
	}
	return order
}
