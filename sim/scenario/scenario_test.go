package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsched/rtsched/sim"
)

func TestBuiltin_Catalogue(t *testing.T) {
	scenarios := Builtin()
	require.Len(t, scenarios, 24)

	want := map[string]int{"simple": 4, "challenge": 5, "extreme": 5, "advanced": 5, "new": 5}
	groups := ByCategory(scenarios)
	for _, c := range Categories {
		assert.Len(t, groups[c], want[c], "category %s", c)
	}
	assert.Equal(t, "Light Load", scenarios[0].Name)
	assert.Equal(t, Categories, CategoryOrder(scenarios))
}

func TestCategoryOrder_UnknownCategoriesLast(t *testing.T) {
	scenarios := []Scenario{
		{Name: "a", Category: "zeta"},
		{Name: "b", Category: "new"},
		{Name: "c", Category: "alpha"},
		{Name: "d", Category: "simple"},
		{Name: "e", Category: "zeta"},
	}
	assert.Equal(t, []string{"simple", "new", "zeta", "alpha"}, CategoryOrder(scenarios))
	assert.Empty(t, CategoryOrder(nil))
}

// TestBuiltin_EveryScenarioRunsUnderEveryPreset checks completion totality
// across the whole catalogue.
func TestBuiltin_EveryScenarioRunsUnderEveryPreset(t *testing.T) {
	for _, sc := range Builtin() {
		for _, preset := range sim.PolicyPresets() {
			policy, err := preset.New()
			require.NoError(t, err)
			s, err := sim.NewSimulator(sc.Tasks, sc.MachineConfig(""), policy)
			require.NoError(t, err, "%s / %s", sc.Name, preset.Name)
			res, err := s.Run(context.Background())
			require.NoError(t, err, "%s / %s", sc.Name, preset.Name)
			assert.Equal(t, len(sc.Tasks), res.TotalTasks)
			for _, st := range res.Tasks {
				assert.True(t, st.Completed, "%s / %s: task %d", sc.Name, preset.Name, st.ID)
			}
		}
	}
}

func TestBuiltin_ReturnsFreshCopies(t *testing.T) {
	a := Builtin()
	a[0].Tasks[0].ProcessingTime = 999
	b := Builtin()
	assert.NotEqual(t, 999.0, b[0].Tasks[0].ProcessingTime)
}

func TestFind(t *testing.T) {
	scenarios := Builtin()
	sc, ok := Find(scenarios, "extreme 1: starvation guaranteed")
	require.True(t, ok)
	assert.Equal(t, "Extreme 1: Starvation Guaranteed", sc.Name)
	assert.Equal(t, 1, sc.NumMachines)

	sc.Tasks[0].Deadline = -5
	again, _ := Find(scenarios, sc.Name)
	assert.NotEqual(t, -5.0, again.Tasks[0].Deadline, "Find returns a clone")

	_, ok = Find(scenarios, "No Such Scenario")
	assert.False(t, ok)
}

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_Valid(t *testing.T) {
	path := writeScenarioFile(t, `
scenarios:
  - name: Tiny
    num_machines: 1
    tasks:
      - {id: 1, arrival_time: 0, processing_time: 2, priority: HIGH, deadline: 5}
      - {id: 2, arrival_time: 1, processing_time: 1, priority: low, deadline: 4, cpu_required: 2, ram_required: 4}
`)
	scenarios, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	sc := scenarios[0]
	assert.Equal(t, "Tiny", sc.Name)
	require.Len(t, sc.Tasks, 2)
	assert.Equal(t, sim.PriorityLow, sc.Tasks[1].Priority)
	assert.Equal(t, 2, sc.Tasks[1].CPURequired)
	assert.Equal(t, sim.MachineConfig{NumMachines: 1, Layout: sim.LayoutUniform}, sc.MachineConfig(sim.LayoutUniform))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"unknown field", `
scenarios:
  - name: Typo
    num_machine: 1
`, nil},
		{"no scenarios", `scenarios: []`, nil},
		{"zero machines", `
scenarios:
  - name: Empty
    num_machines: 0
`, sim.ErrNoMachines},
		{"bad priority", `
scenarios:
  - name: Bad
    num_machines: 1
    tasks:
      - {id: 1, arrival_time: 0, processing_time: 1, priority: URGENT, deadline: 5}
`, nil},
		{"deadline before arrival", `
scenarios:
  - name: Bad
    num_machines: 1
    tasks:
      - {id: 1, arrival_time: 5, processing_time: 1, priority: HIGH, deadline: 4}
`, sim.ErrInvalidTask},
		{"duplicate task", `
scenarios:
  - name: Dup
    num_machines: 1
    tasks:
      - {id: 1, arrival_time: 0, processing_time: 1, priority: HIGH, deadline: 4}
      - {id: 1, arrival_time: 0, processing_time: 1, priority: LOW, deadline: 4}
`, sim.ErrDuplicateTask},
		{"duplicate scenario name", `
scenarios:
  - {name: A, num_machines: 1}
  - {name: A, num_machines: 2}
`, nil},
		{"empty name", `
scenarios:
  - {name: "  ", num_machines: 1}
`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
