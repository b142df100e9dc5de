package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// policyConstructors is the static registry of canonical policy names.
// Lookup is case-insensitive; see NewPolicy.
var policyConstructors = map[string]func(alpha float64) (SelectionPolicy, error){
	"spt":            func(float64) (SelectionPolicy, error) { return &SPTPolicy{}, nil },
	"edf":            func(float64) (SelectionPolicy, error) { return &EDFPolicy{}, nil },
	"priority-first": func(float64) (SelectionPolicy, error) { return &PriorityFirstPolicy{}, nil },
	"max-min":        func(float64) (SelectionPolicy, error) { return &MaxMinPolicy{}, nil },
	"fcfs":           func(float64) (SelectionPolicy, error) { return &FCFSPolicy{}, nil },
	"hrrn":           func(float64) (SelectionPolicy, error) { return &HRRNPolicy{}, nil },
	"mlf":            func(float64) (SelectionPolicy, error) { return &MLFPolicy{}, nil },
	"dpe": func(alpha float64) (SelectionPolicy, error) {
		p, err := NewDPEPolicy(alpha)
		if err != nil {
			return nil, err
		}
		return p, nil
	},
}

// policyAliases maps display names to canonical names.
var policyAliases = map[string]string{
	"max-min (cloud)": "max-min",
	"maxmin":          "max-min",
	"priority":        "priority-first",
	"priorityfirst":   "priority-first",
}

// PolicyPreset is a named, fully configured policy used by experiments and
// listed by the API.
type PolicyPreset struct {
	Name        string
	Policy      string // canonical registry name
	Alpha       float64
	Description string
}

// New constructs the preset's policy.
func (p PolicyPreset) New() (SelectionPolicy, error) {
	return NewPolicy(p.Policy, p.Alpha)
}

var policyPresets = []PolicyPreset{
	{Name: "SPT", Policy: "spt", Description: "Shortest Processing Time First"},
	{Name: "EDF", Policy: "edf", Description: "Earliest Deadline First"},
	{Name: "Priority-First", Policy: "priority-first", Description: "Static priority with EDF tie-breaking"},
	{Name: "Max-Min (Cloud)", Policy: "max-min", Description: "Longest processing time first among compatible tasks"},
	{Name: "DPE (α=0.3)", Policy: "dpe", Alpha: 0.3, Description: "Dynamic Priority Elevation (conservative)"},
	{Name: "DPE (α=0.5)", Policy: "dpe", Alpha: 0.5, Description: "Dynamic Priority Elevation (balanced)"},
	{Name: "DPE (α=0.7)", Policy: "dpe", Alpha: 0.7, Description: "Dynamic Priority Elevation (moderate)"},
	{Name: "DPE (α=0.9)", Policy: "dpe", Alpha: 0.9, Description: "Dynamic Priority Elevation (aggressive)"},
	{Name: "FCFS", Policy: "fcfs", Description: "First Come First Served"},
	{Name: "HRRN", Policy: "hrrn", Description: "Highest Response Ratio Next"},
	{Name: "MLF", Policy: "mlf", Description: "Minimum Laxity First"},
}

// PolicyPresets returns the experiment presets in their canonical order.
func PolicyPresets() []PolicyPreset {
	out := make([]PolicyPreset, len(policyPresets))
	copy(out, policyPresets)
	return out
}

// IsValidPolicy returns true if name resolves to a registered policy.
func IsValidPolicy(name string) bool {
	_, _, ok := resolvePolicyName(name)
	return ok
}

// resolvePolicyName maps name to a canonical registry key. For DPE presets
// ("DPE (α=0.3)", "dpe-0.3") it also returns the embedded alpha. Any other
// name starting with "dpe" resolves to DPE with the caller's alpha.
func resolvePolicyName(name string) (canonical string, presetAlpha *float64, ok bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, found := policyConstructors[key]; found {
		return key, nil, true
	}
	if alias, found := policyAliases[key]; found {
		return alias, nil, true
	}
	for _, p := range policyPresets {
		if strings.ToLower(p.Name) == key {
			if p.Policy == "dpe" {
				a := p.Alpha
				return p.Policy, &a, true
			}
			return p.Policy, nil, true
		}
	}
	if rest, found := strings.CutPrefix(key, "dpe-"); found {
		if a, err := strconv.ParseFloat(rest, 64); err == nil {
			if !validAlpha(a) {
				return "", nil, false
			}
			return "dpe", &a, true
		}
	}
	if strings.HasPrefix(key, "dpe") {
		return "dpe", nil, true
	}
	return "", nil, false
}

func validAlpha(a float64) bool {
	return !math.IsNaN(a) && a >= 0 && a <= 1
}

// NewPolicy creates a SelectionPolicy by name. alpha is used by "dpe" and
// other non-preset DPE names; DPE preset names carry their own alpha and
// ignore the argument.
// Unknown names return an error wrapping ErrUnknownPolicy.
func NewPolicy(name string, alpha float64) (SelectionPolicy, error) {
	canonical, presetAlpha, ok := resolvePolicyName(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
	}
	if presetAlpha != nil {
		alpha = *presetAlpha
	}
	return policyConstructors[canonical](alpha)
}

// PolicyBundle lists the policies an experiment evaluates, loadable from YAML.
// A nil Alpha means DefaultDPEAlpha.
type PolicyBundle struct {
	Policies []PolicyEntry `yaml:"policies"`
}

// PolicyEntry is one policy selection in a bundle.
type PolicyEntry struct {
	Name  string   `yaml:"name"`
	Label string   `yaml:"label,omitempty"`
	Alpha *float64 `yaml:"alpha,omitempty"`
}

// LoadPolicyBundle reads and parses a YAML policy configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadPolicyBundle(path string) (*PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	var bundle PolicyBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	return &bundle, nil
}

// Validate checks that every policy name resolves and every alpha is in range.
func (b *PolicyBundle) Validate() error {
	if len(b.Policies) == 0 {
		return fmt.Errorf("policy config lists no policies")
	}
	for i, e := range b.Policies {
		if !IsValidPolicy(e.Name) {
			return fmt.Errorf("policies[%d]: %w %q", i, ErrUnknownPolicy, e.Name)
		}
		if e.Alpha != nil && !validAlpha(*e.Alpha) {
			return fmt.Errorf("policies[%d]: %w: alpha must be in [0, 1], got %g", i, ErrInvalidAlpha, *e.Alpha)
		}
	}
	return nil
}

// Presets converts the bundle into presets. Labels default to the policy's own name.
func (b *PolicyBundle) Presets() ([]PolicyPreset, error) {
	out := make([]PolicyPreset, 0, len(b.Policies))
	for i, e := range b.Policies {
		alpha := DefaultDPEAlpha
		if e.Alpha != nil {
			alpha = *e.Alpha
		}
		p, err := NewPolicy(e.Name, alpha)
		if err != nil {
			return nil, fmt.Errorf("policies[%d]: %w", i, err)
		}
		canonical, presetAlpha, _ := resolvePolicyName(e.Name)
		if presetAlpha != nil {
			alpha = *presetAlpha
		}
		label := e.Label
		if label == "" {
			label = p.Name()
		}
		out = append(out, PolicyPreset{Name: label, Policy: canonical, Alpha: alpha})
	}
	return out, nil
}
