package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vrorigins/internal/openvr"
	"github.com/roach88/vrorigins/internal/openvr/simvr"
	"github.com/roach88/vrorigins/internal/origins"
)

// Scenario is one conformance scenario: a simulated runtime, an action
// manifest, and a sequence of steps with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is the action manifest to register, relative to the
	// scenario file.
	Manifest string `yaml:"manifest"`

	// Rig describes the simulated runtime.
	Rig simvr.Rig `yaml:"rig"`

	// ActiveSets selects the sets activated at bring-up. Empty activates
	// every manifest set.
	ActiveSets []string `yaml:"active_sets,omitempty"`

	// Policy is the metadata policy; empty selects the default.
	Policy string `yaml:"policy,omitempty"`

	// Steps run in order after bring-up.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded history and runtime call counts
	// after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario step. Exactly one field must be set.
type Step struct {
	// Resolve queries the binding origins of an action.
	Resolve *ResolveStep `yaml:"resolve,omitempty"`

	// Fail makes a runtime call fail from now on.
	Fail *FailStep `yaml:"fail,omitempty"`

	// FailName makes one localized name query fail from now on.
	FailName *FailNameStep `yaml:"fail_name,omitempty"`

	// Clear removes an injected failure for a runtime call.
	Clear string `yaml:"clear,omitempty"`

	// SwitchActiveSets replaces the active-set list.
	SwitchActiveSets *SwitchStep `yaml:"switch_active_sets,omitempty"`

	// BindingUI opens the binding configuration UI.
	BindingUI *BindingUIStep `yaml:"binding_ui,omitempty"`

	// Disconnect tears the runtime session down.
	Disconnect bool `yaml:"disconnect,omitempty"`
}

// ResolveStep names the action to resolve and the expected outcome.
type ResolveStep struct {
	ActionSet string `yaml:"action_set"`
	Action    string `yaml:"action"`

	// Expect is checked against the resolution. Nil expects success.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes an expected resolution.
type Expect struct {
	// Outcome is "OK" or a failure code such as "UNKNOWN_ACTION".
	Outcome string `yaml:"outcome"`

	// Count, when set, is the expected number of records.
	Count *int `yaml:"count,omitempty"`

	// Records are matched by position; only listed fields are compared.
	Records []map[string]string `yaml:"records,omitempty"`
}

// FailStep injects a runtime error for one call.
type FailStep struct {
	Op   string `yaml:"op"`
	Code string `yaml:"code"`
}

// FailNameStep injects a runtime error for one origin's name query.
type FailNameStep struct {
	Origin uint64 `yaml:"origin"`
	Kind   string `yaml:"kind"`
	Code   string `yaml:"code"`
}

// SwitchStep lists the sets to activate.
type SwitchStep struct {
	Sets []string `yaml:"sets"`
}

// BindingUIStep opens the binding UI.
type BindingUIStep struct {
	ShowOnDesktop bool `yaml:"show_on_desktop"`
}

// Assertion validates history or runtime state after a scenario ran.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// ActionSet and Action select history rows.
	ActionSet string `yaml:"action_set,omitempty"`
	Action    string `yaml:"action,omitempty"`

	// Outcome optionally restricts history rows to one outcome.
	Outcome string `yaml:"outcome,omitempty"`

	// Actions is the expected order (history_order).
	Actions []string `yaml:"actions,omitempty"`

	// Op is the runtime call name (runtime_calls).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number of matches.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertHistoryContains = "history_contains"
	AssertHistoryOrder    = "history_order"
	AssertHistoryCount    = "history_count"
	AssertStableDigest    = "stable_digest"
	AssertRuntimeCalls    = "runtime_calls"
)

// stepOps are the runtime calls a fail or clear step may name.
var stepOps = map[string]bool{
	simvr.OpUpdateActionState: true,
	simvr.OpActionOrigins:     true,
	simvr.OpActionBindingInfo: true,
	simvr.OpOpenBindingUI:     true,
}

// LoadScenario reads and parses a scenario YAML file. The manifest path is
// resolved relative to the scenario file. Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Manifest != "" && !filepath.IsAbs(scenario.Manifest) {
		scenario.Manifest = filepath.Join(filepath.Dir(path), scenario.Manifest)
	}
	if _, err := os.Stat(scenario.Manifest); err != nil {
		return nil, fmt.Errorf("invalid scenario: manifest: %w", err)
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. The manifest path is
// left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if _, err := origins.ParsePolicy(s.Policy); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if err := s.Rig.Validate(); err != nil {
		return fmt.Errorf("rig: %w", err)
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step) error {
	set := 0
	if step.Resolve != nil {
		set++
		if step.Resolve.ActionSet == "" || step.Resolve.Action == "" {
			return fmt.Errorf("resolve: action_set and action are required")
		}
		if step.Resolve.Expect != nil && step.Resolve.Expect.Outcome == "" {
			return fmt.Errorf("resolve.expect: outcome is required")
		}
	}
	if step.Fail != nil {
		set++
		if !stepOps[step.Fail.Op] {
			return fmt.Errorf("fail: unsupported op %q", step.Fail.Op)
		}
		if _, err := openvr.ParseInputErrorCode(step.Fail.Code); err != nil {
			return fmt.Errorf("fail: %w", err)
		}
	}
	if step.FailName != nil {
		set++
		if _, err := simvr.ParseNameKind(step.FailName.Kind); err != nil {
			return fmt.Errorf("fail_name: %w", err)
		}
		if _, err := openvr.ParseInputErrorCode(step.FailName.Code); err != nil {
			return fmt.Errorf("fail_name: %w", err)
		}
	}
	if step.Clear != "" {
		set++
		if !stepOps[step.Clear] {
			return fmt.Errorf("clear: unsupported op %q", step.Clear)
		}
	}
	if step.SwitchActiveSets != nil {
		set++
	}
	if step.BindingUI != nil {
		set++
	}
	if step.Disconnect {
		set++
	}

	if set != 1 {
		return fmt.Errorf("exactly one step kind must be set, got %d", set)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertHistoryContains, AssertStableDigest:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for %s", index, a.Type)
		}
	case AssertHistoryOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for history_order", index)
		}
	case AssertHistoryCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for history_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for history_count", index)
		}
	case AssertRuntimeCalls:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for runtime_calls", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
