package simvr

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/vrorigins/internal/ir"
)

// Rig describes the state a simulated runtime reports.
type Rig struct {
	// DashboardVisible is returned by Overlay().IsDashboardVisible().
	DashboardVisible bool `yaml:"dashboard_visible,omitempty"`

	// InputSources lists the user paths the runtime knows about
	// (e.g. "/user/hand/right"). Handles are assigned in order starting at 1.
	InputSources []string `yaml:"input_sources,omitempty"`

	// ActionSets lists action sets. A zero handle is auto-assigned.
	ActionSets []RigActionSet `yaml:"action_sets"`

	// Actions lists actions with their bound origins and binding info.
	Actions []RigAction `yaml:"actions"`

	// Origins maps origin handles to their localized names.
	Origins map[uint64]RigOrigin `yaml:"origins,omitempty"`

	// Failures injects runtime errors.
	Failures Failures `yaml:"failures,omitempty"`
}

// RigActionSet is one action set in a Rig.
type RigActionSet struct {
	Name   string `yaml:"name"`
	Handle uint64 `yaml:"handle,omitempty"`
}

// RigAction is one action in a Rig.
type RigAction struct {
	Name   string `yaml:"name"`
	Handle uint64 `yaml:"handle,omitempty"`

	// Origins is reported by ActionOrigins, zero entries included.
	Origins []uint64 `yaml:"origins,omitempty"`

	// Bindings is reported by ActionBindingInfo, in order.
	Bindings []RigBinding `yaml:"bindings,omitempty"`
}

// RigBinding is one binding info entry.
type RigBinding struct {
	ir.BindingInfoText `yaml:",inline"`

	// Corrupt names a field ("device_path", "input_path", "mode", "slot",
	// "source_type") whose buffer is overwritten with invalid UTF-8.
	Corrupt string `yaml:"corrupt,omitempty"`
}

// RigOrigin holds the localized names of one origin.
type RigOrigin struct {
	ControllerType string `yaml:"controller_type"`
	Hand           string `yaml:"hand"`
	InputSource    string `yaml:"input_source"`
}

// Failures maps runtime calls to the error name they should return
// (e.g. "NoSteam"). Empty means the call succeeds.
type Failures struct {
	UpdateActionState string `yaml:"update_action_state,omitempty"`
	ActionOrigins     string `yaml:"action_origins,omitempty"`
	ActionBindingInfo string `yaml:"action_binding_info,omitempty"`
	OpenBindingUI     string `yaml:"open_binding_ui,omitempty"`

	// LocalizedNames maps origin -> name kind ("controller_type", "hand",
	// "input_source") -> error name.
	LocalizedNames map[uint64]map[string]string `yaml:"localized_names,omitempty"`
}

// LoadRig reads and parses a rig YAML file.
// Unknown fields are rejected to catch typos.
func LoadRig(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig file: %w", err)
	}
	return ParseRig(data)
}

// ParseRig parses a rig from YAML bytes.
func ParseRig(data []byte) (*Rig, error) {
	var rig Rig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rig); err != nil {
		return nil, fmt.Errorf("failed to parse rig YAML: %w", err)
	}
	if err := rig.Validate(); err != nil {
		return nil, err
	}
	return &rig, nil
}

// Validate checks names are unique and failure names are known.
func (r *Rig) Validate() error {
	seen := make(map[string]bool)
	for i, s := range r.ActionSets {
		if s.Name == "" {
			return fmt.Errorf("action_sets[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("action_sets[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
	}
	seen = make(map[string]bool)
	for i, a := range r.Actions {
		if a.Name == "" {
			return fmt.Errorf("actions[%d]: name is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("actions[%d]: duplicate name %q", i, a.Name)
		}
		seen[a.Name] = true
		for j, b := range a.Bindings {
			if b.Corrupt != "" && !isBindingField(b.Corrupt) {
				return fmt.Errorf("actions[%d].bindings[%d]: unknown corrupt field %q", i, j, b.Corrupt)
			}
		}
	}
	return r.Failures.validate()
}

func isBindingField(name string) bool {
	switch name {
	case "device_path", "input_path", "mode", "slot", "source_type":
		return true
	}
	return false
}

// encode converts a RigBinding to the runtime's fixed-buffer form.
func (b RigBinding) encode() ir.InputBindingInfo {
	info := b.BindingInfoText.Encode()
	var buf *ir.FixedBuffer
	switch b.Corrupt {
	case "device_path":
		buf = &info.DevicePathName
	case "input_path":
		buf = &info.InputPathName
	case "mode":
		buf = &info.ModeName
	case "slot":
		buf = &info.SlotName
	case "source_type":
		buf = &info.InputSourceType
	}
	if buf != nil {
		buf[0] = 0xff
		buf[1] = 0xfe
		buf[2] = 0
	}
	return info
}
