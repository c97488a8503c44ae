package simvr

import (
	"fmt"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
)

// Runtime operation names used for failure injection and call counting.
const (
	OpSetActionManifestPath = "SetActionManifestPath"
	OpActionSetHandle       = "ActionSetHandle"
	OpActionHandle          = "ActionHandle"
	OpInputSourceHandle     = "InputSourceHandle"
	OpUpdateActionState     = "UpdateActionState"
	OpActionOrigins         = "ActionOrigins"
	OpOriginLocalizedName   = "OriginLocalizedName"
	OpActionBindingInfo     = "ActionBindingInfo"
	OpOpenBindingUI         = "OpenBindingUI"
)

var nameKinds = map[string]ir.InputString{
	"controller_type": ir.InputStringControllerType,
	"hand":            ir.InputStringHand,
	"input_source":    ir.InputStringInputSource,
}

func (f Failures) validate() error {
	for field, name := range map[string]string{
		"update_action_state": f.UpdateActionState,
		"action_origins":      f.ActionOrigins,
		"action_binding_info": f.ActionBindingInfo,
		"open_binding_ui":     f.OpenBindingUI,
	} {
		if name == "" {
			continue
		}
		if _, err := openvr.ParseInputErrorCode(name); err != nil {
			return fmt.Errorf("failures.%s: %w", field, err)
		}
	}
	for origin, kinds := range f.LocalizedNames {
		for kind, name := range kinds {
			if _, ok := nameKinds[kind]; !ok {
				return fmt.Errorf("failures.localized_names[%d]: unknown kind %q", origin, kind)
			}
			if _, err := openvr.ParseInputErrorCode(name); err != nil {
				return fmt.Errorf("failures.localized_names[%d].%s: %w", origin, kind, err)
			}
		}
	}
	return nil
}

// failureTable is the parsed form of Failures.
type failureTable struct {
	ops   map[string]openvr.InputErrorCode
	names map[ir.OriginHandle]map[ir.InputString]openvr.InputErrorCode
}

func newFailureTable(f Failures) failureTable {
	t := failureTable{
		ops:   make(map[string]openvr.InputErrorCode),
		names: make(map[ir.OriginHandle]map[ir.InputString]openvr.InputErrorCode),
	}
	for op, name := range map[string]string{
		OpUpdateActionState: f.UpdateActionState,
		OpActionOrigins:     f.ActionOrigins,
		OpActionBindingInfo: f.ActionBindingInfo,
		OpOpenBindingUI:     f.OpenBindingUI,
	} {
		if code, err := openvr.ParseInputErrorCode(name); err == nil && name != "" {
			t.ops[op] = code
		}
	}
	for origin, kinds := range f.LocalizedNames {
		for kind, name := range kinds {
			code, err := openvr.ParseInputErrorCode(name)
			if err != nil {
				continue
			}
			t.setName(ir.OriginHandle(origin), nameKinds[kind], code)
		}
	}
	return t
}

func (t failureTable) setName(origin ir.OriginHandle, kind ir.InputString, code openvr.InputErrorCode) {
	m, ok := t.names[origin]
	if !ok {
		m = make(map[ir.InputString]openvr.InputErrorCode)
		t.names[origin] = m
	}
	m[kind] = code
}

// ParseNameKind converts a localized name kind ("controller_type", "hand",
// "input_source") to its InputString flag.
func ParseNameKind(kind string) (ir.InputString, error) {
	which, ok := nameKinds[kind]
	if !ok {
		return 0, fmt.Errorf("unknown localized name kind %q", kind)
	}
	return which, nil
}
