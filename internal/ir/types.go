package ir

// ActionSetHandle is the runtime's opaque handle for a registered action set.
type ActionSetHandle uint64

// ActionHandle is the runtime's opaque handle for a registered action.
type ActionHandle uint64

// OriginHandle identifies one physical input source (a button, trigger or pad
// on a specific device) bound to an action.
type OriginHandle uint64

// NoOrigin is the sentinel the runtime uses for "no binding".
// It must be filtered out before any per-origin query.
const NoOrigin OriginHandle = 0

// InputSourceHandle identifies a user path such as "/user/hand/right".
type InputSourceHandle uint64

// ActionSet is a named group of actions that are activated together.
// Immutable after registration.
type ActionSet struct {
	Name   string          `json:"name"`
	Handle ActionSetHandle `json:"handle"`
}

// Action is a named logical input (e.g. "/actions/default/in/squeeze").
// Immutable after registration.
type Action struct {
	Name   string       `json:"name"`
	Handle ActionHandle `json:"handle"`
}

// ActiveActionSet is one entry of the active-set list passed to the runtime
// when refreshing action state.
type ActiveActionSet struct {
	// ActionSet is the handle of the set to activate.
	ActionSet ActionSetHandle `json:"action_set"`

	// RestrictedToDevice limits the set to one input source (0 = any device).
	RestrictedToDevice InputSourceHandle `json:"restricted_to_device,omitempty"`

	// SecondaryActionSet is used when RestrictedToDevice is set and the
	// device's other hand should use a different set.
	SecondaryActionSet ActionSetHandle `json:"secondary_action_set,omitempty"`

	// Priority orders overlapping sets; higher wins.
	Priority int32 `json:"priority,omitempty"`
}

// InputString selects which parts of an origin's localized name the runtime
// should return. Values are bit flags and may be combined.
type InputString uint32

const (
	InputStringHand           InputString = 0x01
	InputStringControllerType InputString = 0x02
	InputStringInputSource    InputString = 0x04
	InputStringAll            InputString = 0xFFFFFFFF
)

// String returns the short name used in logs and error messages.
func (s InputString) String() string {
	switch s {
	case InputStringHand:
		return "hand"
	case InputStringControllerType:
		return "controller_type"
	case InputStringInputSource:
		return "input_source"
	case InputStringAll:
		return "all"
	default:
		return "mixed"
	}
}

// LocalizedNameKinds lists the per-origin name projections a resolver
// collects, in the order they are queried.
var LocalizedNameKinds = []InputString{
	InputStringControllerType,
	InputStringHand,
	InputStringInputSource,
}
