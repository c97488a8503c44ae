package openvr

import "github.com/roach88/vrorigins/internal/ir"

// Context is a live connection to the VR runtime.
// A Context is owned by the session collaborator that created it and is
// shared read-only with everyone else.
type Context interface {
	// Input returns the input subsystem.
	Input() Input

	// Overlay returns the overlay subsystem.
	Overlay() Overlay
}

// Input is the subset of the runtime's input API used by vrorigins.
type Input interface {
	// SetActionManifestPath points the runtime at an action manifest file.
	SetActionManifestPath(path string) error

	// ActionSetHandle returns the handle for an action set path
	// such as "/actions/default".
	ActionSetHandle(name string) (ir.ActionSetHandle, error)

	// ActionHandle returns the handle for an action path
	// such as "/actions/default/in/squeeze".
	ActionHandle(name string) (ir.ActionHandle, error)

	// InputSourceHandle returns the handle for a user path such as
	// "/user/hand/right".
	InputSourceHandle(path string) (ir.InputSourceHandle, error)

	// UpdateActionState refreshes the runtime's view of every action in the
	// given active sets. Origin state is only guaranteed current right after
	// this call.
	UpdateActionState(sets []ir.ActiveActionSet) error

	// ActionOrigins returns the origins bound to an action within a set.
	// The result may contain NoOrigin entries.
	ActionOrigins(set ir.ActionSetHandle, action ir.ActionHandle) ([]ir.OriginHandle, error)

	// OriginLocalizedName returns the localized name parts selected by
	// which for one origin.
	OriginLocalizedName(origin ir.OriginHandle, which ir.InputString) (string, error)

	// ActionBindingInfo returns one entry per origin currently bound to the
	// action, in runtime-defined order.
	ActionBindingInfo(action ir.ActionHandle) ([]ir.InputBindingInfo, error)

	// OpenBindingUI opens the runtime's binding configuration UI.
	// An empty appKey selects the calling application.
	OpenBindingUI(appKey string, set ir.ActionSetHandle, device ir.InputSourceHandle, showOnDesktop bool) error
}

// Overlay is the subset of the runtime's overlay API used by vrorigins.
type Overlay interface {
	// IsDashboardVisible reports whether the runtime dashboard is open.
	IsDashboardVisible() bool
}
