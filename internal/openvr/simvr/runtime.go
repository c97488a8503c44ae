package simvr

import (
	"strings"
	"sync"

	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
)

// Runtime is a simulated VR runtime. It implements openvr.Context,
// openvr.Input and openvr.Overlay.
type Runtime struct {
	mu sync.Mutex

	dashboardVisible bool
	manifestPath     string

	sets    map[string]ir.ActionSetHandle
	actions map[string]ir.ActionHandle
	sources map[string]ir.InputSourceHandle

	origins  map[ir.ActionHandle][]ir.OriginHandle
	bindings map[ir.ActionHandle][]ir.InputBindingInfo
	names    map[ir.OriginHandle]RigOrigin

	failures failureTable

	// active is the last set list passed to UpdateActionState; nil until
	// the first successful refresh.
	active   []ir.ActiveActionSet
	calls    map[string]int
	uiOpened []BindingUIRequest
}

// BindingUIRequest records one OpenBindingUI call.
type BindingUIRequest struct {
	AppKey        string
	ActionSet     ir.ActionSetHandle
	Device        ir.InputSourceHandle
	ShowOnDesktop bool
}

var (
	_ openvr.Context = (*Runtime)(nil)
	_ openvr.Input   = (*Runtime)(nil)
	_ openvr.Overlay = (*Runtime)(nil)
)

// New builds a Runtime from a rig. Zero handles in the rig are assigned
// sequentially after the highest explicit handle.
func New(rig *Rig) *Runtime {
	r := &Runtime{
		dashboardVisible: rig.DashboardVisible,
		sets:             make(map[string]ir.ActionSetHandle),
		actions:          make(map[string]ir.ActionHandle),
		sources:          make(map[string]ir.InputSourceHandle),
		origins:          make(map[ir.ActionHandle][]ir.OriginHandle),
		bindings:         make(map[ir.ActionHandle][]ir.InputBindingInfo),
		names:            make(map[ir.OriginHandle]RigOrigin),
		failures:         newFailureTable(rig.Failures),
		calls:            make(map[string]int),
	}

	next := uint64(1)
	for _, s := range rig.ActionSets {
		if s.Handle >= next {
			next = s.Handle + 1
		}
	}
	for _, a := range rig.Actions {
		if a.Handle >= next {
			next = a.Handle + 1
		}
	}

	for _, s := range rig.ActionSets {
		h := s.Handle
		if h == 0 {
			h = next
			next++
		}
		r.sets[s.Name] = ir.ActionSetHandle(h)
	}

	for _, a := range rig.Actions {
		h := a.Handle
		if h == 0 {
			h = next
			next++
		}
		handle := ir.ActionHandle(h)
		r.actions[a.Name] = handle

		origins := make([]ir.OriginHandle, len(a.Origins))
		for i, o := range a.Origins {
			origins[i] = ir.OriginHandle(o)
		}
		r.origins[handle] = origins

		infos := make([]ir.InputBindingInfo, len(a.Bindings))
		for i, b := range a.Bindings {
			infos[i] = b.encode()
		}
		r.bindings[handle] = infos
	}

	for i, path := range rig.InputSources {
		r.sources[path] = ir.InputSourceHandle(i + 1)
	}

	for o, names := range rig.Origins {
		r.names[ir.OriginHandle(o)] = names
	}

	return r
}

// Input implements openvr.Context.
func (r *Runtime) Input() openvr.Input { return r }

// Overlay implements openvr.Context.
func (r *Runtime) Overlay() openvr.Overlay { return r }

// IsDashboardVisible implements openvr.Overlay.
func (r *Runtime) IsDashboardVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dashboardVisible
}

// SetDashboardVisible changes the reported dashboard state.
func (r *Runtime) SetDashboardVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dashboardVisible = visible
}

// SetActionManifestPath implements openvr.Input.
func (r *Runtime) SetActionManifestPath(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpSetActionManifestPath]++
	r.manifestPath = path
	return nil
}

// ManifestPath returns the last path passed to SetActionManifestPath.
func (r *Runtime) ManifestPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manifestPath
}

// ActionSetHandle implements openvr.Input.
func (r *Runtime) ActionSetHandle(name string) (ir.ActionSetHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpActionSetHandle]++
	h, ok := r.sets[name]
	if !ok {
		return 0, openvr.NewInputError(OpActionSetHandle, openvr.InputErrorNameNotFound)
	}
	return h, nil
}

// ActionHandle implements openvr.Input.
func (r *Runtime) ActionHandle(name string) (ir.ActionHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpActionHandle]++
	h, ok := r.actions[name]
	if !ok {
		return 0, openvr.NewInputError(OpActionHandle, openvr.InputErrorNameNotFound)
	}
	return h, nil
}

// InputSourceHandle implements openvr.Input.
func (r *Runtime) InputSourceHandle(path string) (ir.InputSourceHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpInputSourceHandle]++
	h, ok := r.sources[path]
	if !ok {
		return 0, openvr.NewInputError(OpInputSourceHandle, openvr.InputErrorNameNotFound)
	}
	return h, nil
}

// UpdateActionState implements openvr.Input.
// Fails with NoActiveActionSet when sets is empty, like the real runtime.
func (r *Runtime) UpdateActionState(sets []ir.ActiveActionSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpUpdateActionState]++
	if code, ok := r.failures.ops[OpUpdateActionState]; ok {
		return openvr.NewInputError(OpUpdateActionState, code)
	}
	if len(sets) == 0 {
		return openvr.NewInputError(OpUpdateActionState, openvr.InputErrorNoActiveActionSet)
	}
	for _, s := range sets {
		if !r.knownSet(s.ActionSet) {
			return openvr.NewInputError(OpUpdateActionState, openvr.InputErrorInvalidHandle)
		}
	}
	r.active = append([]ir.ActiveActionSet(nil), sets...)
	return nil
}

// ActionOrigins implements openvr.Input.
// Origin state is only available after a successful UpdateActionState.
func (r *Runtime) ActionOrigins(set ir.ActionSetHandle, action ir.ActionHandle) ([]ir.OriginHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpActionOrigins]++
	if code, ok := r.failures.ops[OpActionOrigins]; ok {
		return nil, openvr.NewInputError(OpActionOrigins, code)
	}
	if !r.knownSet(set) {
		return nil, openvr.NewInputError(OpActionOrigins, openvr.InputErrorInvalidHandle)
	}
	origins, ok := r.origins[action]
	if !ok {
		return nil, openvr.NewInputError(OpActionOrigins, openvr.InputErrorInvalidHandle)
	}
	if r.active == nil {
		return nil, openvr.NewInputError(OpActionOrigins, openvr.InputErrorNoData)
	}
	return append([]ir.OriginHandle(nil), origins...), nil
}

// OriginLocalizedName implements openvr.Input.
func (r *Runtime) OriginLocalizedName(origin ir.OriginHandle, which ir.InputString) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpOriginLocalizedName]++
	if kinds, ok := r.failures.names[origin]; ok {
		if code, ok := kinds[which]; ok {
			return "", openvr.NewInputError(OpOriginLocalizedName, code)
		}
	}
	names, ok := r.names[origin]
	if !ok {
		return "", openvr.NewInputError(OpOriginLocalizedName, openvr.InputErrorInvalidHandle)
	}
	switch which {
	case ir.InputStringControllerType:
		return names.ControllerType, nil
	case ir.InputStringHand:
		return names.Hand, nil
	case ir.InputStringInputSource:
		return names.InputSource, nil
	default:
		return joinNames(names, which), nil
	}
}

func joinNames(names RigOrigin, which ir.InputString) string {
	var parts []string
	if which&ir.InputStringHand != 0 && names.Hand != "" {
		parts = append(parts, names.Hand)
	}
	if which&ir.InputStringControllerType != 0 && names.ControllerType != "" {
		parts = append(parts, names.ControllerType)
	}
	if which&ir.InputStringInputSource != 0 && names.InputSource != "" {
		parts = append(parts, names.InputSource)
	}
	return strings.Join(parts, " ")
}

// ActionBindingInfo implements openvr.Input.
func (r *Runtime) ActionBindingInfo(action ir.ActionHandle) ([]ir.InputBindingInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpActionBindingInfo]++
	if code, ok := r.failures.ops[OpActionBindingInfo]; ok {
		return nil, openvr.NewInputError(OpActionBindingInfo, code)
	}
	infos, ok := r.bindings[action]
	if !ok {
		return nil, openvr.NewInputError(OpActionBindingInfo, openvr.InputErrorInvalidHandle)
	}
	return append([]ir.InputBindingInfo(nil), infos...), nil
}

// OpenBindingUI implements openvr.Input.
func (r *Runtime) OpenBindingUI(appKey string, set ir.ActionSetHandle, device ir.InputSourceHandle, showOnDesktop bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[OpOpenBindingUI]++
	if code, ok := r.failures.ops[OpOpenBindingUI]; ok {
		return openvr.NewInputError(OpOpenBindingUI, code)
	}
	r.uiOpened = append(r.uiOpened, BindingUIRequest{
		AppKey:        appKey,
		ActionSet:     set,
		Device:        device,
		ShowOnDesktop: showOnDesktop,
	})
	return nil
}

func (r *Runtime) knownSet(h ir.ActionSetHandle) bool {
	for _, s := range r.sets {
		if s == h {
			return true
		}
	}
	return false
}
