package simvr

import (
	"github.com/roach88/vrorigins/internal/ir"
	"github.com/roach88/vrorigins/internal/openvr"
)

// The methods in this file let tests reshape a running simulator.

// Fail makes op return code until ClearFailure is called.
func (r *Runtime) Fail(op string, code openvr.InputErrorCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures.ops[op] = code
}

// ClearFailure removes an injected failure for op.
func (r *Runtime) ClearFailure(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures.ops, op)
}

// FailLocalizedName makes one name query for one origin fail.
func (r *Runtime) FailLocalizedName(origin ir.OriginHandle, which ir.InputString, code openvr.InputErrorCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures.setName(origin, which, code)
}

// SetOrigins replaces the origins reported for an action.
func (r *Runtime) SetOrigins(action ir.ActionHandle, origins ...ir.OriginHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origins[action] = append([]ir.OriginHandle(nil), origins...)
}

// SetBindingInfo replaces the binding info reported for an action.
func (r *Runtime) SetBindingInfo(action ir.ActionHandle, infos ...ir.InputBindingInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[action] = append([]ir.InputBindingInfo(nil), infos...)
}

// SetOriginNames replaces the localized names of an origin.
func (r *Runtime) SetOriginNames(origin ir.OriginHandle, names RigOrigin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[origin] = names
}

// Calls returns how many times op was invoked.
func (r *Runtime) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

// ActiveSets returns the set list from the last successful refresh.
func (r *Runtime) ActiveSets() []ir.ActiveActionSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ir.ActiveActionSet(nil), r.active...)
}

// BindingUIRequests returns every successful OpenBindingUI call in order.
func (r *Runtime) BindingUIRequests() []BindingUIRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BindingUIRequest(nil), r.uiOpened...)
}
