// Package openvr defines the boundary between vrorigins and a VR input
// runtime.
//
// The runtime is consumed through small interfaces (Context, Input, Overlay)
// so the resolver never depends on a concrete binding. Production code wires
// a native implementation; tests and the CLI use the in-process simulator in
// package simvr.
//
// All Input methods are synchronous and may block for as long as the runtime
// chooses. Callers treat them as non-cancellable.
package openvr
