// Package simvr is an in-process VR runtime simulator.
//
// A Runtime is built from a Rig: a YAML description of the action sets,
// actions, origins and binding info a real runtime would report, plus
// optional failure injection per runtime call. The simulator implements
// openvr.Context so the resolver, the CLI and the conformance harness can
// run without a headset.
//
// Thread-safety: all Runtime methods are safe for concurrent use.
package simvr
