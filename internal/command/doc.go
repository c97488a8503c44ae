// Package command is the request surface of vrorigins: the operations a
// front end invokes against a connected VR runtime.
//
// A Service ties together the shared runtime state, the origin resolver and
// the optional history store. It also owns session bring-up and teardown
// (Connect, Disconnect), which install the runtime context and register the
// action manifest.
//
// Failures surface the way front ends expect them: GetBindingOrigins yields
// no result, LaunchBindingConfiguration only logs, IsDashboardVisible
// reports false. Callers that need the failure kind use Resolve.
package command
