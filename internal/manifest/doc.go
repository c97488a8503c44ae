// Package manifest loads SteamVR-style action manifests (actions.json) and
// registers their action sets and actions with the shared state.
//
// A manifest is parsed as CUE (JSON is valid CUE), unified with an embedded
// schema and decoded into Go types. Registration asks the runtime for each
// name's handle and bulk-loads the registry in declaration order.
package manifest
