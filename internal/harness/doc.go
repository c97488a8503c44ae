// Package harness runs conformance scenarios for the binding-origin
// resolver against a simulated runtime.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: squeeze_origins
//	description: "What this scenario validates"
//	manifest: ../manifests/default.json
//	policy: omit_origin
//	rig:
//	  action_sets: [{ name: /actions/default, handle: 1 }]
//	  actions:
//	    - name: /actions/default/in/squeeze
//	      origins: [0, 42, 0, 99]
//	      bindings: [...]
//	  origins: { 42: { hand: Left Hand, ... } }
//	steps:
//	  - resolve:
//	      action_set: /actions/default
//	      action: /actions/default/in/squeeze
//	      expect: { outcome: OK, count: 2 }
//	  - fail: { op: ActionBindingInfo, code: IPCError }
//	  - fail_name: { origin: 42, kind: hand, code: InvalidHandle }
//	  - clear: ActionBindingInfo
//	  - switch_active_sets: { sets: [/actions/default] }
//	  - binding_ui: { show_on_desktop: true }
//	  - disconnect: true
//	assertions:
//	  - type: stable_digest
//	    action: /actions/default/in/squeeze
//
// # Assertion Types
//
//   - history_contains: a recorded resolution matches action and outcome
//   - history_order: actions were first resolved in the given order
//   - history_count: exactly N recorded resolutions match
//   - stable_digest: every successful resolution of an action agrees
//   - runtime_calls: a runtime call was made exactly N times
//
// # Deterministic Testing
//
// Every run uses a fresh simulated runtime, an in-memory history store,
// testutil.DeterministicClock and sequential history IDs, so traces are
// identical across runs and can be compared against golden files.
package harness
