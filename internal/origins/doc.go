// Package origins resolves the physical bindings ("origins") currently
// mapped to a VR input action and annotates each with human-readable
// metadata.
//
// RESOLUTION STEPS:
//
//  1. Look up the action set and the action by exact name in the registry.
//  2. Enter a runtime session (context + active-set list). No runtime means
//     no result; the resolver never connects on its own.
//  3. Refresh action state over the full active-set list.
//  4. Read the action's origins for the set and drop the zero sentinel.
//  5. Query controller type, hand and input source names per origin.
//  6. Read the action's binding info once.
//  7. Check alignment, decode the fixed text buffers, assemble one
//     ir.BindingOriginData per origin in origin order.
//
// Every failing runtime call fails the whole resolution exactly once; there
// are no retries. Per-origin name failures are handled by the configured
// MetadataPolicy. Failures are reported as *ResolveError with a Code so
// callers can tell "unknown name" from "runtime broke".
package origins
