// Package ir provides the shared value types for vrorigins.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps handles, binding records
// and the canonical encoding in one foundational layer.
//
// Key design constraints:
//   - Runtime handles are opaque uint64 values; zero means "no handle"
//   - Text coming from the runtime is decoded through DecodeFixed, never cast
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
