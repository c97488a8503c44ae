// Package vrstate owns the process-wide state shared by every resolver call:
// the action registry (action sets and actions), the active-set list and the
// runtime context slot.
//
// CONCURRENCY MODEL:
//
// Each of the four slots has its own exclusive lock. Locks are acquired with
// a context so a queued caller can give up while waiting; once held, a lock
// is released by defer on every exit path, including panics in the callback.
// Access is scoped: callers receive the guarded value inside a closure and
// must not retain it (or anything derived from a runtime handle) after the
// closure returns.
//
// LOCK ORDER:
//
//   - Registry slots (action sets, actions) are taken one at a time by
//     readers and released before a session is entered.
//   - WithSession takes the context slot first, then the active-set slot,
//     and holds both for the duration of the callback.
//   - Nothing takes the context slot while holding the active-set slot.
//
// Following this order keeps concurrent resolver calls deadlock free.
package vrstate
