// Package store provides SQLite-backed storage for resolution history.
//
// Every resolver call made through the command surface is appended as one
// row: the queried names, the metadata policy in force, the outcome code,
// and for successful calls the canonical JSON records and their digest.
//
// Ordering uses the seq column (logical clock), never timestamps. All list
// queries order by seq ASC, id ASC COLLATE BINARY so repeated reads return
// identical results.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - single open connection (one writer)
package store
