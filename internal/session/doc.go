// Package session holds the quote generator's application state.
//
// A Session sits between a user interface and a runtime.Runtime. Each
// operation issues at most one runtime call, folds the result into the
// state, and publishes a fresh Snapshot to every subscriber. Snapshots are
// deep copies and may be read from any goroutine.
//
// Status text is always a readable sentence; runtime failures never
// propagate as panics and never leave progress indicators set.
package session
