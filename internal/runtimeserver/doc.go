// Package runtimeserver implements quotegen-runtime, a stand-in model runtime.
//
// It speaks the same protocol as a real inference service so the CLI and TUI
// can be developed and demonstrated without one:
//
//	GET  /healthz                         liveness and the loaded model
//	GET  /api/v1/models                   model catalog
//	POST /api/v1/models/{id}/load         activate a downloaded model
//	GET  /api/v1/models/{id}/download     websocket: progress frames, then done
//	GET  /api/v1/generate                 websocket: generate request, token frames, then done
//	GET  /metrics                         Prometheus metrics
//
// Models come from an embedded YAML catalog (or --catalog). Downloads are
// simulated in fixed steps and generation streams a canned quote for the
// prompt's category, word by word.
//
// # Lifecycle
//
// Run serves HTTP and, when enabled, advertises "_quotegen._tcp" over mDNS.
// Both run under one errgroup; cancelling the context shuts the server down,
// closes open streams, and waits for handlers to return.
package runtimeserver
