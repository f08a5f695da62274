// Package runtime is the boundary between QuoteGen and the model runtime that
// hosts language models.
//
// The Runtime interface covers the four capabilities the application needs:
// enumerating models, downloading one with progress, loading it, and streaming
// generated text. Client implements it against a runtime daemon:
//
//	GET  /healthz                         liveness
//	GET  /api/v1/models                   {"models":[...]}
//	POST /api/v1/models/{id}/load         {"loaded":true}
//	WS   /api/v1/models/{id}/download     progress, done | error frames
//	WS   /api/v1/generate                 generate request, then token, done | error frames
//
// Stream frames are JSON objects with a "type" field (see Frame).
//
// # Error Handling
//
// Every failure is returned as *Error with an ErrorType, so callers can
// distinguish network problems from unknown models or broken streams:
//
//	models, err := client.ListModels(ctx)
//	if runtime.IsNetworkError(err) {
//	    for _, hint := range runtime.TroubleshootingHints(err) {
//	        fmt.Println(" •", hint)
//	    }
//	}
//
// Idempotent requests are retried with exponential backoff. Cancelling the
// context closes any open stream.
package runtime
