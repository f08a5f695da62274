// Package logging provides structured logging for QuoteGen binaries.
//
// It wraps a package-level zap logger with helpers for the events the
// application cares about: runtime calls, stream frames, session state
// changes and the daemon's HTTP requests.
//
// # Silent by Default
//
// Nothing is logged unless a level is passed explicitly (--log-level) or set
// in QUOTEGEN_LOG_LEVEL. Levels are debug, info, warn and error.
//
// # Outputs
//
// CLI subcommands and quotegen-runtime log to stderr in console format:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The interactive terminal UI owns the screen, so it logs JSON to a rotated
// file instead (lumberjack keeps a few small backups):
//
//	logging.InitializeToFile(logLevel, "/home/me/.local/state/quotegen/quotegen.log")
//
// # Structured Fields
//
//	logging.LogRuntimeCall("load", "tiny-1b", started, err)
//	logging.LogStreamFrame("generate", "received", "token", 42)
package logging
