// Package config provides user configuration management for quotegen.
//
// This package manages a YAML configuration file holding the runtime address,
// discovery settings, generation defaults, and UI preferences. The file follows
// OS-specific conventions for its location.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/quotegen/config.yaml or $HOME/.config/quotegen/config.yaml
//   - macOS: $HOME/.config/quotegen/config.yaml
//   - Windows: %LOCALAPPDATA%\quotegen\config.yaml
//
// Logs written while the TUI is running go to GetLogPath, under the state
// directory ($XDG_STATE_HOME/quotegen or $HOME/.local/state/quotegen).
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := runtime.NewClient(registry.RuntimeAddress())
//	...
//	registry.SetLastModel("tiny-1b")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// The QUOTEGEN_RUNTIME environment variable overrides runtime.address.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
