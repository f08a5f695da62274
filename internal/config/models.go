package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/muurk/quotegen/internal/quote"
)

// RuntimeEnvVar overrides the configured runtime address when set
const RuntimeEnvVar = "QUOTEGEN_RUNTIME"

// Theme names accepted by preferences.theme
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Registry represents the entire user configuration file.
// It stores connection settings and preferences; quotes are never persisted.
type Registry struct {
	Version     int              `yaml:"version"`
	Runtime     *RuntimePrefs    `yaml:"runtime,omitempty"`
	Generation  *GenerationPrefs `yaml:"generation,omitempty"`
	Preferences *Preferences     `yaml:"preferences,omitempty"`
}

// RuntimePrefs describes how to reach the model runtime.
type RuntimePrefs struct {
	Address            string `yaml:"address,omitempty"`    // host:port or URL; empty means default or discovery
	Discover           bool   `yaml:"discover"`             // Browse mDNS when no address is set
	DiscoverTimeout    int    `yaml:"discover_timeout"`     // mDNS browse timeout in seconds
	LoadTimeoutSeconds int    `yaml:"load_timeout_seconds"` // 0 disables the load timeout
}

// GenerationPrefs controls quote generation.
type GenerationPrefs struct {
	DefaultCategory string `yaml:"default_category"` // Category key, e.g. "wisdom"
	TimeoutSeconds  int    `yaml:"timeout_seconds"`  // 0 disables the generation timeout
	MaxTokens       int    `yaml:"max_tokens"`       // Token budget sent with each request
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Theme             string `yaml:"theme"`                // "dark" or "light"
	LastModel         string `yaml:"last_model,omitempty"` // Most recently loaded model id
	AutoLoadLastModel bool   `yaml:"auto_load_last_model"` // Load LastModel on start-up if downloaded
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	r := &Registry{Version: 1}
	r.applyDefaults()
	return r
}

// applyDefaults fills any missing section with default values.
func (r *Registry) applyDefaults() {
	if r.Runtime == nil {
		r.Runtime = &RuntimePrefs{
			Discover:           true,
			DiscoverTimeout:    5,
			LoadTimeoutSeconds: 120,
		}
	}
	if r.Generation == nil {
		r.Generation = &GenerationPrefs{
			DefaultCategory: quote.Random.String(),
			TimeoutSeconds:  60,
			MaxTokens:       64,
		}
	}
	if r.Preferences == nil {
		r.Preferences = &Preferences{
			Theme:             ThemeDark,
			AutoLoadLastModel: true,
		}
	}
}

// Validate reports the first invalid setting.
func (r *Registry) Validate() error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", r.Version)
	}
	if r.Generation != nil && r.Generation.DefaultCategory != "" {
		if _, err := quote.ParseCategory(r.Generation.DefaultCategory); err != nil {
			return fmt.Errorf("generation.default_category: %w", err)
		}
	}
	if r.Generation != nil && (r.Generation.TimeoutSeconds < 0 || r.Generation.MaxTokens < 0) {
		return fmt.Errorf("generation: timeout_seconds and max_tokens must not be negative")
	}
	if r.Runtime != nil && (r.Runtime.DiscoverTimeout < 0 || r.Runtime.LoadTimeoutSeconds < 0) {
		return fmt.Errorf("runtime: timeouts must not be negative")
	}
	if r.Preferences != nil {
		switch r.Preferences.Theme {
		case "", ThemeDark, ThemeLight:
		default:
			return fmt.Errorf("preferences.theme: unknown theme %q", r.Preferences.Theme)
		}
	}
	return nil
}

// RuntimeAddress returns the runtime address, preferring QUOTEGEN_RUNTIME over the file.
func (r *Registry) RuntimeAddress() string {
	if env := strings.TrimSpace(os.Getenv(RuntimeEnvVar)); env != "" {
		return env
	}
	if r.Runtime == nil {
		return ""
	}
	return r.Runtime.Address
}

// ShouldDiscover reports whether start-up should browse mDNS for a runtime.
func (r *Registry) ShouldDiscover() bool {
	return r.RuntimeAddress() == "" && r.Runtime != nil && r.Runtime.Discover
}

// DefaultCategory returns the configured category, falling back to random.
func (r *Registry) DefaultCategory() quote.Category {
	if r.Generation == nil {
		return quote.Random
	}
	c, _ := quote.ParseCategory(r.Generation.DefaultCategory)
	return c
}

// GenerateTimeout returns the per-generation timeout, zero when disabled.
func (r *Registry) GenerateTimeout() time.Duration {
	if r.Generation == nil {
		return 0
	}
	return time.Duration(r.Generation.TimeoutSeconds) * time.Second
}

// LoadTimeout returns the per-load timeout, zero when disabled.
func (r *Registry) LoadTimeout() time.Duration {
	if r.Runtime == nil {
		return 0
	}
	return time.Duration(r.Runtime.LoadTimeoutSeconds) * time.Second
}

// DiscoverTimeout returns the mDNS browse timeout.
func (r *Registry) DiscoverTimeout() time.Duration {
	if r.Runtime == nil || r.Runtime.DiscoverTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.Runtime.DiscoverTimeout) * time.Second
}

// MaxTokens returns the generation token budget, zero meaning the client default.
func (r *Registry) MaxTokens() int {
	if r.Generation == nil {
		return 0
	}
	return r.Generation.MaxTokens
}

// Theme returns the configured theme name.
func (r *Registry) Theme() string {
	if r.Preferences == nil || r.Preferences.Theme == "" {
		return ThemeDark
	}
	return r.Preferences.Theme
}

// SetTheme records the theme chosen in the TUI.
func (r *Registry) SetTheme(theme string) {
	r.applyDefaults()
	r.Preferences.Theme = theme
}

// PreferredModel returns the model to auto-load, or "" when auto-load is off.
func (r *Registry) PreferredModel() string {
	if r.Preferences == nil || !r.Preferences.AutoLoadLastModel {
		return ""
	}
	return r.Preferences.LastModel
}

// SetLastModel records the most recently loaded model.
func (r *Registry) SetLastModel(modelID string) {
	r.applyDefaults()
	r.Preferences.LastModel = modelID
}
