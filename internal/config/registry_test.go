package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/quotegen/internal/quote"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "quotegen") {
		t.Errorf("GetConfigDir() = %v, should contain 'quotegen'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDirHonoursXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join(tmpDir, "quotegen") {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, filepath.Join(tmpDir, "quotegen"))
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestGetLogPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("state directory is the config directory on Windows")
	}
	tmpDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmpDir)

	logPath, err := GetLogPath()
	if err != nil {
		t.Fatalf("GetLogPath() error = %v", err)
	}
	if logPath != filepath.Join(tmpDir, "quotegen", "quotegen.log") {
		t.Errorf("GetLogPath() = %v", logPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Runtime == nil || reg.Generation == nil || reg.Preferences == nil {
		t.Fatal("NewRegistry() should populate every section")
	}

	if !reg.Runtime.Discover {
		t.Error("NewRegistry().Runtime.Discover should be true by default")
	}

	if reg.DefaultCategory() != quote.Random {
		t.Errorf("DefaultCategory() = %v, want random", reg.DefaultCategory())
	}

	if reg.GenerateTimeout() != 60*time.Second {
		t.Errorf("GenerateTimeout() = %v, want 60s", reg.GenerateTimeout())
	}

	if reg.Theme() != ThemeDark {
		t.Errorf("Theme() = %v, want dark", reg.Theme())
	}

	if err := reg.Validate(); err != nil {
		t.Errorf("default registry should be valid: %v", err)
	}
}

func TestRegistryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Registry)
		wantErr bool
	}{
		{"defaults", func(r *Registry) {}, false},
		{"wrong version", func(r *Registry) { r.Version = 2 }, true},
		{"unknown category", func(r *Registry) { r.Generation.DefaultCategory = "sports" }, true},
		{"category by label", func(r *Registry) { r.Generation.DefaultCategory = "Wisdom" }, false},
		{"negative timeout", func(r *Registry) { r.Generation.TimeoutSeconds = -1 }, true},
		{"negative load timeout", func(r *Registry) { r.Runtime.LoadTimeoutSeconds = -5 }, true},
		{"unknown theme", func(r *Registry) { r.Preferences.Theme = "neon" }, true},
		{"light theme", func(r *Registry) { r.Preferences.Theme = ThemeLight }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			tt.mutate(reg)
			err := reg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRuntimeAddressEnvOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Runtime.Address = "10.0.0.5:8765"

	t.Setenv(RuntimeEnvVar, "")
	if got := reg.RuntimeAddress(); got != "10.0.0.5:8765" {
		t.Errorf("RuntimeAddress() = %v, want file value", got)
	}
	if reg.ShouldDiscover() {
		t.Error("ShouldDiscover() should be false when an address is configured")
	}

	t.Setenv(RuntimeEnvVar, "runtime.local:9000")
	if got := reg.RuntimeAddress(); got != "runtime.local:9000" {
		t.Errorf("RuntimeAddress() = %v, want env value", got)
	}

	t.Setenv(RuntimeEnvVar, "")
	reg.Runtime.Address = ""
	if !reg.ShouldDiscover() {
		t.Error("ShouldDiscover() should be true with discovery on and no address")
	}
}

func TestPreferredModel(t *testing.T) {
	reg := NewRegistry()
	if reg.PreferredModel() != "" {
		t.Error("PreferredModel() should be empty before any load")
	}

	reg.SetLastModel("tiny-1b")
	if reg.PreferredModel() != "tiny-1b" {
		t.Errorf("PreferredModel() = %v, want tiny-1b", reg.PreferredModel())
	}

	reg.Preferences.AutoLoadLastModel = false
	if reg.PreferredModel() != "" {
		t.Error("PreferredModel() should be empty when auto-load is off")
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	testConfigPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.Runtime.Address = "192.168.1.50:8765"
	reg.Generation.DefaultCategory = quote.Wisdom.String()
	reg.Generation.MaxTokens = 48
	reg.SetTheme(ThemeLight)
	reg.SetLastModel("small-3b")

	if err := reg.SaveTo(testConfigPath); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Quotegen Configuration File") {
		t.Errorf("saved config is missing header:\n%s", data)
	}
	if _, err := os.Stat(testConfigPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should be renamed away")
	}

	loaded, err := LoadRegistryFrom(testConfigPath)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	if loaded.Runtime.Address != "192.168.1.50:8765" {
		t.Errorf("Loaded address = %v", loaded.Runtime.Address)
	}
	if loaded.DefaultCategory() != quote.Wisdom {
		t.Errorf("Loaded category = %v, want wisdom", loaded.DefaultCategory())
	}
	if loaded.MaxTokens() != 48 {
		t.Errorf("Loaded max tokens = %v, want 48", loaded.MaxTokens())
	}
	if loaded.Theme() != ThemeLight {
		t.Errorf("Loaded theme = %v, want light", loaded.Theme())
	}
	if loaded.PreferredModel() != "small-3b" {
		t.Errorf("Loaded last model = %v, want small-3b", loaded.PreferredModel())
	}
}

func TestLoadRegistryFromMissingFile(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Version != 1 || reg.Runtime == nil {
		t.Error("missing file should yield a default registry")
	}
}

func TestLoadRegistryFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\nruntime:\n  address: localhost:9999\n  discover: false\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Runtime.Address != "localhost:9999" || reg.Runtime.Discover {
		t.Errorf("runtime section not loaded: %+v", reg.Runtime)
	}
	if reg.Generation == nil || reg.Preferences == nil {
		t.Error("missing sections should receive defaults")
	}
}

func TestLoadRegistryFromInvalidFile(t *testing.T) {
	tests := map[string]string{
		"bad yaml":    "version: [1\n",
		"bad version": "version: 7\n",
		"bad theme":   "version: 1\npreferences:\n  theme: neon\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("LoadRegistryFrom() should fail")
			}
		})
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := CreateDefaultConfig(false)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Runtime.Address != DefaultRuntimeAddress {
		t.Errorf("default address = %v", reg.Runtime.Address)
	}

	if _, err := CreateDefaultConfig(false); err == nil {
		t.Error("CreateDefaultConfig() should refuse to overwrite")
	}
	if _, err := CreateDefaultConfig(true); err != nil {
		t.Errorf("CreateDefaultConfig(force) error = %v", err)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
