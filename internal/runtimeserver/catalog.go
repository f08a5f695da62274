package runtimeserver

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/quotegen/internal/runtime"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// catalogFile is the on-disk layout of a model catalog
type catalogFile struct {
	Models []runtime.ModelInfo `yaml:"models"`
}

// Catalog holds the models the daemon offers and which one is loaded.
// It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	models []runtime.ModelInfo
	loaded string
}

// LoadCatalog reads a catalog from path, or the embedded default when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog and checks ids are present and unique
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("catalog lists no models")
	}

	seen := make(map[string]bool, len(file.Models))
	for i, m := range file.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate model id %q", m.ID)
		}
		seen[m.ID] = true
		if file.Models[i].Name == "" {
			file.Models[i].Name = m.ID
		}
	}

	return &Catalog{models: file.Models}, nil
}

// List returns a copy of every model in catalog order
func (c *Catalog) List() []runtime.ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]runtime.ModelInfo(nil), c.models...)
}

// Get looks up a model by id
func (c *Catalog) Get(id string) (runtime.ModelInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.models {
		if m.ID == id {
			return m, true
		}
	}
	return runtime.ModelInfo{}, false
}

// MarkDownloaded flags a model as available locally
func (c *Catalog) MarkDownloaded(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.models {
		if c.models[i].ID == id {
			c.models[i].Downloaded = true
			return true
		}
	}
	return false
}

// Load makes id the active model if it has been downloaded
func (c *Catalog) Load(id string) (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.models {
		if m.ID != id {
			continue
		}
		if !m.Downloaded {
			return false, "model not downloaded"
		}
		c.loaded = id
		return true, ""
	}
	return false, "unknown model"
}

// Loaded returns the active model id, empty when none
func (c *Catalog) Loaded() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Count returns the number of catalog entries
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}
