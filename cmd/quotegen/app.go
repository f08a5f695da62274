package main

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/quotegen/internal/config"
	"github.com/muurk/quotegen/internal/discovery"
	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/runtime"
	"github.com/muurk/quotegen/internal/session"
)

// app bundles what every command needs: the loaded config and a runtime client
type app struct {
	registry *config.Registry
	client   *runtime.Client
	address  string

	// Guards registry writes from the TUI goroutine and session callbacks
	prefsMu sync.Mutex
}

// newApp loads the configuration and resolves the runtime address.
// Resolution order is --runtime, QUOTEGEN_RUNTIME, the config file, mDNS, then the default.
func newApp(ctx context.Context) (*app, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	address := resolveAddress(ctx, registry, runtimeAddr)

	client, err := runtime.NewClient(address)
	if err != nil {
		return nil, err
	}
	client.MaxTokens = registry.MaxTokens()

	logging.Debug("Runtime resolved", zap.String("address", address), zap.String("base_url", client.BaseURL))
	return &app{registry: registry, client: client, address: address}, nil
}

func resolveAddress(ctx context.Context, registry *config.Registry, flag string) string {
	if flag != "" {
		return flag
	}
	if addr := registry.RuntimeAddress(); addr != "" {
		return addr
	}
	if registry.ShouldDiscover() {
		endpoint, err := discovery.FindRuntime(ctx, registry.DiscoverTimeout())
		if err == nil {
			logging.Info("Discovered runtime", zap.String("endpoint", endpoint.String()))
			return endpoint.Address()
		}
		logging.Debug("No runtime discovered", zap.Error(err))
	}
	return config.DefaultRuntimeAddress
}

// newSession creates a session whose loaded model is remembered in the config
func (a *app) newSession() *session.Session {
	return session.New(a.client, session.Options{
		DefaultCategory: a.registry.DefaultCategory(),
		GenerateTimeout: a.registry.GenerateTimeout(),
		LoadTimeout:     a.registry.LoadTimeout(),
		OnModelLoaded: func(modelID string) {
			a.savePreference(func(r *config.Registry) { r.SetLastModel(modelID) })
		},
	})
}

// savePreference applies fn to the registry and writes it back.
// Failures are logged; preferences never interrupt the command.
func (a *app) savePreference(fn func(r *config.Registry)) {
	a.prefsMu.Lock()
	defer a.prefsMu.Unlock()

	fn(a.registry)
	if err := a.registry.Save(); err != nil {
		logging.Warn("Failed to save preferences", zap.Error(err))
	}
}
