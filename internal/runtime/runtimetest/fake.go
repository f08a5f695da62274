// Package runtimetest provides a scripted in-memory Runtime for tests.
package runtimetest

import (
	"context"
	"sync"

	"github.com/muurk/quotegen/internal/runtime"
)

// Fake is a scriptable runtime.Runtime. Set the exported fields before use;
// they are read under the internal lock so tests may adjust them between calls.
type Fake struct {
	mu sync.Mutex

	Models  []runtime.ModelInfo
	ListErr error

	Progress    []float64
	DownloadErr error

	// AfterProgress, when set, runs after each progress callback returns
	AfterProgress func(p float64)

	LoadResult bool
	LoadErr    error

	Tokens      []string
	GenerateErr error

	// Block, when non-nil, holds Download and GenerateStream until it is closed or the context ends
	Block chan struct{}

	// Started receives a value each time a blocking call begins waiting on Block
	Started chan string

	calls   map[string]int
	prompts []string
}

var _ runtime.Runtime = (*Fake)(nil)

// New returns a fake with two models, one already downloaded, that loads successfully
func New() *Fake {
	return &Fake{
		Models: []runtime.ModelInfo{
			{ID: "tiny-1b", Name: "Tiny 1B", Downloaded: true},
			{ID: "small-3b", Name: "Small 3B"},
		},
		Progress:   []float64{0.25, 0.5, 1.0},
		LoadResult: true,
		Tokens:     []string{"\"Be", " the", " change.\""},
		calls:      make(map[string]int),
	}
}

func (f *Fake) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

// Calls returns how many times op ("list", "download", "load", "generate") was invoked
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Prompts returns every prompt passed to GenerateStream
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *Fake) wait(ctx context.Context, op string) error {
	f.mu.Lock()
	block, started := f.Block, f.Started
	f.mu.Unlock()
	if block == nil {
		return nil
	}
	if started != nil {
		started <- op
	}
	select {
	case <-block:
		return nil
	case <-ctx.Done():
		return runtime.NewNetworkError(op, "", ctx.Err())
	}
}

// ListModels returns a copy of Models or ListErr
func (f *Fake) ListModels(ctx context.Context) ([]runtime.ModelInfo, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]runtime.ModelInfo(nil), f.Models...), nil
}

// Download reports each Progress value then marks the model downloaded, or fails with DownloadErr
func (f *Fake) Download(ctx context.Context, modelID string, progress func(float64)) error {
	f.record("download")

	f.mu.Lock()
	steps := append([]float64(nil), f.Progress...)
	after := f.AfterProgress
	f.mu.Unlock()

	for _, p := range steps {
		if progress != nil {
			progress(p)
		}
		if after != nil {
			after(p)
		}
	}
	if err := f.wait(ctx, "download"); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DownloadErr != nil {
		return f.DownloadErr
	}
	for i := range f.Models {
		if f.Models[i].ID == modelID {
			f.Models[i].Downloaded = true
			return nil
		}
	}
	return runtime.NewNotFoundError("download", "model "+modelID+" not found")
}

// Load returns LoadResult and LoadErr
func (f *Fake) Load(ctx context.Context, modelID string) (bool, error) {
	f.record("load")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoadResult, f.LoadErr
}

// GenerateStream emits Tokens, then fails with GenerateErr if set
func (f *Fake) GenerateStream(ctx context.Context, prompt string, token func(string)) error {
	f.record("generate")

	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	tokens := append([]string(nil), f.Tokens...)
	f.mu.Unlock()

	if err := f.wait(ctx, "generate"); err != nil {
		return err
	}

	for _, t := range tokens {
		if token != nil {
			token(t)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.GenerateErr
}
