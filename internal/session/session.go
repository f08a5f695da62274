package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/runtime"
)

var (
	// ErrNoModel is returned by Generate when no model is loaded
	ErrNoModel = errors.New("no model loaded")

	// ErrBusy is returned when the same kind of operation is already running
	ErrBusy = errors.New("operation already in progress")

	// ErrEmptyQuote is returned when the model produced no usable text
	ErrEmptyQuote = errors.New("model returned an empty quote")

	// ErrLoadDeclined is returned when the runtime refused to load a model
	ErrLoadDeclined = errors.New("runtime declined to load model")

	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("session closed")
)

// Options configures a Session
type Options struct {
	// DefaultCategory is the initially selected category
	DefaultCategory quote.Category

	// GenerateTimeout bounds one generation (0 = no limit)
	GenerateTimeout time.Duration

	// LoadTimeout bounds one model load (0 = no limit)
	LoadTimeout time.Duration

	// Clock returns the current time; defaults to time.Now
	Clock func() time.Time

	// OnModelLoaded is called after a model becomes active
	OnModelLoaded func(modelID string)
}

// Session owns the application state and the operations that change it.
// It is safe for concurrent use; runtime calls never hold the state lock.
type Session struct {
	rt   runtime.Runtime
	opts Options

	mu    sync.Mutex
	state Snapshot

	subs    map[int]chan Snapshot
	nextSub int
	closed  bool

	cancelGenerate context.CancelFunc
	cancelDownload context.CancelFunc
}

// New creates a session backed by rt
func New(rt runtime.Runtime, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if !opts.DefaultCategory.Valid() {
		opts.DefaultCategory = quote.Random
	}

	return &Session{
		rt:   rt,
		opts: opts,
		state: Snapshot{
			Status:           StatusInitializing,
			SelectedCategory: opts.DefaultCategory,
		},
		subs: make(map[int]chan Snapshot),
	}
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe returns a channel that receives the newest snapshot after every change.
// The channel holds at most one pending snapshot; a slow reader only sees the latest.
// Call the returned function to unsubscribe; it closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state.clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close cancels running operations and closes every subscription
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancelGenerate != nil {
		s.cancelGenerate()
	}
	if s.cancelDownload != nil {
		s.cancelDownload()
	}
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// update applies fn under the lock and broadcasts the result
func (s *Session) update(event string, fn func(st *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	logging.LogStateChange(event, s.state.Status)
	s.publishLocked()
}

// publishLocked replaces any unread snapshot in each subscriber channel with the newest one
func (s *Session) publishLocked() {
	if s.closed {
		return
	}
	snap := s.state.clone()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Init lists models and, if preferredModel is already downloaded, loads it
func (s *Session) Init(ctx context.Context, preferredModel string) error {
	if err := s.ListModels(ctx); err != nil {
		return err
	}
	if preferredModel == "" {
		return nil
	}
	if m, ok := s.Snapshot().Model(preferredModel); ok && m.Downloaded {
		_, err := s.Load(ctx, preferredModel)
		return err
	}
	logging.Debug("Preferred model not available for auto-load", zap.String("model", preferredModel))
	return nil
}

// ListModels refreshes the model list from the runtime
func (s *Session) ListModels(ctx context.Context) error {
	models, err := s.rt.ListModels(ctx)
	if err != nil {
		s.update("list_models_failed", func(st *Snapshot) {
			st.Status = statusModelsErrorPrefix + runtime.ShortMessage(err)
		})
		return fmt.Errorf("listing models: %w", err)
	}

	s.update("list_models", func(st *Snapshot) {
		st.Models = models
		st.Status = StatusModelsReady
	})
	return nil
}

// Refresh re-runs model enumeration
func (s *Session) Refresh(ctx context.Context) error {
	return s.ListModels(ctx)
}

// Download fetches a model, publishing progress as it arrives.
// Only one download runs at a time.
func (s *Session) Download(ctx context.Context, modelID string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.state.DownloadingModel != "":
		s.mu.Unlock()
		return ErrBusy
	}
	s.cancelDownload = cancel
	s.state.DownloadingModel = modelID
	s.state.Status = StatusDownloading
	logging.LogStateChange("download_started", s.state.Status, zap.String("model", modelID))
	s.publishLocked()
	s.mu.Unlock()

	err := s.rt.Download(ctx, modelID, func(p float64) {
		p = runtime.ClampProgress(p)
		s.update("download_progress", func(st *Snapshot) {
			st.DownloadProgress = &p
			st.Status = fmt.Sprintf(statusDownloadingPercent, progressPercent(p))
		})
	})

	s.update("download_finished", func(st *Snapshot) {
		st.DownloadProgress = nil
		st.DownloadingModel = ""
		s.cancelDownload = nil

		switch {
		case err == nil:
			st.Status = StatusDownloadComplete
			for i := range st.Models {
				if st.Models[i].ID == modelID {
					st.Models[i].Downloaded = true
				}
			}
		case runtime.IsCancelled(err):
			st.Status = StatusDownloadCancelled
		default:
			st.Status = statusDownloadFailPrefix + runtime.ShortMessage(err)
		}
	})

	if err != nil {
		return fmt.Errorf("downloading %s: %w", modelID, err)
	}
	return nil
}

// Load asks the runtime to activate a model.
// On failure the active model is left unchanged.
func (s *Session) Load(ctx context.Context, modelID string) (bool, error) {
	if s.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.LoadTimeout)
		defer cancel()
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return false, ErrClosed
	case s.state.LoadingModel != "":
		s.mu.Unlock()
		return false, ErrBusy
	}
	s.state.LoadingModel = modelID
	s.state.Status = StatusLoading
	logging.LogStateChange("load_started", s.state.Status, zap.String("model", modelID))
	s.publishLocked()
	s.mu.Unlock()

	loaded, err := s.rt.Load(ctx, modelID)

	s.update("load_finished", func(st *Snapshot) {
		st.LoadingModel = ""
		switch {
		case err != nil:
			st.Status = statusLoadErrorPrefix + runtime.ShortMessage(err)
		case !loaded:
			st.Status = StatusLoadFailed
		default:
			st.ActiveModel = modelID
			st.Status = StatusLoaded
		}
	})

	switch {
	case err != nil:
		return false, fmt.Errorf("loading %s: %w", modelID, err)
	case !loaded:
		return false, ErrLoadDeclined
	}

	if s.opts.OnModelLoaded != nil {
		s.opts.OnModelLoaded(modelID)
	}
	return true, nil
}

// SelectCategory changes the category used by Generate
func (s *Session) SelectCategory(c quote.Category) {
	if !c.Valid() {
		return
	}
	s.update("select_category", func(st *Snapshot) {
		st.SelectedCategory = c
	})
}

// Generate produces a quote for the selected category
func (s *Session) Generate(ctx context.Context) (quote.Quote, error) {
	return s.GenerateCategory(ctx, s.Snapshot().SelectedCategory)
}

// GenerateCategory produces a quote for category c.
// Without an active model only the status changes and the runtime is not called.
func (s *Session) GenerateCategory(ctx context.Context, c quote.Category) (quote.Quote, error) {
	if s.opts.GenerateTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, s.opts.GenerateTimeout)
		defer timeoutCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return quote.Quote{}, ErrClosed
	case s.state.ActiveModel == "":
		s.state.Status = StatusNoModel
		logging.LogStateChange("generate_refused", s.state.Status)
		s.publishLocked()
		s.mu.Unlock()
		return quote.Quote{}, ErrNoModel
	case s.state.Generating:
		s.mu.Unlock()
		return quote.Quote{}, ErrBusy
	}
	s.cancelGenerate = cancel
	s.state.Generating = true
	s.state.Status = StatusGenerating
	logging.LogStateChange("generate_started", s.state.Status, zap.String("category", c.String()))
	s.publishLocked()
	s.mu.Unlock()

	var raw strings.Builder
	err := s.rt.GenerateStream(ctx, c.Prompt(), func(token string) {
		raw.WriteString(token)
	})

	var (
		result quote.Quote
		outErr error
	)
	s.update("generate_finished", func(st *Snapshot) {
		st.Generating = false
		s.cancelGenerate = nil

		if err != nil {
			if runtime.IsCancelled(err) {
				st.Status = StatusGenerateCancelled
			} else {
				st.Status = statusGenerateErrPrefix + runtime.ShortMessage(err)
			}
			outErr = fmt.Errorf("generating quote: %w", err)
			return
		}

		text := quote.Clean(raw.String())
		if text == "" {
			st.Status = StatusEmptyQuote
			outErr = ErrEmptyQuote
			return
		}

		result = quote.New(text, c, st.History.NextTimestamp(s.opts.Clock()))
		st.History = st.History.Prepend(result)
		current := result
		st.CurrentQuote = &current
		st.Status = StatusGenerated
	})

	return result, outErr
}

// Cancel aborts an in-flight generation and download, if any
func (s *Session) Cancel() {
	s.CancelGenerate()
	s.CancelDownload()
}

// CancelGenerate aborts the in-flight generation, leaving downloads running
func (s *Session) CancelGenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelGenerate != nil {
		s.cancelGenerate()
	}
}

// CancelDownload aborts the running download, leaving generation running
func (s *Session) CancelDownload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelDownload != nil {
		s.cancelDownload()
	}
}

// ToggleFavorite flips the favorite flag of the history entry matching q's identity
func (s *Session) ToggleFavorite(q quote.Quote) {
	id := q.ID()
	s.update("toggle_favorite", func(st *Snapshot) {
		updated, toggled, ok := st.History.ToggleFavorite(id)
		if !ok {
			return
		}
		st.History = updated
		if st.CurrentQuote != nil && st.CurrentQuote.ID() == id {
			current := toggled
			st.CurrentQuote = &current
		}
	})
}

// Delete removes the history entry matching q's identity.
// If it was on display, the newest remaining quote (or none) takes its place.
func (s *Session) Delete(q quote.Quote) {
	id := q.ID()
	s.update("delete_quote", func(st *Snapshot) {
		updated, removed := st.History.Delete(id)
		if !removed {
			return
		}
		st.History = updated
		if st.CurrentQuote != nil && st.CurrentQuote.ID() == id {
			if head, ok := updated.Head(); ok {
				st.CurrentQuote = &head
			} else {
				st.CurrentQuote = nil
			}
		}
	})
}

// Show puts a history entry on display without changing history
func (s *Session) Show(q quote.Quote) {
	id := q.ID()
	s.update("show_quote", func(st *Snapshot) {
		if found, ok := st.History.Find(id); ok {
			st.CurrentQuote = &found
		}
	})
}

// SetStatus replaces the status line, used for UI-originated notices such as clipboard results
func (s *Session) SetStatus(status string) {
	s.update("status", func(st *Snapshot) {
		st.Status = status
	})
}

// Favorites returns the favorited quotes in history order
func (s *Session) Favorites() quote.History {
	return s.Snapshot().Favorites()
}
