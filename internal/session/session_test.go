package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/runtime"
	"github.com/muurk/quotegen/internal/runtime/runtimetest"
)

// fixedClock returns a clock that always reports the same instant
func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newLoadedSession(t *testing.T, fake *runtimetest.Fake, opts Options) *Session {
	t.Helper()
	s := New(fake, opts)
	t.Cleanup(s.Close)
	_, err := s.Load(context.Background(), "tiny-1b")
	require.NoError(t, err)
	return s
}

func TestNew_InitialState(t *testing.T) {
	s := New(runtimetest.New(), Options{})
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, StatusInitializing, snap.Status)
	assert.Equal(t, quote.Random, snap.SelectedCategory)
	assert.Nil(t, snap.CurrentQuote)
	assert.Nil(t, snap.DownloadProgress)
	assert.Empty(t, snap.History)
	assert.False(t, snap.HasModel())
	assert.False(t, snap.Busy())

	withDefault := New(runtimetest.New(), Options{DefaultCategory: quote.Wisdom})
	defer withDefault.Close()
	assert.Equal(t, quote.Wisdom, withDefault.Snapshot().SelectedCategory)
}

func TestListModels(t *testing.T) {
	fake := runtimetest.New()
	s := New(fake, Options{})
	defer s.Close()

	require.NoError(t, s.ListModels(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, StatusModelsReady, snap.Status)
	require.Len(t, snap.Models, 2)
	assert.Equal(t, "tiny-1b", snap.Models[0].ID)

	fake.ListErr = runtime.NewStreamError("list_models", "runtime offline")
	err := s.Refresh(context.Background())
	require.Error(t, err)
	snap = s.Snapshot()
	assert.Equal(t, "Error loading models: runtime offline", snap.Status)
	assert.Len(t, snap.Models, 2, "previous list is kept on failure")
}

func TestDownload_ProgressAndCompletion(t *testing.T) {
	fake := runtimetest.New()
	s := New(fake, Options{})
	defer s.Close()
	require.NoError(t, s.ListModels(context.Background()))

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()
	<-updates

	var statuses []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range updates {
			statuses = append(statuses, snap.Status)
		}
	}()

	require.NoError(t, s.Download(context.Background(), "small-3b"))
	unsubscribe()
	<-done

	snap := s.Snapshot()
	assert.Equal(t, StatusDownloadComplete, snap.Status)
	assert.Nil(t, snap.DownloadProgress)
	assert.Empty(t, snap.DownloadingModel)
	m, ok := snap.Model("small-3b")
	require.True(t, ok)
	assert.True(t, m.Downloaded)

	// Subscribers may coalesce updates, so only the final status is guaranteed
	require.NotEmpty(t, statuses)
	assert.Equal(t, StatusDownloadComplete, statuses[len(statuses)-1])
	for _, st := range statuses {
		if strings.HasPrefix(st, "Downloading: ") {
			assert.Contains(t, []string{"Downloading: 25%", "Downloading: 50%", "Downloading: 100%"}, st)
		}
	}
}

func TestDownload_StatusFollowsEachProgressStep(t *testing.T) {
	fake := runtimetest.New()
	s := New(fake, Options{})
	defer s.Close()

	var statuses []string
	fake.AfterProgress = func(float64) { statuses = append(statuses, s.Snapshot().Status) }

	require.NoError(t, s.Download(context.Background(), "small-3b"))

	assert.Equal(t, []string{"Downloading: 25%", "Downloading: 50%", "Downloading: 100%"}, statuses)
	snap := s.Snapshot()
	assert.Nil(t, snap.DownloadProgress)
	assert.Equal(t, StatusDownloadComplete, snap.Status)
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		progress float64
		want     int
	}{
		{0, 0},
		{0.25, 25},
		{0.29, 29},
		{0.5, 50},
		{0.57, 57},
		{0.999, 99},
		{1, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, progressPercent(tt.progress), "progress %v", tt.progress)
	}
}

func TestDownload_StatusForRoundingProneProgress(t *testing.T) {
	fake := runtimetest.New()
	fake.Progress = []float64{0.29, 0.57}
	s := New(fake, Options{})
	defer s.Close()

	var statuses []string
	fake.AfterProgress = func(float64) { statuses = append(statuses, s.Snapshot().Status) }

	require.NoError(t, s.Download(context.Background(), "small-3b"))
	assert.Equal(t, []string{"Downloading: 29%", "Downloading: 57%"}, statuses)
}

func TestCancelGenerate_LeavesDownloadRunning(t *testing.T) {
	fake := runtimetest.New()
	fake.Block = make(chan struct{})
	fake.Started = make(chan string, 1)
	s := New(fake, Options{})
	defer s.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Download(context.Background(), "small-3b") }()
	<-fake.Started

	s.CancelGenerate()
	assert.Equal(t, "small-3b", s.Snapshot().DownloadingModel)

	s.CancelDownload()
	err := <-errCh
	require.Error(t, err)
	assert.True(t, runtime.IsCancelled(err))
	assert.Equal(t, StatusDownloadCancelled, s.Snapshot().Status)
}

func TestDownload_ProgressStatusPerStep(t *testing.T) {
	fake := runtimetest.New()
	fake.Block = make(chan struct{})
	fake.Started = make(chan string, 1)
	s := New(fake, Options{})
	defer s.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Download(context.Background(), "small-3b") }()

	<-fake.Started
	snap := s.Snapshot()
	assert.Equal(t, "Downloading: 100%", snap.Status)
	require.NotNil(t, snap.DownloadProgress)
	assert.InDelta(t, 1.0, *snap.DownloadProgress, 1e-9)
	assert.Equal(t, "small-3b", snap.DownloadingModel)
	assert.True(t, snap.Busy())

	assert.ErrorIs(t, s.Download(context.Background(), "tiny-1b"), ErrBusy)

	close(fake.Block)
	require.NoError(t, <-errCh)
	assert.Nil(t, s.Snapshot().DownloadProgress)
}

func TestDownload_Failure(t *testing.T) {
	fake := runtimetest.New()
	fake.DownloadErr = runtime.NewStreamError("download", "disk full")
	s := New(fake, Options{})
	defer s.Close()

	err := s.Download(context.Background(), "small-3b")
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "Download failed: disk full", snap.Status)
	assert.Nil(t, snap.DownloadProgress, "progress is cleared on failure")
	assert.Empty(t, snap.DownloadingModel)
}

func TestDownload_Cancel(t *testing.T) {
	fake := runtimetest.New()
	fake.Block = make(chan struct{})
	fake.Started = make(chan string, 1)
	s := New(fake, Options{})
	defer s.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Download(context.Background(), "small-3b") }()

	<-fake.Started
	s.Cancel()

	err := <-errCh
	require.Error(t, err)
	assert.True(t, runtime.IsCancelled(err))

	snap := s.Snapshot()
	assert.Equal(t, StatusDownloadCancelled, snap.Status)
	assert.Nil(t, snap.DownloadProgress)
}

func TestLoad(t *testing.T) {
	var persisted string
	fake := runtimetest.New()
	s := New(fake, Options{OnModelLoaded: func(id string) { persisted = id }})
	defer s.Close()

	loaded, err := s.Load(context.Background(), "tiny-1b")
	require.NoError(t, err)
	assert.True(t, loaded)
	snap := s.Snapshot()
	assert.Equal(t, StatusLoaded, snap.Status)
	assert.Equal(t, "tiny-1b", snap.ActiveModel)
	assert.Empty(t, snap.LoadingModel)
	assert.Equal(t, "tiny-1b", persisted)

	fake.LoadResult = false
	loaded, err = s.Load(context.Background(), "small-3b")
	assert.False(t, loaded)
	assert.ErrorIs(t, err, ErrLoadDeclined)
	snap = s.Snapshot()
	assert.Equal(t, StatusLoadFailed, snap.Status)
	assert.Equal(t, "tiny-1b", snap.ActiveModel, "active model unchanged after failed load")

	fake.LoadErr = errors.New("out of memory")
	_, err = s.Load(context.Background(), "small-3b")
	require.Error(t, err)
	snap = s.Snapshot()
	assert.Equal(t, "Error loading model: out of memory", snap.Status)
	assert.Equal(t, "tiny-1b", snap.ActiveModel)
	assert.Equal(t, "tiny-1b", persisted)
}

func TestInit_AutoLoadsPreferredModel(t *testing.T) {
	fake := runtimetest.New()
	s := New(fake, Options{})
	defer s.Close()

	require.NoError(t, s.Init(context.Background(), "tiny-1b"))
	assert.Equal(t, "tiny-1b", s.Snapshot().ActiveModel)
	assert.Equal(t, 1, fake.Calls("load"))

	other := New(fake, Options{})
	defer other.Close()
	require.NoError(t, other.Init(context.Background(), "small-3b"))
	assert.Empty(t, other.Snapshot().ActiveModel, "models not yet downloaded are not loaded")
	assert.Equal(t, StatusModelsReady, other.Snapshot().Status)
	assert.Equal(t, 1, fake.Calls("load"))
}

func TestGenerate_WithoutModel(t *testing.T) {
	fake := runtimetest.New()
	s := New(fake, Options{})
	defer s.Close()

	_, err := s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrNoModel)

	snap := s.Snapshot()
	assert.Equal(t, StatusNoModel, snap.Status)
	assert.False(t, snap.Generating)
	assert.Empty(t, snap.History)
	assert.Equal(t, 0, fake.Calls("generate"), "runtime must not be called without a model")
}

func TestGenerate_Success(t *testing.T) {
	fake := runtimetest.New()
	s := newLoadedSession(t, fake, Options{Clock: fixedClock(10_000)})
	s.SelectCategory(quote.Wisdom)

	q, err := s.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Be the change.", q.Text)
	assert.Equal(t, quote.Wisdom, q.Category)
	assert.False(t, q.Favorite)
	assert.Equal(t, int64(10_000), q.ID())

	snap := s.Snapshot()
	assert.Equal(t, StatusGenerated, snap.Status)
	assert.False(t, snap.Generating)
	require.NotNil(t, snap.CurrentQuote)
	assert.Equal(t, q, *snap.CurrentQuote)
	require.Len(t, snap.History, 1)
	assert.Equal(t, q, snap.History[0])

	assert.Equal(t, []string{quote.Wisdom.Prompt()}, fake.Prompts())
}

func TestGenerate_HistoryNewestFirstWithUniqueIDs(t *testing.T) {
	fake := runtimetest.New()
	s := newLoadedSession(t, fake, Options{Clock: fixedClock(10_000)})

	first, err := s.GenerateCategory(context.Background(), quote.Life)
	require.NoError(t, err)
	second, err := s.GenerateCategory(context.Background(), quote.Love)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID(), "same-millisecond quotes get distinct identities")

	snap := s.Snapshot()
	require.Len(t, snap.History, 2)
	assert.Equal(t, second, snap.History[0])
	assert.Equal(t, first, snap.History[1])
	assert.Equal(t, quote.Random, snap.SelectedCategory, "explicit category does not change the selection")
}

func TestGenerate_EmptyOutput(t *testing.T) {
	fake := runtimetest.New()
	fake.Tokens = []string{"  ", "\n"}
	s := newLoadedSession(t, fake, Options{})

	_, err := s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrEmptyQuote)

	snap := s.Snapshot()
	assert.Equal(t, StatusEmptyQuote, snap.Status)
	assert.False(t, snap.Generating)
	assert.Empty(t, snap.History)
	assert.Nil(t, snap.CurrentQuote)
}

func TestGenerate_RuntimeError(t *testing.T) {
	fake := runtimetest.New()
	fake.GenerateErr = runtime.NewStreamError("generate", "context window exceeded")
	s := newLoadedSession(t, fake, Options{})

	_, err := s.Generate(context.Background())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "Error: context window exceeded", snap.Status)
	assert.False(t, snap.Generating)
	assert.Empty(t, snap.History)
}

func TestGenerate_BusyAndCancel(t *testing.T) {
	fake := runtimetest.New()
	s := newLoadedSession(t, fake, Options{})
	fake.Block = make(chan struct{})
	fake.Started = make(chan string, 1)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background())
		errCh <- err
	}()

	<-fake.Started
	assert.True(t, s.Snapshot().Generating)
	assert.Equal(t, StatusGenerating, s.Snapshot().Status)

	_, err := s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, fake.Calls("generate"))

	s.Cancel()
	err = <-errCh
	require.Error(t, err)
	assert.True(t, runtime.IsCancelled(err))

	snap := s.Snapshot()
	assert.False(t, snap.Generating)
	assert.Equal(t, StatusGenerateCancelled, snap.Status)
	assert.Empty(t, snap.History)
}

func TestGenerate_Timeout(t *testing.T) {
	fake := runtimetest.New()
	s := newLoadedSession(t, fake, Options{GenerateTimeout: 20 * time.Millisecond})
	fake.Block = make(chan struct{})
	defer close(fake.Block)

	_, err := s.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, runtime.IsTimeout(err))

	snap := s.Snapshot()
	assert.False(t, snap.Generating)
	assert.True(t, strings.HasPrefix(snap.Status, "Error: "), snap.Status)
}

func TestToggleFavorite(t *testing.T) {
	fake := runtimetest.New()
	clock := int64(1_000)
	s := newLoadedSession(t, fake, Options{Clock: func() time.Time {
		clock += 1_000
		return time.UnixMilli(clock)
	}})

	older, err := s.Generate(context.Background())
	require.NoError(t, err)
	current, err := s.Generate(context.Background())
	require.NoError(t, err)

	s.ToggleFavorite(current)
	snap := s.Snapshot()
	require.NotNil(t, snap.CurrentQuote)
	assert.True(t, snap.CurrentQuote.Favorite, "current quote mirrors the toggle")
	assert.True(t, snap.History[0].Favorite)
	assert.False(t, snap.History[1].Favorite)

	s.ToggleFavorite(older)
	snap = s.Snapshot()
	assert.True(t, snap.History[1].Favorite)
	assert.Equal(t, current.ID(), snap.CurrentQuote.ID(), "toggling another entry leaves the display alone")

	favs := s.Favorites()
	require.Len(t, favs, 2)
	assert.Equal(t, current.ID(), favs[0].ID())

	s.ToggleFavorite(current)
	snap = s.Snapshot()
	assert.False(t, snap.CurrentQuote.Favorite)
	assert.Len(t, s.Favorites(), 1)

	before := s.Snapshot()
	s.ToggleFavorite(quote.New("ghost", quote.Life, time.UnixMilli(42)))
	assert.Equal(t, before.History, s.Snapshot().History, "unknown quotes are ignored")
}

func TestDelete(t *testing.T) {
	fake := runtimetest.New()
	clock := int64(1_000)
	s := newLoadedSession(t, fake, Options{Clock: func() time.Time {
		clock += 1_000
		return time.UnixMilli(clock)
	}})

	first, err := s.Generate(context.Background())
	require.NoError(t, err)
	second, err := s.Generate(context.Background())
	require.NoError(t, err)

	s.Delete(second)
	snap := s.Snapshot()
	require.Len(t, snap.History, 1)
	require.NotNil(t, snap.CurrentQuote)
	assert.Equal(t, first.ID(), snap.CurrentQuote.ID(), "newest remaining quote takes over the display")

	s.Delete(quote.New("ghost", quote.Life, time.UnixMilli(42)))
	assert.Len(t, s.Snapshot().History, 1)

	s.Delete(first)
	snap = s.Snapshot()
	assert.Empty(t, snap.History)
	assert.Nil(t, snap.CurrentQuote)
}

func TestDelete_NonCurrentKeepsDisplay(t *testing.T) {
	fake := runtimetest.New()
	clock := int64(1_000)
	s := newLoadedSession(t, fake, Options{Clock: func() time.Time {
		clock += 1_000
		return time.UnixMilli(clock)
	}})

	first, err := s.Generate(context.Background())
	require.NoError(t, err)
	second, err := s.Generate(context.Background())
	require.NoError(t, err)

	s.Delete(first)
	snap := s.Snapshot()
	require.NotNil(t, snap.CurrentQuote)
	assert.Equal(t, second.ID(), snap.CurrentQuote.ID())
	assert.Len(t, snap.History, 1)

	s.Show(second)
	assert.Equal(t, second.ID(), s.Snapshot().CurrentQuote.ID())
}

func TestSubscribe(t *testing.T) {
	s := New(runtimetest.New(), Options{})

	updates, unsubscribe := s.Subscribe()
	initial := <-updates
	assert.Equal(t, StatusInitializing, initial.Status)

	s.SelectCategory(quote.Love)
	s.SelectCategory(quote.Success)

	latest := <-updates
	assert.Equal(t, quote.Success, latest.SelectedCategory, "only the newest snapshot is buffered")

	select {
	case extra := <-updates:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}

	unsubscribe()
	unsubscribe()
	_, ok := <-updates
	assert.False(t, ok, "unsubscribe closes the channel")

	other, _ := s.Subscribe()
	<-other
	s.Close()
	_, ok = <-other
	assert.False(t, ok, "close ends every subscription")

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestSnapshotIsolation(t *testing.T) {
	fake := runtimetest.New()
	s := newLoadedSession(t, fake, Options{})
	require.NoError(t, s.ListModels(context.Background()))
	_, err := s.Generate(context.Background())
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.History[0].Text = "mutated"
	snap.CurrentQuote.Text = "mutated"
	snap.Models[0].Name = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "Be the change.", fresh.History[0].Text)
	assert.Equal(t, "Be the change.", fresh.CurrentQuote.Text)
	assert.Equal(t, "Tiny 1B", fresh.Models[0].Name)
}

func TestClosedSession(t *testing.T) {
	s := New(runtimetest.New(), Options{})
	s.Close()
	s.Close()

	assert.ErrorIs(t, s.Download(context.Background(), "small-3b"), ErrClosed)
	_, err := s.Load(context.Background(), "tiny-1b")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Generate(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
