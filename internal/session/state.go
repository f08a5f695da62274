package session

import (
	"math"

	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/runtime"
)

// User-visible status messages
const (
	StatusInitializing       = "Initializing..."
	StatusModelsReady        = "Ready - Please download and load a model"
	StatusDownloading        = "Downloading model..."
	StatusDownloadComplete   = "Download complete! Please load the model."
	StatusDownloadCancelled  = "Download cancelled"
	StatusLoading            = "Loading model..."
	StatusLoaded             = "Ready to generate quotes!"
	StatusLoadFailed         = "Failed to load model"
	StatusNoModel            = "Please load a model first"
	StatusGenerating         = "Generating quote..."
	StatusGenerated          = "Quote generated!"
	StatusEmptyQuote         = "Failed to generate quote. Try again."
	StatusGenerateCancelled  = "Generation cancelled"
	statusModelsErrorPrefix  = "Error loading models: "
	statusDownloadingPercent = "Downloading: %d%%"
	statusDownloadFailPrefix = "Download failed: "
	statusLoadErrorPrefix    = "Error loading model: "
	statusGenerateErrPrefix  = "Error: "
)

// Snapshot is an immutable copy of every observable field of a Session
type Snapshot struct {
	// CurrentQuote is the quote on display, nil when none
	CurrentQuote *quote.Quote

	// Generating is true while a generation is in flight
	Generating bool

	// Models is the last model list received from the runtime
	Models []runtime.ModelInfo

	// DownloadProgress is nil when no download is running, otherwise in [0, 1]
	DownloadProgress *float64

	// DownloadingModel is the id being downloaded, empty when idle
	DownloadingModel string

	// LoadingModel is the id being loaded, empty when idle
	LoadingModel string

	// ActiveModel is the id of the loaded model, empty when none
	ActiveModel string

	// Status is the human-readable outcome of the last operation
	Status string

	// SelectedCategory is used when generating without an explicit category
	SelectedCategory quote.Category

	// History holds every quote generated this session, most recent first
	History quote.History
}

// HasModel reports whether a model is loaded and generation is allowed
func (s Snapshot) HasModel() bool {
	return s.ActiveModel != ""
}

// Busy reports whether any runtime operation is in flight
func (s Snapshot) Busy() bool {
	return s.Generating || s.DownloadingModel != "" || s.LoadingModel != ""
}

// Favorites returns the favorited quotes in history order
func (s Snapshot) Favorites() quote.History {
	return s.History.Favorites()
}

// Model looks up a model descriptor by id
func (s Snapshot) Model(id string) (runtime.ModelInfo, bool) {
	for _, m := range s.Models {
		if m.ID == id {
			return m, true
		}
	}
	return runtime.ModelInfo{}, false
}

// clone deep-copies the snapshot so subscribers never share memory with the session
func (s Snapshot) clone() Snapshot {
	out := s
	if s.CurrentQuote != nil {
		q := *s.CurrentQuote
		out.CurrentQuote = &q
	}
	if s.DownloadProgress != nil {
		p := *s.DownloadProgress
		out.DownloadProgress = &p
	}
	if s.Models != nil {
		out.Models = append([]runtime.ModelInfo(nil), s.Models...)
	}
	out.History = s.History.Clone()
	return out
}

// progressPercent converts a [0, 1] fraction to a whole percentage.
// The epsilon absorbs binary rounding so 0.29 reads 29, not 28.
func progressPercent(p float64) int {
	return int(math.Floor(p*100 + 1e-9))
}
