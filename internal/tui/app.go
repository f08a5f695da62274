package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/session"
	"github.com/muurk/quotegen/internal/share"
)

// Panel identifies the overlay shown below the quote card
type Panel int

const (
	PanelNone Panel = iota
	PanelModels
	PanelHistory
)

// pulseInterval is the period of the generate button emphasis
const pulseInterval = time.Second

// statusWait is shown when a second operation of the same kind is requested
const statusWait = "Please wait for the current operation to finish"

// Messages for async operations
type snapshotMsg session.Snapshot

type sessionClosedMsg struct{}

type pulseMsg time.Time

type opResultMsg struct {
	op  string
	err error
}

// Options configures the application model
type Options struct {
	// PreferredModel is loaded at start-up when it is already downloaded
	PreferredModel string

	// Theme is the initial theme name
	Theme string

	// OnThemeChange is called with the new theme name after a toggle
	OnThemeChange func(name string)

	// Sharer handles copy and share; nil creates one writing to stderr
	Sharer *share.Sharer
}

// AppModel is the top-level bubbletea model. It renders session snapshots and
// turns key presses into session operations, each run as a tea.Cmd.
type AppModel struct {
	ctx         context.Context
	session     *session.Session
	updates     <-chan session.Snapshot
	unsubscribe func()
	opts        Options
	sharer      *share.Sharer

	// Latest state received from the session
	Snap session.Snapshot

	// UI state
	Theme         Theme
	Panel         Panel
	ModelCursor   int
	HistoryCursor int
	Pulse         bool
	Width         int
	Height        int

	Spinner     spinner.Model
	ProgressBar progress.Model

	// Help
	Help        help.Model
	Keys        mainKeyMap
	ModelKeys   modelKeyMap
	HistoryKeys historyKeyMap
}

// NewAppModel creates the application model and subscribes it to sess.
// ctx bounds every operation started from the UI.
func NewAppModel(ctx context.Context, sess *session.Session, opts Options) AppModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	theme := ThemeByName(opts.Theme)
	s.Style = lipgloss.NewStyle().Foreground(theme.Primary)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	sharer := opts.Sharer
	if sharer == nil {
		sharer = share.New(nil)
	}

	updates, unsubscribe := sess.Subscribe()

	return AppModel{
		ctx:         ctx,
		session:     sess,
		updates:     updates,
		unsubscribe: unsubscribe,
		opts:        opts,
		sharer:      sharer,
		Snap:        sess.Snapshot(),
		Theme:       theme,
		Spinner:     s,
		ProgressBar: bar,
		Help:        help.New(),
		Keys:        newMainKeyMap(),
		ModelKeys:   newModelKeyMap(),
		HistoryKeys: newHistoryKeyMap(),
	}
}

// Init starts listening for snapshots and runs session start-up
func (m AppModel) Init() tea.Cmd {
	preferred := m.opts.PreferredModel
	return tea.Batch(
		m.waitForSnapshot(),
		m.run("init", func(ctx context.Context) error {
			return m.session.Init(ctx, preferred)
		}),
		m.Spinner.Tick,
		pulseTick(),
	)
}

// waitForSnapshot blocks on the subscription and delivers the next snapshot
func (m AppModel) waitForSnapshot() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return sessionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// run executes a session operation off the UI goroutine
func (m AppModel) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opResultMsg{op: op, err: fn(ctx)}
	}
}

func pulseTick() tea.Cmd {
	return tea.Tick(pulseInterval, func(t time.Time) tea.Msg {
		return pulseMsg(t)
	})
}

// Update handles all messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.ProgressBar.Width = min(ContentWidth(msg.Width)-4, 50)
		return m, nil

	case snapshotMsg:
		m.Snap = session.Snapshot(msg)
		m.clampCursors()
		return m, m.waitForSnapshot()

	case sessionClosedMsg:
		return m, nil

	case opResultMsg:
		m.handleResult(msg)
		return m, nil

	case pulseMsg:
		m.Pulse = !m.Pulse
		return m, pulseTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.Panel {
		case PanelModels:
			return m.updateModelPanel(msg)
		case PanelHistory:
			return m.updateHistoryPanel(msg)
		default:
			return m.updateMain(msg)
		}
	}

	return m, nil
}

// handleResult logs operation outcomes; the session already reflects them in its status
func (m AppModel) handleResult(msg opResultMsg) {
	if msg.err == nil {
		return
	}
	if errors.Is(msg.err, session.ErrBusy) {
		m.session.SetStatus(statusWait)
	}
	logging.Debug("UI operation finished with error", zap.String("op", msg.op), zap.Error(msg.err))
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.session.Cancel()
	m.unsubscribe()
	return m, tea.Quit
}

// chipsEnabled reports whether the category chooser accepts input
func (m AppModel) chipsEnabled() bool {
	return m.Snap.HasModel() && !m.Snap.Generating
}

// updateMain handles keys on the quote screen
func (m AppModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m.quit()

	case key.Matches(msg, m.Keys.Generate):
		if m.Snap.Generating {
			return m, nil
		}
		return m, m.run("generate", func(ctx context.Context) error {
			_, err := m.session.Generate(ctx)
			return err
		})

	case key.Matches(msg, m.Keys.Prev), key.Matches(msg, m.Keys.Next):
		if !m.chipsEnabled() {
			return m, nil
		}
		step := 1
		if key.Matches(msg, m.Keys.Prev) {
			step = -1
		}
		m.session.SelectCategory(cycleCategory(m.Snap.SelectedCategory, step))

	case key.Matches(msg, m.Keys.Favorite):
		if q := m.Snap.CurrentQuote; q != nil {
			m.session.ToggleFavorite(*q)
		}

	case key.Matches(msg, m.Keys.Copy):
		m.session.SetStatus(outcome(m.sharer.Copy(m.Snap.CurrentQuote), share.StatusCopied, "Copy failed: "))

	case key.Matches(msg, m.Keys.Share):
		m.session.SetStatus(outcome(m.sharer.Share(m.Snap.CurrentQuote), share.StatusShared, "Share failed: "))

	case key.Matches(msg, m.Keys.Models):
		m.Panel = PanelModels
		m.ModelCursor = m.activeModelIndex()

	case key.Matches(msg, m.Keys.History):
		m.Panel = PanelHistory
		m.HistoryCursor = 0

	case key.Matches(msg, m.Keys.Theme):
		m.Theme = m.Theme.Toggled()
		m.Spinner.Style = lipgloss.NewStyle().Foreground(m.Theme.Primary)
		if save := m.opts.OnThemeChange; save != nil {
			name := m.Theme.Name
			return m, func() tea.Msg {
				save(name)
				return nil
			}
		}

	case key.Matches(msg, m.Keys.Cancel):
		m.session.CancelGenerate()

	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
	}
	return m, nil
}

// updateModelPanel handles keys while the model panel is open
func (m AppModel) updateModelPanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	models := m.Snap.Models

	switch {
	case key.Matches(msg, m.ModelKeys.Close):
		m.Panel = PanelNone

	case key.Matches(msg, m.ModelKeys.Up):
		if m.ModelCursor > 0 {
			m.ModelCursor--
		}

	case key.Matches(msg, m.ModelKeys.Down):
		if m.ModelCursor < len(models)-1 {
			m.ModelCursor++
		}

	case key.Matches(msg, m.ModelKeys.Refresh):
		return m, m.run("refresh", m.session.Refresh)

	case key.Matches(msg, m.ModelKeys.Cancel):
		m.session.CancelDownload()

	case key.Matches(msg, m.ModelKeys.Download):
		if m.ModelCursor >= len(models) {
			return m, nil
		}
		target := models[m.ModelCursor]
		if target.Downloaded || m.Snap.DownloadingModel != "" {
			return m, nil
		}
		return m, m.run("download", func(ctx context.Context) error {
			return m.session.Download(ctx, target.ID)
		})

	case key.Matches(msg, m.ModelKeys.Load):
		if m.ModelCursor >= len(models) {
			return m, nil
		}
		target := models[m.ModelCursor]
		if !target.Downloaded || target.ID == m.Snap.ActiveModel || m.Snap.LoadingModel != "" {
			return m, nil
		}
		return m, m.run("load", func(ctx context.Context) error {
			_, err := m.session.Load(ctx, target.ID)
			return err
		})
	}
	return m, nil
}

// updateHistoryPanel handles keys while the history panel is open
func (m AppModel) updateHistoryPanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	history := m.Snap.History

	switch {
	case key.Matches(msg, m.HistoryKeys.Close):
		m.Panel = PanelNone

	case key.Matches(msg, m.HistoryKeys.Up):
		if m.HistoryCursor > 0 {
			m.HistoryCursor--
		}

	case key.Matches(msg, m.HistoryKeys.Down):
		if m.HistoryCursor < len(history)-1 {
			m.HistoryCursor++
		}

	case key.Matches(msg, m.HistoryKeys.Show):
		if m.HistoryCursor < len(history) {
			m.session.Show(history[m.HistoryCursor])
			m.Panel = PanelNone
		}

	case key.Matches(msg, m.HistoryKeys.Favorite):
		if m.HistoryCursor < len(history) {
			m.session.ToggleFavorite(history[m.HistoryCursor])
		}

	case key.Matches(msg, m.HistoryKeys.Delete):
		if m.HistoryCursor < len(history) {
			m.session.Delete(history[m.HistoryCursor])
		}
	}
	return m, nil
}

// clampCursors keeps panel cursors inside the current lists
func (m *AppModel) clampCursors() {
	if n := len(m.Snap.Models); m.ModelCursor >= n {
		m.ModelCursor = max(n-1, 0)
	}
	if n := len(m.Snap.History); m.HistoryCursor >= n {
		m.HistoryCursor = max(n-1, 0)
	}
}

func (m AppModel) activeModelIndex() int {
	for i, model := range m.Snap.Models {
		if model.ID == m.Snap.ActiveModel {
			return i
		}
	}
	return 0
}

// cycleCategory moves step positions through the category list, wrapping at the ends
func cycleCategory(c quote.Category, step int) quote.Category {
	all := quote.Categories()
	idx := 0
	for i, candidate := range all {
		if candidate == c {
			idx = i
			break
		}
	}
	idx = (idx + step + len(all)) % len(all)
	return all[idx]
}

// outcome converts a copy or share result into status text
func outcome(err error, ok, failPrefix string) string {
	if err != nil {
		return failPrefix + err.Error()
	}
	return ok
}

// View renders the screen
func (m AppModel) View() string {
	width := m.Width
	if width == 0 {
		width = 80
	}
	contentWidth := ContentWidth(width)

	header := RenderHeader(m.Theme, len(m.Snap.History), contentWidth)

	sections := []string{
		RenderStatusBanner(m.Theme, m.Snap.Status, m.Snap.DownloadProgress, m.ProgressBar, contentWidth),
		"",
		RenderCategoryChips(m.Theme, m.Snap.SelectedCategory, m.chipsEnabled(), contentWidth),
		"",
		RenderQuoteCard(m.Theme, m.Snap.CurrentQuote, m.Snap.Generating, m.Spinner.View(), contentWidth),
		"",
		lipgloss.PlaceHorizontal(contentWidth, lipgloss.Center,
			RenderGenerateButton(m.Theme, m.Snap.HasModel(), m.Snap.Generating, m.Pulse, m.Spinner.View())),
	}

	var helpText string
	switch m.Panel {
	case PanelModels:
		sections = append(sections, "", RenderModelPanel(m.Theme, ModelPanelState{
			Models:      m.Snap.Models,
			Active:      m.Snap.ActiveModel,
			Downloading: m.Snap.DownloadingModel,
			Loading:     m.Snap.LoadingModel,
			Cursor:      m.ModelCursor,
		}, contentWidth))
		helpText = m.Help.View(m.ModelKeys)
	case PanelHistory:
		sections = append(sections, "", RenderHistoryPanel(m.Theme, m.Snap.History, m.HistoryCursor, m.historyRows(), contentWidth))
		helpText = m.Help.View(m.HistoryKeys)
	default:
		helpText = m.Help.View(m.Keys)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return RenderApplicationContainer(m.Theme, header, content, helpText, width, m.Height)
}

// historyRows is how many history entries fit below the quote card
func (m AppModel) historyRows() int {
	if m.Height == 0 {
		return 5
	}
	return max(m.Height-30, 3)
}
