package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/runtime"
	"github.com/muurk/quotegen/internal/version"
)

// Text shown by the components
const (
	AppName            = "QUOTEGEN"
	textCrafting       = "Crafting your quote..."
	textEmptyCard      = "Generate your first\ninspiring quote!"
	textGenerate       = "Generate Quote"
	textGenerating     = "Generating..."
	textModelTitle     = "AI Model Settings"
	textNoModels       = "No models available. Initializing..."
	textActive         = "Currently Active"
	textHistoryTitle   = "Quote History"
	textNoHistory      = "No quotes yet. Generate some!"
	textQuoteCardHints = "f favorite · c copy · s share"
)

// RenderHeader renders the app name and version with the quote count and theme indicator
func RenderHeader(t Theme, quoteCount, width int) string {
	left := t.title().Render(AppName) + " " + t.subtle().Render("v"+version.Version)
	right := t.badge().Render(strconv.Itoa(quoteCount)+" quotes") + " " + t.subtle().Render(t.Icon()+" "+t.Name)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// RenderStatusBanner renders the status line and, while downloading, the progress bar
func RenderStatusBanner(t Theme, status string, downloadProgress *float64, bar progress.Model, width int) string {
	style := t.text()
	if isErrorStatus(status) {
		style = lipgloss.NewStyle().Foreground(t.Error)
	}
	line := style.Render(truncate.StringWithTail(status, uint(max(width, 4)), "…"))
	if downloadProgress == nil {
		return line
	}
	return lipgloss.JoinVertical(lipgloss.Left, line, bar.ViewAs(*downloadProgress))
}

func isErrorStatus(status string) bool {
	for _, prefix := range []string{"Error", "Failed", "Download failed"} {
		if strings.HasPrefix(status, prefix) {
			return true
		}
	}
	return false
}

// RenderCategoryChips renders one chip per category, wrapping onto new rows as needed.
// Disabled chips are drawn in the subtle colour and cannot be selected.
func RenderCategoryChips(t Theme, selected quote.Category, enabled bool, width int) string {
	var (
		rows   []string
		row    []string
		rowLen int
	)
	for _, c := range quote.Categories() {
		chip := renderChip(t, c, c == selected, enabled)
		w := lipgloss.Width(chip)
		if rowLen > 0 && rowLen+w+1 > width {
			rows = append(rows, strings.Join(row, " "))
			row, rowLen = nil, 0
		}
		row = append(row, chip)
		rowLen += w + 1
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}
	return strings.Join(rows, "\n")
}

func renderChip(t Theme, c quote.Category, selected, enabled bool) string {
	label := c.Emoji() + " " + c.Label()
	accent := lipgloss.Color(c.Accent())
	style := lipgloss.NewStyle().Padding(0, 1)

	switch {
	case !enabled && selected:
		return style.Foreground(t.Subtle).Underline(true).Render(label)
	case !enabled:
		return style.Foreground(t.Subtle).Render(label)
	case selected:
		return style.Background(accent).Foreground(t.OnPrimary).Bold(true).Render(label)
	default:
		return style.Foreground(accent).Render(label)
	}
}

// RenderQuoteCard renders the generating, showing and empty states of the quote card
func RenderQuoteCard(t Theme, current *quote.Quote, generating bool, spinnerView string, width int) string {
	border := t.Primary
	var body string

	switch {
	case generating:
		body = lipgloss.JoinVertical(lipgloss.Center,
			spinnerView,
			"",
			t.subtle().Italic(true).Render(textCrafting),
		)

	case current != nil:
		border = lipgloss.Color(current.Category.Accent())
		text := wordwrap.String("“"+current.Text+"”", max(width-6, 10))

		tag := lipgloss.NewStyle().Foreground(border).Render(current.Category.Emoji() + " " + current.Category.Label())
		if current.Favorite {
			tag += "  " + lipgloss.NewStyle().Foreground(t.Secondary).Render("♥ favorite")
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			t.text().Italic(true).Render(text),
			"",
			tag,
			t.subtle().Render(textQuoteCardHints),
		)

	default:
		body = lipgloss.NewStyle().
			Foreground(t.Subtle).
			Align(lipgloss.Center).
			Render("✨\n\n" + textEmptyCard)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(max(width-2, 10)).
		Padding(1, 2).
		Align(lipgloss.Center).
		Render(body)
}

// RenderGenerateButton renders the generate action.
// pulse alternates the emphasis while the button is enabled.
func RenderGenerateButton(t Theme, hasModel, generating, pulse bool, spinnerView string) string {
	style := lipgloss.NewStyle().Padding(0, 3).Bold(true)

	switch {
	case generating:
		return style.Background(t.PrimaryVariant).Foreground(t.OnPrimary).Render(spinnerView + " " + textGenerating)
	case !hasModel:
		return style.Foreground(t.Subtle).Render("✨ " + textGenerate)
	case pulse:
		return style.Background(t.Primary).Foreground(t.OnPrimary).Render("✨ " + textGenerate)
	default:
		return style.Background(t.PrimaryVariant).Foreground(t.OnPrimary).Render("✨ " + textGenerate)
	}
}

// ModelPanelState is what the model panel needs from the session
type ModelPanelState struct {
	Models      []runtime.ModelInfo
	Active      string
	Downloading string
	Loading     string
	Cursor      int
}

// RenderModelPanel renders the model list with per-model actions
func RenderModelPanel(t Theme, st ModelPanelState, width int) string {
	header := t.title().Render(textModelTitle) + "  " + t.subtle().Render("[r] Refresh")
	lines := []string{header, ""}

	if len(st.Models) == 0 {
		lines = append(lines, t.subtle().Render(textNoModels))
		return t.panel().Width(max(width-2, 20)).Render(strings.Join(lines, "\n"))
	}

	for i, m := range st.Models {
		cursor := "  "
		nameStyle := t.text()
		if i == st.Cursor {
			cursor = t.selected().Render("→ ")
			nameStyle = t.selected()
		}

		name := m.Name
		if name == "" {
			name = m.ID
		}
		line := cursor + nameStyle.Render(name) + " " + t.subtle().Render("("+m.ID+")")
		lines = append(lines, line)
		lines = append(lines, "    "+renderModelActions(t, m, st))
	}

	return t.panel().Width(max(width-2, 20)).Render(strings.Join(lines, "\n"))
}

func renderModelActions(t Theme, m runtime.ModelInfo, st ModelPanelState) string {
	enabled := lipgloss.NewStyle().Foreground(t.Tertiary)
	disabled := t.subtle()
	var parts []string

	switch {
	case m.ID == st.Downloading:
		parts = append(parts, enabled.Render("Downloading..."))
	case m.Downloaded:
		parts = append(parts, disabled.Render("✓ Downloaded"))
	default:
		parts = append(parts, enabled.Render("[d] Download"))
	}

	switch {
	case m.ID == st.Loading:
		parts = append(parts, enabled.Render("Loading..."))
	case m.ID == st.Active:
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Success).Bold(true).Render("● "+textActive))
	case m.Downloaded:
		parts = append(parts, enabled.Render("[l] Load"))
	default:
		parts = append(parts, disabled.Render("Load"))
	}

	if m.SizeBytes > 0 {
		parts = append(parts, disabled.Render(formatSize(m.SizeBytes)))
	}
	return strings.Join(parts, "  ")
}

// RenderHistoryPanel renders the history list, showing at most rows entries around the cursor
func RenderHistoryPanel(t Theme, history quote.History, cursor, rows, width int) string {
	header := t.title().Render(textHistoryTitle) + " " + t.badge().Render(strconv.Itoa(len(history)))
	lines := []string{header, ""}

	if len(history) == 0 {
		lines = append(lines, t.subtle().Render(textNoHistory))
		return t.panel().Width(max(width-2, 20)).Render(strings.Join(lines, "\n"))
	}

	start, end := visibleWindow(len(history), cursor, rows)
	textWidth := max(width-14, 10)

	for i := start; i < end; i++ {
		q := history[i]
		prefix := "  "
		style := t.text()
		if i == cursor {
			prefix = t.selected().Render("→ ")
			style = t.selected()
		}
		fav := "  "
		if q.Favorite {
			fav = lipgloss.NewStyle().Foreground(t.Secondary).Render("♥ ")
		}
		text := truncate.StringWithTail(q.Text, uint(textWidth), "…")
		lines = append(lines, prefix+fav+q.Category.Emoji()+" "+style.Render(text))
	}
	if end-start < len(history) {
		lines = append(lines, "", t.subtle().Render(fmt.Sprintf("%d–%d of %d", start+1, end, len(history))))
	}

	return t.panel().Width(max(width-2, 20)).Render(strings.Join(lines, "\n"))
}

// visibleWindow returns the [start, end) slice of n items keeping cursor in view
func visibleWindow(n, cursor, rows int) (int, int) {
	if rows <= 0 || rows >= n {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func formatSize(n int64) string {
	const mib = 1024 * 1024
	if n >= 1024*mib {
		return fmt.Sprintf("%.1f GiB", float64(n)/(1024*mib))
	}
	return fmt.Sprintf("%.0f MiB", float64(n)/mib)
}
