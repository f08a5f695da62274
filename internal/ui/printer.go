package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/runtime"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way subcommands should output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Writer returns the underlying output
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Field) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Field) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Field) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting ...string) {
	p.Println(NewFailureResult(title, err, troubleshooting...).SetWidth(p.width).Render())
}

// PrintQuote prints a quote card tinted with its category accent
func (p *Printer) PrintQuote(q quote.Quote) {
	p.Println(RenderQuote(q, p.width))
}

// PrintModels prints the model list, marking the active model
func (p *Printer) PrintModels(models []runtime.ModelInfo, active string) {
	p.Println(RenderModelList(models, active))
}

// RenderQuote renders a quote card with wrapped text and a category footer
func RenderQuote(q quote.Quote, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	textWidth := width - 8 // Border and padding
	body := QuoteTextStyle.Render(wordwrap.String("“"+q.Text+"”", textWidth))

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color(q.Category.Accent())).
		Render(fmt.Sprintf("%s %s", q.Category.Emoji(), q.Category.Label()))
	if q.Favorite {
		footer += "  " + lipgloss.NewStyle().Foreground(ErrorColor).Render("♥")
	}

	return QuoteBoxStyle(width, q.Category.Accent()).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, "", footer))
}

// RenderModelList renders one line per model with its download state
func RenderModelList(models []runtime.ModelInfo, active string) string {
	if len(models) == 0 {
		return NoteStyle.Render("  No models reported by the runtime")
	}

	idWidth := 0
	for _, m := range models {
		if w := lipgloss.Width(m.ID); w > idWidth {
			idWidth = w
		}
	}

	lines := make([]string, 0, len(models))
	for _, m := range models {
		marker, style := PendingMarker, ModelIdleStyle
		switch {
		case m.ID == active:
			marker, style = ActiveMarker, ModelActiveStyle
		case m.Downloaded:
			marker = DownloadedMarker
		}

		line := fmt.Sprintf("  %s %-*s  %s", marker, idWidth, m.ID, m.Name)
		var notes []string
		if m.SizeBytes > 0 {
			notes = append(notes, FormatBytes(m.SizeBytes))
		}
		if !m.Downloaded {
			notes = append(notes, "not downloaded")
		}
		if m.ID == active {
			notes = append(notes, "loaded")
		}
		if len(notes) > 0 {
			line = style.Render(line) + "  " + NoteStyle.Render("("+strings.Join(notes, ", ")+")")
		} else {
			line = style.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatBytes renders a size with a binary unit, e.g. "386.4 MiB"
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
