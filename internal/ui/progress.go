package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// DownloadBar renders model download progress for the command line.
//
// On a terminal it redraws a single line in place. Otherwise it prints one
// line per 10% step so logs and pipes stay readable.
type DownloadBar struct {
	Label   string  // e.g., "Downloading qwen2.5-0.5b-q6"
	Percent float64 // Progress (0.0 - 1.0)
	Width   int     // Terminal width

	out     io.Writer
	inline  bool
	printed int // Last decile written in non-inline mode
	bar     progress.Model
}

// NewDownloadBar creates a progress display writing to out.
// inline selects carriage-return redraws and should be true only for terminals.
func NewDownloadBar(out io.Writer, label string, inline bool) *DownloadBar {
	d := &DownloadBar{
		Label:   label,
		out:     out,
		inline:  inline,
		printed: -1,
	}
	return d.SetWidth(GetTerminalWidth())
}

// SetWidth sets the terminal width for responsive rendering
func (d *DownloadBar) SetWidth(width int) *DownloadBar {
	d.Width = width
	barWidth := width - 20 // Leave room for the percentage
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	d.bar = progress.New(
		progress.WithGradient(string(PrimaryColor), string(SuccessColor)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return d
}

// Set records a new progress value and writes the update
func (d *DownloadBar) Set(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	d.Percent = p

	if d.inline {
		_, _ = fmt.Fprint(d.out, "\r"+d.renderBar())
		return
	}

	decile := int(p * 10)
	if decile <= d.printed {
		return
	}
	d.printed = decile
	_, _ = fmt.Fprintln(d.out, d.renderBar())
}

// Finish terminates the inline line so later output starts cleanly
func (d *DownloadBar) Finish() {
	if d.inline {
		_, _ = fmt.Fprintln(d.out)
	}
}

// Render returns the label and bar as a string
func (d *DownloadBar) Render() string {
	var b strings.Builder
	if d.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(d.Label))
		b.WriteString("\n\n")
	}
	b.WriteString(d.renderBar())
	return b.String()
}

// renderBar renders the bar line with its percentage
func (d *DownloadBar) renderBar() string {
	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %3.0f%%", d.bar.ViewAs(d.Percent), d.Percent*100))
}

// String implements fmt.Stringer
func (d *DownloadBar) String() string {
	return d.Render()
}
