package tui

import "github.com/charmbracelet/lipgloss"

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	defaultHeight    = 24
)

// ContentWidth returns the usable width inside the application container
func ContentWidth(terminalWidth int) int {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalWidth > MaxContentWidth {
		terminalWidth = MaxContentWidth
	}
	return terminalWidth - 6 // Outer border plus section padding
}

// RenderApplicationContainer wraps a screen in the shared frame: header on top,
// footer pinned below the content, everything inside a border filling the terminal.
func RenderApplicationContainer(t Theme, header, content, footer string, terminalWidth, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight <= 0 {
		terminalHeight = defaultHeight
	}
	frameWidth := min(terminalWidth, MaxContentWidth)

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(t.Primary).
		Width(frameWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(t.Primary).
		Foreground(t.Subtle).
		Width(frameWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(frameWidth-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(header),
		contentStyle.Render(content),
		footerStyle.Render(footer),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Primary).
		Width(frameWidth - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, bordered)
}
