package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/quotegen/internal/config"
)

// Theme is a colour palette plus the styles derived from it
type Theme struct {
	Name string

	Primary        lipgloss.Color
	PrimaryVariant lipgloss.Color
	Secondary      lipgloss.Color
	Tertiary       lipgloss.Color
	Surface        lipgloss.Color
	OnPrimary      lipgloss.Color
	OnSurface      lipgloss.Color
	Subtle         lipgloss.Color
	Error          lipgloss.Color
	Success        lipgloss.Color
}

// DarkTheme is the default palette
func DarkTheme() Theme {
	return Theme{
		Name:           config.ThemeDark,
		Primary:        lipgloss.Color("#9B8FFF"),
		PrimaryVariant: lipgloss.Color("#8B82FF"),
		Secondary:      lipgloss.Color("#FF8FA8"),
		Tertiary:       lipgloss.Color("#6FEFE5"),
		Surface:        lipgloss.Color("#1A1A1A"),
		OnPrimary:      lipgloss.Color("#000000"),
		OnSurface:      lipgloss.Color("#E8E8E8"),
		Subtle:         lipgloss.Color("#7A7A7A"),
		Error:          lipgloss.Color("#FF5555"),
		Success:        lipgloss.Color("#43BF6D"),
	}
}

// LightTheme is the palette for light terminals
func LightTheme() Theme {
	return Theme{
		Name:           config.ThemeLight,
		Primary:        lipgloss.Color("#6C63FF"),
		PrimaryVariant: lipgloss.Color("#5A52D5"),
		Secondary:      lipgloss.Color("#FF6584"),
		Tertiary:       lipgloss.Color("#4ECDC4"),
		Surface:        lipgloss.Color("#F8F9FA"),
		OnPrimary:      lipgloss.Color("#FFFFFF"),
		OnSurface:      lipgloss.Color("#1A1A1A"),
		Subtle:         lipgloss.Color("#8A8A8A"),
		Error:          lipgloss.Color("#D32F2F"),
		Success:        lipgloss.Color("#2E7D32"),
	}
}

// ThemeByName returns the named theme, falling back to dark
func ThemeByName(name string) Theme {
	if name == config.ThemeLight {
		return LightTheme()
	}
	return DarkTheme()
}

// Toggled returns the other theme
func (t Theme) Toggled() Theme {
	if t.Name == config.ThemeLight {
		return DarkTheme()
	}
	return LightTheme()
}

// Icon is shown in the header next to the theme name
func (t Theme) Icon() string {
	if t.Name == config.ThemeLight {
		return "☀"
	}
	return "☾"
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
}

func (t Theme) text() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.OnSurface)
}

func (t Theme) subtle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Subtle)
}

func (t Theme) badge() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.OnPrimary).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1)
}

func (t Theme) panel() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)
}

func (t Theme) selected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Tertiary).Bold(true)
}
