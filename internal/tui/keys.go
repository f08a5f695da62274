package tui

import "github.com/charmbracelet/bubbles/key"

// mainKeyMap defines key bindings for the quote screen
type mainKeyMap struct {
	Generate key.Binding
	Prev     key.Binding
	Next     key.Binding
	Favorite key.Binding
	Copy     key.Binding
	Share    key.Binding
	Models   key.Binding
	History  key.Binding
	Theme    key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k mainKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Prev, k.Next, k.Models, k.History, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k mainKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Generate, k.Prev, k.Next, k.Cancel},
		{k.Favorite, k.Copy, k.Share},
		{k.Models, k.History, k.Theme, k.Help, k.Quit},
	}
}

// modelKeyMap defines key bindings for the model panel
type modelKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Download key.Binding
	Load     key.Binding
	Refresh  key.Binding
	Cancel   key.Binding
	Close    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k modelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Download, k.Load, k.Refresh, k.Close}
}

// FullHelp returns keybindings for the expanded help view
func (k modelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Download, k.Load, k.Refresh, k.Cancel},
		{k.Close},
	}
}

// historyKeyMap defines key bindings for the history panel
type historyKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Show     key.Binding
	Favorite key.Binding
	Delete   key.Binding
	Close    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k historyKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Show, k.Favorite, k.Delete, k.Close}
}

// FullHelp returns keybindings for the expanded help view
func (k historyKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Show},
		{k.Favorite, k.Delete, k.Close},
	}
}

func newMainKeyMap() mainKeyMap {
	return mainKeyMap{
		Generate: key.NewBinding(
			key.WithKeys("enter", "g", " "),
			key.WithHelp("enter/g", "generate"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "shift+tab"),
			key.WithHelp("←", "category"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "tab"),
			key.WithHelp("→", "category"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "share"),
		),
		Models: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "models"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newModelKeyMap() modelKeyMap {
	return modelKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Load: key.NewBinding(
			key.WithKeys("l", "enter"),
			key.WithHelp("l/enter", "load"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel download"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "m"),
			key.WithHelp("esc", "close"),
		),
	}
}

func newHistoryKeyMap() historyKeyMap {
	return historyKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Show: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete", "backspace"),
			key.WithHelp("x", "delete"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "h"),
			key.WithHelp("esc", "close"),
		),
	}
}
