// Package tui implements the interactive quote generator screen.
//
// AppModel is a Bubble Tea model that subscribes to a session.Session and
// re-renders on every snapshot. Key presses become session operations run as
// tea.Cmds, so the UI goroutine never waits on the model runtime.
//
// # Layout
//
// Every frame is wrapped by RenderApplicationContainer:
//
//	┌──────────────────────────────────────────────┐
//	│ QUOTEGEN v1.0.0            3 quotes  ☾ dark  │
//	├──────────────────────────────────────────────┤
//	│ status banner (+ download progress bar)      │
//	│ category chips                               │
//	│ quote card                                   │
//	│ [ ✨ Generate Quote ]                         │
//	│ model or history panel, when open            │
//	├──────────────────────────────────────────────┤
//	│ help                                         │
//	└──────────────────────────────────────────────┘
//
// The Render* functions are pure: they take a theme, the relevant snapshot
// fields and a width, and return a string. They are tested directly.
//
// # Keys
//
// enter/g generates, ←/→ pick a category, f/c/s favorite, copy and share the
// current quote, m and h open the model and history panels, t toggles the
// theme and esc cancels a running generation or download.
package tui
