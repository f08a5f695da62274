// Package ui provides terminal output components for the quotegen CLI.
//
// Subcommands such as "quotegen download" and "quotegen generate" are not
// interactive: they print a header, report progress and finish with a
// result box. This package renders those pieces with Lipgloss so they
// match the look of the interactive TUI.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - DownloadBar: model download progress, redrawn in place on a terminal
//   - Result: success, failure and warning boxes; failures carry
//     troubleshooting hints derived from runtime errors
//   - RenderQuote and RenderModelList: the quote card and model listing
//
// Printer ties them together for a single output stream:
//
//	p := ui.NewPrinter(cmd.OutOrStdout())
//	p.PrintHeader("Model Download", "quotegen download "+id,
//	    ui.Field{Key: "Runtime", Value: addr})
//	bar := ui.NewDownloadBar(p.Writer(), "", ui.IsTerminal(os.Stdout))
//	err := sess.Download(ctx, id) // progress forwarded to bar.Set
//	bar.Finish()
//	if err != nil {
//	    p.PrintError("Download failed", err)
//	}
//
// Logging is sent to a file while these components are on screen, so zap
// output never interleaves with the rendered boxes.
package ui
