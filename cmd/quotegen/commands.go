package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muurk/quotegen/internal/config"
	"github.com/muurk/quotegen/internal/discovery"
	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/session"
	"github.com/muurk/quotegen/internal/share"
	"github.com/muurk/quotegen/internal/tui"
	"github.com/muurk/quotegen/internal/ui"
)

var (
	modelsJSON       bool
	generateCategory string
	generateModel    string
	generatePlain    bool
	discoverTimeout  int
	configForce      bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the runtime",
	Long: `List every model the runtime can serve, marking which are downloaded
and which one is currently active.`,
	Example: `  # Show the model list
  quotegen models

  # Machine-readable output
  quotegen models --json`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

var downloadCmd = &cobra.Command{
	Use:   "download <model-id>",
	Short: "Download a model with progress",
	Long: `Download a model to the runtime, showing progress until it completes.
Press Ctrl+C to cancel the transfer.`,
	Example: `  quotegen download tinyllama-1.1b-chat`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDownload,
}

var loadCmd = &cobra.Command{
	Use:   "load <model-id>",
	Short: "Load a downloaded model",
	Long: `Ask the runtime to make a downloaded model the active one. The model is
remembered and loaded automatically the next time quotegen starts.`,
	Example: `  quotegen load tinyllama-1.1b-chat`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLoad,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a single quote",
	Long: `Generate one quote and print it. The last loaded model is used unless
--model names another downloaded model.

Categories: ` + strings.Join(quote.CategoryKeys(), ", "),
	Example: `  # A quote from the configured default category
  quotegen generate

  # A love quote as plain text
  quotegen generate --category love --plain`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List quote categories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, c := range quote.Categories() {
			fmt.Fprintf(out, "%-12s %s %s\n", c.String(), c.Emoji(), c.Label())
		}
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find model runtimes on the local network",
	Long: `Browse mDNS for quotegen runtimes advertising the _quotegen._tcp service.
The first runtime found is used automatically when no address is configured.`,
	Example: `  quotegen discover --timeout 10`,
	Args:    cobra.NoArgs,
	RunE:    runDiscover,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		data, err := config.Marshal(registry, path)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Print the model list as JSON")

	generateCmd.Flags().StringVarP(&generateCategory, "category", "c", "",
		"Quote category (defaults to generation.default_category)")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "",
		"Model to load before generating (defaults to the last loaded model)")
	generateCmd.Flags().BoolVar(&generatePlain, "plain", false, "Print only the quote text")

	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 5, "Browse timeout in seconds")

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file without asking")
	configCmd.AddCommand(configPathCmd, configShowCmd, configInitCmd)

	rootCmd.AddCommand(modelsCmd, downloadCmd, loadCmd, generateCmd, categoriesCmd, discoverCmd, configCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	sess := a.newSession()
	defer sess.Close()

	model := tui.NewAppModel(cmd.Context(), sess, tui.Options{
		PreferredModel: a.registry.PreferredModel(),
		Theme:          a.registry.Theme(),
		OnThemeChange: func(name string) {
			a.savePreference(func(r *config.Registry) { r.SetTheme(name) })
		},
		Sharer: share.New(os.Stderr),
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil &&
		!errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	sess := a.newSession()
	defer sess.Close()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if err := sess.ListModels(cmd.Context()); err != nil {
		printer.PrintError("Failed to list models", err)
		return err
	}
	snap := sess.Snapshot()

	active := ""
	if health, err := a.client.Health(cmd.Context()); err == nil {
		active = health.Loaded
	}

	if modelsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Models)
	}

	printer.PrintHeader("Models", "quotegen models", ui.Field{Key: "Runtime", Value: a.client.BaseURL})
	printer.PrintModels(snap.Models, active)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	modelID := args[0]
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	sess := a.newSession()
	defer sess.Close()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Download", "quotegen download", ui.Field{Key: "Model", Value: modelID},
		ui.Field{Key: "Runtime", Value: a.client.BaseURL})

	bar := ui.NewDownloadBar(cmd.OutOrStdout(), modelID, ui.IsTerminal(os.Stdout))
	updates, unsubscribe := sess.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for snap := range updates {
			if snap.DownloadProgress != nil {
				bar.Set(*snap.DownloadProgress)
			}
		}
	}()

	err = sess.Download(cmd.Context(), modelID)
	unsubscribe()
	wg.Wait()

	if err != nil {
		printer.Newline()
		printer.PrintError("Download failed", err)
		return err
	}
	bar.Finish()
	printer.PrintSuccess("Model downloaded",
		ui.Field{Key: "Model", Value: modelID},
		ui.Field{Key: "Next", Value: "quotegen load " + modelID})
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	modelID := args[0]
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	sess := a.newSession()
	defer sess.Close()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if _, err := sess.Load(cmd.Context(), modelID); err != nil {
		if errors.Is(err, session.ErrLoadDeclined) {
			printer.PrintError("Model not loaded", err,
				"The runtime only loads downloaded models",
				"Download it first: quotegen download "+modelID)
		} else {
			printer.PrintError("Model not loaded", err)
		}
		return err
	}

	printer.PrintSuccess("Model loaded", ui.Field{Key: "Model", Value: modelID})
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	category := a.registry.DefaultCategory()
	if generateCategory != "" {
		if category, err = quote.ParseCategory(generateCategory); err != nil {
			return err
		}
	}

	modelID := generateModel
	if modelID == "" {
		modelID = a.registry.PreferredModel()
	}
	if modelID == "" {
		// Reuse whatever the runtime already has loaded
		if health, err := a.client.Health(cmd.Context()); err == nil {
			modelID = health.Loaded
		}
	}

	sess := a.newSession()
	defer sess.Close()

	printer := ui.NewPrinter(cmd.OutOrStdout())
	if err := sess.Init(cmd.Context(), modelID); err != nil {
		printer.PrintError("Model not ready", err)
		return err
	}

	q, err := sess.GenerateCategory(cmd.Context(), category)
	if err != nil {
		var hints []string
		if errors.Is(err, session.ErrNoModel) {
			hints = []string{
				"Download a model: quotegen download <model-id>",
				"Load it: quotegen load <model-id>",
				"See available models: quotegen models",
			}
		}
		printer.PrintError("Generation failed", err, hints...)
		return err
	}

	if generatePlain {
		fmt.Fprintln(cmd.OutOrStdout(), q.Text)
		return nil
	}
	printer.PrintQuote(q)
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	printer := ui.NewPrinter(cmd.OutOrStdout())
	printer.PrintHeader("Discover", "quotegen discover",
		ui.Field{Key: "Service", Value: discovery.ServiceType},
		ui.Field{Key: "Timeout", Value: fmt.Sprintf("%ds", discoverTimeout)})

	endpoints, err := discovery.Scan(cmd.Context(), time.Duration(discoverTimeout)*time.Second)
	if err != nil {
		printer.PrintError("Discovery failed", err)
		return err
	}
	if len(endpoints) == 0 {
		printer.PrintWarning("No runtimes found",
			ui.Field{Key: "Hint", Value: "Start one with: quotegen-runtime serve"})
		return nil
	}

	details := make([]ui.Field, 0, len(endpoints))
	for _, e := range endpoints {
		value := e.BaseURL()
		if v := e.GetMetadata("version"); v != "" {
			value += " (v" + strings.TrimPrefix(v, "v") + ")"
		}
		details = append(details, ui.Field{Key: e.Instance, Value: value})
	}
	printer.PrintSuccess(fmt.Sprintf("Found %d runtime(s)", len(endpoints)), details...)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	printer := ui.NewPrinter(cmd.OutOrStdout())

	force := configForce
	if !force {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			if !ui.IsTerminal(os.Stdin) {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			force = ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Overwrite configuration?", []string{
				"The existing file will be replaced: " + path,
				"Saved preferences (theme, last model) will be reset",
			})
			if !force {
				return nil
			}
		}
	}

	path, err := config.CreateDefaultConfig(force)
	if err != nil {
		return err
	}
	printer.PrintSuccess("Configuration written", ui.Field{Key: "Path", Value: path})
	return nil
}
