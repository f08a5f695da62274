// Quotegen generates short quotes with a locally hosted language model.
//
// It talks to a model runtime (see quotegen-runtime) to list, download and
// load models, then streams quotes for a chosen category. Generated quotes
// live only for the session; they can be favorited, copied and shared.
//
// Usage:
//
//	quotegen [command] [flags]
//
// Running without arguments launches the interactive terminal UI.
// See 'quotegen --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/quotegen/internal/config"
	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	runtimeAddr string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "quotegen",
	Short: "AI quote generator",
	Long: `Generate short inspiring quotes with a locally hosted language model.

Quotegen connects to a model runtime, lets you download and load a model,
and generates quotes for categories such as motivation, love or wisdom.

If no command is specified, the interactive terminal UI will launch.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so it logs to a file
		if cmd == rootCmd {
			logPath, err := config.GetLogPath()
			if err != nil {
				return err
			}
			return logging.InitializeToFile(logLevel, logPath)
		}
		return logging.Initialize(logLevel)
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&runtimeAddr, "runtime", "",
		"Model runtime address, host:port or URL (overrides "+config.RuntimeEnvVar+" and the config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error); defaults to "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get("quotegen"))
	},
}
