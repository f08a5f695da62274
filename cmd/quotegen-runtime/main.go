// Quotegen-runtime is a stand-in model runtime for quotegen.
//
// It serves the runtime protocol (model catalog, simulated downloads, model
// loading, and streamed generation) so the quotegen CLI and TUI can run
// without a real inference service. It advertises itself over mDNS and
// exposes Prometheus metrics on /metrics.
//
// Usage:
//
//	quotegen-runtime serve [flags]
//
// See 'quotegen-runtime serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/quotegen/internal/logging"
	"github.com/muurk/quotegen/internal/runtimeserver"
	"github.com/muurk/quotegen/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quotegen-runtime",
	Short: "Quotegen stand-in model runtime",
	Long: `A standalone model runtime that speaks the quotegen runtime protocol.

Models are listed from a YAML catalog, downloads are simulated with progress
updates, and generation streams a canned quote for the requested category
token by token.

Note: For the quote generator itself, use the separate 'quotegen' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host          string
	port          int
	catalogPath   string
	noMDNS        bool
	stepDelay     time.Duration
	downloadSteps int
	tokenDelay    time.Duration
	instanceName  string
	logLevel      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the runtime",
	Long: `Start the runtime and serve the model protocol over HTTP and websockets.

The embedded catalog is used unless --catalog points at a YAML file of the form:

  models:
    - id: my-model
      name: My Model
      size_bytes: 1000000
      downloaded: false

The runtime advertises "_quotegen._tcp" over mDNS so 'quotegen discover' can
find it; pass --no-mdns on hosts without multicast.`,
	Example: `  # Serve on the default address (127.0.0.1:8765)
  quotegen-runtime serve

  # Serve on all interfaces with debug logging
  quotegen-runtime serve --host 0.0.0.0 --log-level debug

  # Fast downloads for demos
  quotegen-runtime serve --step-delay 20ms --steps 10

  # Custom catalog, no mDNS
  quotegen-runtime serve --catalog ./models.yaml --no-mdns`,
	RunE: runServe,
}

func init() {
	defaults := runtimeserver.DefaultConfig()
	serveCmd.Flags().StringVar(&host, "host", defaults.Host, "Listen address (use 0.0.0.0 for all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", defaults.Port, "Listen port")
	serveCmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a YAML model catalog (default: embedded catalog)")
	serveCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise the runtime over mDNS")
	serveCmd.Flags().DurationVar(&stepDelay, "step-delay", defaults.StepDelay, "Delay between download progress updates")
	serveCmd.Flags().IntVar(&downloadSteps, "steps", defaults.DownloadSteps, "Number of progress updates per download")
	serveCmd.Flags().DurationVar(&tokenDelay, "token-delay", defaults.TokenDelay, "Delay between generated tokens")
	serveCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default: \"quotegen-runtime on <hostname>\")")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	if downloadSteps <= 0 {
		return fmt.Errorf("--steps must be positive, got %d", downloadSteps)
	}

	if catalogPath != "" {
		if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
			return fmt.Errorf("catalog file not found: %s", catalogPath)
		}
	}

	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	config := &runtimeserver.Config{
		Host:          host,
		Port:          port,
		CatalogPath:   catalogPath,
		DownloadSteps: downloadSteps,
		StepDelay:     stepDelay,
		TokenDelay:    tokenDelay,
		Advertise:     !noMDNS,
		InstanceName:  instanceName,
	}

	srv, err := runtimeserver.New(config)
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "quotegen-runtime listening on http://%s (Ctrl+C to stop)\n", srv.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get("quotegen-runtime"))
	},
}
