package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/takeshy/davquery/internal/config"
	"github.com/takeshy/davquery/internal/dates"
	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/format"
	"github.com/takeshy/davquery/internal/webdav"
)

var (
	Version     = "dev"
	configPath  string
	serverURL   string
	username    string
	password    string
	dataFile    string
	debugMode   bool
	parallelism int
)

// errReported signals a failure that has already been shown to the user
var errReported = errors.New("failed")

var rootCmd = &cobra.Command{
	Use:     "davquery",
	Short:   "Query WebDAV folders with a small block language",
	Version: Version,
	Long: `davquery lists files from a WebDAV server (Nextcloud, ownCloud) using
query blocks like:

  command: List Files
  folder: /Photos
  filter:
      - extension: jpg,png
      - modifiedafter: now - 7 days
  format: {{name}} ({{sizekb}} KB) {{favorite}}

Connection settings come from the config file, DAVQUERY_URL, DAVQUERY_USER
and DAVQUERY_PASSWORD, or the --url, --user and --password flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debugMode {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: search $DAVQUERY_CONFIG_DIR, ~/.config/davquery, ./davquery.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "WebDAV server base URL (or set DAVQUERY_URL env var)")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "Username (or set DAVQUERY_USER env var)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Password or app token (or set DAVQUERY_PASSWORD env var)")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data-file", "d", "", "Path to saved query file (default: ~/.davquery.json)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVarP(&parallelism, "parallelism", "p", config.DefaultParallelism, "Number of saved queries run in parallel")
}

// loadConfig reads the config file and applies environment and flag overrides
func loadConfig() (*config.Config, error) {
	cfg, path, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("loaded config", "path", path)
	}

	cfg.ApplyEnv(os.Getenv)

	if serverURL != "" {
		cfg.URL = serverURL
	}
	if username != "" {
		cfg.Username = username
	}
	if password != "" {
		cfg.Password = password
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if rootCmd.PersistentFlags().Changed("parallelism") {
		cfg.Parallelism = parallelism
	}

	return cfg, nil
}

// newClient creates the WebDAV client for cfg
func newClient(cfg *config.Config) (*webdav.Client, error) {
	conn := cfg.Connection()
	if missing := conn.Missing(); len(missing) > 0 {
		return nil, &engine.ConfigurationError{Missing: missing}
	}

	return webdav.NewClient(webdav.Options{
		BaseURL:  conn.BaseURL,
		Username: conn.Username,
		Password: conn.Password,
		DAVPath:  conn.DAVPath,
		Timeout:  cfg.Timeout,
		Logger:   slog.Default(),
	})
}

// newEngine creates a query engine for cfg. An incomplete connection is
// reported by the engine when a query runs.
func newEngine(cfg *config.Config) (*engine.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var fetcher engine.Fetcher
	if cfg.Connection().Complete() {
		client, err := newClient(cfg)
		if err != nil {
			return nil, err
		}
		fetcher = client
	}

	return engine.New(cfg.Connection(), fetcher,
		engine.WithLogger(slog.Default()),
		engine.WithResolver(&dates.Resolver{Location: loc}),
		engine.WithFormatter(&format.Formatter{
			DateLayout:     cfg.DateLayout,
			DatetimeLayout: cfg.DatetimeLayout,
			Location:       loc,
		}),
	), nil
}

// readQueryText reads a query block from a file, or from stdin for "-" or no argument
func readQueryText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}
	return string(data), nil
}
