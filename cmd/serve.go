package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/takeshy/davquery/internal/mcp"
	"github.com/takeshy/davquery/internal/store"
)

const envServeAPIKey = "DAVQUERY_SERVE_API_KEY"

var (
	serveTransport string
	servePort      int
	serveAPIKey    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server for AI assistant integration",
	Long: `Serve the query engine over the Model Context Protocol.

Tools:
  run_query    run a query block and return the formatted items
  parse_query  show how a block is parsed, with diagnostics
  list_files   list a folder from structured arguments
  run_saved    run a query saved with 'davquery save'

The stdio transport is meant to be spawned by an MCP client. The sse and
http transports listen on --port and only accept requests carrying the key
from --serve-api-key or DAVQUERY_SERVE_API_KEY (X-API-Key header, bearer
token, or api_key query parameter).

Example:
  davquery serve
  DAVQUERY_SERVE_API_KEY=s3cret davquery serve --transport http --port 9090

MCP client entry:
  "davquery": {
    "command": "davquery",
    "args": ["serve"],
    "env": {"DAVQUERY_URL": "https://cloud.example.com", "DAVQUERY_USER": "alice", "DAVQUERY_PASSWORD": "app-password"}
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "Transport: stdio, sse, or http")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Listen port for the sse and http transports")
	serveCmd.Flags().StringVar(&serveAPIKey, "serve-api-key", "", "API key required by the sse and http transports")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	storeManager, err := store.NewManager(cfg.DataFilePath())
	if err != nil {
		return fmt.Errorf("failed to initialize store manager: %w", err)
	}

	config := mcpserver.ServerConfig{
		Executor: eng,
		Store:    storeManager,
		Logger:   slog.Default(),
	}

	server, err := mcpserver.NewServer(config, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// cancelled on SIGINT/SIGTERM
	ctx := cmd.Context()

	var handler http.Handler
	switch serveTransport {
	case "stdio":
		slog.Info("serving MCP on stdio")
		return server.RunStdio(ctx)
	case "sse":
		handler = server.NewHTTPHandler()
	case "http":
		handler = server.NewStreamableHTTPHandler()
	default:
		return fmt.Errorf("unknown transport %q: expected stdio, sse, or http", serveTransport)
	}

	key := serveAPIKey
	if key == "" {
		key = os.Getenv(envServeAPIKey)
	}
	if key == "" {
		return fmt.Errorf("the %s transport requires an API key: use --serve-api-key or %s", serveTransport, envServeAPIKey)
	}

	return listenAndServe(ctx, fmt.Sprintf(":%d", servePort), mcpserver.APIKeyMiddleware(key, handler))
}

// listenAndServe runs srv until ctx is done, then shuts it down
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving MCP over HTTP", "addr", addr, "transport", serveTransport)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
