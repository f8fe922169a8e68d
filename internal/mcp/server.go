package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/query"
	"github.com/takeshy/davquery/internal/store"
)

// Executor runs query blocks, as text or already parsed
type Executor interface {
	Execute(ctx context.Context, text string) (*engine.Result, error)
	ExecuteQuery(ctx context.Context, q *query.Query) (*engine.Result, error)
}

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	Executor Executor
	// Store is optional; run_saved fails without it
	Store  *store.Manager
	Logger *slog.Logger
}

// Server exposes the query engine as MCP tools
type Server struct {
	mcpServer *mcp.Server
	executor  Executor
	store     *store.Manager
	logger    *slog.Logger
}

// NewServer creates the server and registers its tools
func NewServer(config ServerConfig, version string) (*Server, error) {
	if config.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "davquery",
		Version: version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		executor:  config.Executor,
		store:     config.Store,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_query",
		Description: "Run a davquery block (command: List Files, folder, filter, format) against the WebDAV server and return the formatted items.",
	}, s.handleRunQuery)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "parse_query",
		Description: "Parse a davquery block without contacting the server. Returns the headers, filter criteria and ignored lines.",
	}, s.handleParseQuery)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_files",
		Description: "List one folder level, optionally filtered (extension, type, minsize, maxsize, favorite, mimetype, tag, owner, modifiedafter, modifiedbefore, haspreview) and formatted with {{placeholder}} tokens.",
	}, s.handleListFiles)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_saved",
		Description: "Run a query previously saved with `davquery save`.",
	}, s.handleRunSaved)
}

// RunStdio serves a single client over stdin/stdout until ctx is done
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Debug("MCP stdio session starting")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// every HTTP session shares the same tool set
func (s *Server) serverFor(*http.Request) *mcp.Server {
	return s.mcpServer
}

// NewHTTPHandler returns the SSE transport handler
func (s *Server) NewHTTPHandler() http.Handler {
	return mcp.NewSSEHandler(s.serverFor, nil)
}

// NewStreamableHTTPHandler returns the streamable HTTP transport handler
func (s *Server) NewStreamableHTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(s.serverFor, nil)
}
