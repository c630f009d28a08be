// Package mcp exposes the class catalog to editors and agents as MCP tools.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/scssclass/pkg/indexer"
	"github.com/gnana997/scssclass/pkg/mcplog"
	"github.com/gnana997/scssclass/pkg/validator"
)

const serverVersion = "0.1.0-dev"

// Options configures a Server. Every field is optional.
type Options struct {
	// Validator backs validate_classes and analyze_usage; nil disables them.
	Validator *validator.Validator

	// CallLog records every tool call as JSONL; nil disables it.
	CallLog *mcplog.Logger

	// Logger receives diagnostic logs; nil uses slog.Default().
	Logger *slog.Logger

	// ReadOnly serves the published catalog without the rescan tool, for
	// catalogs loaded from disk.
	ReadOnly bool
}

// Server implements the MCP server, exposing class queries, completion,
// usage validation and index control.
type Server struct {
	mcpServer *server.MCPServer
	index     *indexer.ClassIndex
	validator *validator.Validator // may be nil
	callLog   *mcplog.Logger       // may be nil
	logger    *slog.Logger
	readOnly  bool
}

// NewServer creates a new MCP server over the given class index.
func NewServer(index *indexer.ClassIndex, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		index:     index,
		validator: opts.Validator,
		callLog:   opts.CallLog,
		logger:    logger,
		readOnly:  opts.ReadOnly,
	}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		serverOpts = append(serverOpts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("scssclass", serverVersion, serverOpts...)
	s.mcpServer.AddTools(s.serverTools()...)

	return s
}

// serverTools pairs every tool definition with its handler.
func (s *Server) serverTools() []server.ServerTool {
	tools := []server.ServerTool{
		{Tool: listClassesTool(), Handler: s.handleListClasses},
		{Tool: searchClassesTool(), Handler: s.handleSearchClasses},
		{Tool: getClassTool(), Handler: s.handleGetClass},
		{Tool: completeClassTool(), Handler: s.handleCompleteClass},
		{Tool: validateClassesTool(), Handler: s.handleValidateClasses},
		{Tool: analyzeUsageTool(), Handler: s.handleAnalyzeUsage},
		{Tool: getStatusTool(), Handler: s.handleGetStatus},
	}
	if !s.readOnly {
		tools = append(tools, server.ServerTool{Tool: rescanTool(), Handler: s.handleRescan})
	}
	return tools
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("MCP server listening on stdio", "version", serverVersion, "read_only", s.readOnly)
	return server.ServeStdio(s.mcpServer)
}
