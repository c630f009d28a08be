package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/scssclass/pkg/mcplog"
)

// loggingMiddleware returns a ToolHandlerMiddleware that records every tool
// call as a JSONL entry in the call log. Only installed when the call log
// is enabled.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := s.callLog.Now()
			result, err := next(ctx, req)
			elapsed := s.callLog.Now().Sub(start)

			entry := mcplog.NewEntry(req.Params.Name, req.GetArguments(), start, elapsed, result, err)
			if qs := s.index.Current(); qs != nil {
				entry.PassID = qs.Catalog.PassID
			}
			if werr := s.callLog.Write(entry); werr != nil {
				s.logger.Warn("failed to write tool call log", "tool", req.Params.Name, "error", werr)
			}

			return result, err
		}
	}
}
