package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/kvttl/storage"
)

// StorageGetHandler returns the MCP tool handler for the "storage-get" tool.
func StorageGetHandler(s *storage.Storage) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := s.Get(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatValue(v)), nil
	}
}

// StorageSetHandler returns the MCP tool handler for the "storage-set" tool.
func StorageSetHandler(s *storage.Storage) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		raw, err := req.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var opts []storage.SetOption
		if _, ok := req.GetArguments()["expires_in_minutes"]; ok {
			minutes, err := req.RequireFloat("expires_in_minutes")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts = append(opts, storage.ExpiresIn(minutes))
		}
		if err := s.Set(key, parseValue(raw), opts...); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("OK"), nil
	}
}

// StorageRemoveHandler returns the MCP tool handler for the "storage-remove" tool.
func StorageRemoveHandler(s *storage.Storage) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.Remove(key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("OK"), nil
	}
}

// StorageClearHandler returns the MCP tool handler for the "storage-clear" tool.
func StorageClearHandler(s *storage.Storage) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.Clear(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared namespace %s", s.ID())), nil
	}
}

// parseValue treats valid JSON input as structured data and anything else as text.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil && v != nil {
		return v
	}
	return raw
}

func formatValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
