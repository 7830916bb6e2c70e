// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes redate tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/dateparts"
	"github.com/starford/redate/internal/rename"
	"github.com/starford/redate/internal/session"
)

const guideURI = "redate://position-guide"

// Server wraps the MCP server with redate tools.
type Server struct {
	mcp       *server.MCPServer
	svc       *session.Service
	separator string
}

// New creates a new MCP server with all redate tools registered.
// separator is used when a call does not pass one.
func New(svc *session.Service, separator string) *Server {
	s := &Server{svc: svc, separator: separator}

	s.mcp = server.NewMCPServer(
		"redate",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("preview_filename",
		append([]mcp.ToolOption{
			mcp.WithDescription("Show the new name one sample file would get. " +
				"Read the position guide first via the redate://position-guide resource."),
			mcp.WithString("sample", mcp.Required(), mcp.Description("Sample file name, with extension")),
		}, layoutOptions()...)...,
	), s.previewFilename)

	s.mcp.AddTool(mcp.NewTool("plan_rename",
		append([]mcp.ToolOption{
			mcp.WithDescription("Dry-run a folder rename. Nothing on disk changes. " +
				"Returns the planned mapping and a checksum for execute_rename."),
		}, layoutOptions()...)...,
	), s.planRename)

	s.mcp.AddTool(mcp.NewTool("execute_rename",
		append([]mcp.ToolOption{
			mcp.WithDescription("Rename the files of a folder. The batch can be reversed with undo_last_batch."),
			mcp.WithString("checksum", mcp.Description("Checksum returned by plan_rename; the call fails if the plan changed")),
		}, layoutOptions()...)...,
	), s.executeRename)

	s.mcp.AddTool(mcp.NewTool("undo_last_batch",
		mcp.WithDescription("Reverse the most recent rename batch."),
		mcp.WithBoolean("confirm_partial", mcp.Description("Drop the batch even if only part of it could be reversed")),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would be reversed without touching files")),
	), s.undoLastBatch)

	s.mcp.AddTool(mcp.NewTool("list_pending_undo",
		mcp.WithDescription("List batches that can still be undone, most recent first."),
	), s.listPendingUndo)

	s.mcp.AddTool(mcp.NewTool("rename_history",
		mcp.WithDescription("List journaled batches, newest first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.renameHistory)

	s.mcp.AddTool(mcp.NewTool("count_full_months",
		mcp.WithDescription("Count files whose names spell out a full month name."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Absolute folder path")),
	), s.countFullMonths)

	s.mcp.AddTool(mcp.NewTool("normalize_months",
		mcp.WithDescription("Replace full month names in file names with their 3-letter abbreviation."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Absolute folder path")),
		mcp.WithBoolean("dry_run", mcp.Description("Only plan, do not rename")),
	), s.normalizeMonths)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Position Guide",
			mcp.WithResourceDescription("How to describe where the date sits in a file name."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPositionGuide,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func layoutOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("folder", mcp.Required(), mcp.Description("Absolute folder path")),
		mcp.WithString("prefix", mcp.Description("Text placed before the date")),
		mcp.WithString("year", mcp.Required(), mcp.Description("Year position as start:length (0-based, e.g. 4:4)")),
		mcp.WithString("month", mcp.Required(), mcp.Description("Month position as start:length")),
		mcp.WithString("day", mcp.Description("Day position as start:length; omit if names carry no day")),
		mcp.WithBoolean("textual_month", mcp.Description("Month is a 3-letter name such as Jan")),
		mcp.WithNumber("expected_length", mcp.Required(), mcp.Description("Length of the base name without extension")),
		mcp.WithString("separator", mcp.Description("Text between year, month and day")),
	}
}

// requestFrom builds a rename request from tool arguments.
func (s *Server) requestFrom(req mcp.CallToolRequest) (rename.Request, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return rename.Request{}, err
	}
	length, err := req.RequireInt("expected_length")
	if err != nil {
		return rename.Request{}, err
	}

	layout := &dateparts.Layout{TextualMonth: req.GetBool("textual_month", false)}
	if layout.Year, err = requireSpec(req, "year"); err != nil {
		return rename.Request{}, err
	}
	if layout.Month, err = requireSpec(req, "month"); err != nil {
		return rename.Request{}, err
	}
	if d := req.GetString("day", ""); d != "" {
		day, err := dateparts.ParseSpec(d)
		if err != nil {
			return rename.Request{}, fmt.Errorf("day: %w", err)
		}
		layout.Day = &day
	}

	return rename.Request{
		Folder:         folder,
		Prefix:         req.GetString("prefix", ""),
		Layout:         layout,
		ExpectedLength: length,
		Separator:      req.GetString("separator", s.separator),
	}, nil
}

func requireSpec(req mcp.CallToolRequest, key string) (dateparts.PositionSpec, error) {
	raw, err := req.RequireString(key)
	if err != nil {
		return dateparts.PositionSpec{}, err
	}
	p, err := dateparts.ParseSpec(raw)
	if err != nil {
		return dateparts.PositionSpec{}, fmt.Errorf("%s: %w", key, err)
	}
	return p, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) previewFilename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sample, err := req.RequireString("sample")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.requestFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Preview(ctx, r, sample)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) planRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.requestFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Plan(ctx, r)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) executeRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.requestFrom(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Rename(ctx, r, req.GetString("checksum", ""))
	if err != nil {
		var fe *apperr.FileOperationError
		if errors.As(err, &fe) {
			out := jsonResult(res)
			out.IsError = true
			return out, nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) undoLastBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Undo(ctx, req.GetBool("confirm_partial", false), req.GetBool("dry_run", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep), nil
}

func (s *Server) listPendingUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pending := s.svc.Pending()
	if len(pending) == 0 {
		return mcp.NewToolResultText("no batches to undo"), nil
	}
	return jsonResult(pending), nil
}

func (s *Server) renameHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, total, err := s.svc.History(req.GetInt("limit", 0), req.GetInt("offset", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"batches": rows, "total": total}), nil
}

func (s *Server) countFullMonths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.CountMonths(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d", n)), nil
}

func (s *Server) normalizeMonths(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.NormalizeMonths(ctx, folder, req.GetBool("dry_run", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) readPositionGuide(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     PositionGuide,
		},
	}, nil
}
