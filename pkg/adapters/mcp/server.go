package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/stepper"
	"github.com/aretw0/stepper/pkg/design"
	"github.com/aretw0/stepper/pkg/sequencer"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SequencesURI lists the stored sequence names.
const SequencesURI = "stepper://sequences"

// Engine is the part of stepper.Engine exposed to MCP clients.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Current(ctx context.Context, name string) (stepper.View, error)
	Next(ctx context.Context, name string) (stepper.View, error)
	Prev(ctx context.Context, name string) (stepper.View, error)
	Reset(ctx context.Context, name string) (stepper.View, error)
	GoTo(ctx context.Context, name, path string) (stepper.View, error)
	Apply(ctx context.Context, name string, d *design.Design) ([]sequencer.CommitResult, error)
	Diagram(ctx context.Context, name string) (string, error)
}

var _ Engine = (*stepper.Engine)(nil)

// Server wraps an Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mcpServer: server.NewMCPServer("stepper-mcp", strings.TrimSpace(stepper.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Serve speaks JSON-RPC over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

type sequenceArgs struct {
	Sequence string `json:"sequence"`
}

type navigateArgs struct {
	Sequence string `json:"sequence"`
	Action   string `json:"action"`
	Path     string `json:"path"`
}

type applyArgs struct {
	Sequence string `json:"sequence"`
	Design   string `json:"design"`
}

// ApplyResponse reports one commit per table of the design.
type ApplyResponse struct {
	Commits []sequencer.CommitResult `json:"commits"`
	View    stepper.View             `json:"view"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_sequences",
		mcp.WithDescription("List the names of the stored sequences."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.engine.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		data, _ := json.Marshal(names)
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("current_step",
		mcp.WithDescription("Report the selected step of a sequence."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence name")),
		mcp.WithOutputSchema[stepper.View](),
	), mcp.NewStructuredToolHandler(s.handleCurrent))

	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Move through a sequence: next, prev, reset or goto a path."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence name")),
		mcp.WithString("action", mcp.Required(), mcp.Enum("next", "prev", "reset", "goto")),
		mcp.WithString("path", mcp.Description("Target path for goto, ids joined by '/'")),
		mcp.WithOutputSchema[stepper.View](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("apply_design",
		mcp.WithDescription("Build the tables of a YAML design and commit them to a sequence."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence name")),
		mcp.WithString("design", mcp.Required(), mcp.Description("Design document (YAML)")),
		mcp.WithOutputSchema[ApplyResponse](),
	), mcp.NewStructuredToolHandler(s.handleApply))

	s.mcpServer.AddTool(mcp.NewTool("diagram",
		mcp.WithDescription("Render the tree of a sequence."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence name")),
	), mcp.NewTypedToolHandler(func(ctx context.Context, request mcp.CallToolRequest, args sequenceArgs) (*mcp.CallToolResult, error) {
		out, err := s.engine.Diagram(ctx, args.Sequence)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("diagram failed: %v", err)), nil
		}
		return mcp.NewToolResultText(out), nil
	}))
}

func (s *Server) handleCurrent(ctx context.Context, request mcp.CallToolRequest, args sequenceArgs) (stepper.View, error) {
	return s.engine.Current(ctx, args.Sequence)
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest, args navigateArgs) (stepper.View, error) {
	switch args.Action {
	case "next":
		return s.engine.Next(ctx, args.Sequence)
	case "prev":
		return s.engine.Prev(ctx, args.Sequence)
	case "reset":
		return s.engine.Reset(ctx, args.Sequence)
	case "goto":
		if args.Path == "" {
			return stepper.View{}, fmt.Errorf("goto requires a path")
		}
		return s.engine.GoTo(ctx, args.Sequence, args.Path)
	}
	return stepper.View{}, fmt.Errorf("unknown action %q", args.Action)
}

func (s *Server) handleApply(ctx context.Context, request mcp.CallToolRequest, args applyArgs) (ApplyResponse, error) {
	d, err := design.ParseBytes([]byte(args.Design))
	if err != nil {
		return ApplyResponse{}, err
	}
	results, err := s.engine.Apply(ctx, args.Sequence, d)
	if err != nil {
		s.logger.Warn("mcp apply failed", "sequence", args.Sequence, "error", err)
		return ApplyResponse{}, err
	}
	view, err := s.engine.Current(ctx, args.Sequence)
	if err != nil {
		return ApplyResponse{}, err
	}
	return ApplyResponse{Commits: results, View: view}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SequencesURI, "Stored sequences",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.engine.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sequences: %w", err)
		}
		data, _ := json.Marshal(names)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SequencesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
