// Package mcp exposes the retraining pipeline over the Model Context
// Protocol, so AI tools can resolve model versions and trigger retraining
// runs via JSON-RPC over stdio.
package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/config"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/pipeline"
	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	// Name is the server name reported to clients.
	Name string

	// Version is the server version reported to clients.
	Version string
}

// Server wraps an MCP server exposing the pipeline tools.
type Server struct {
	server *mcp.Server

	mu     sync.Mutex
	closed bool
}

// NewServer creates an MCP server with the resolve, list, and retrain tools
// registered.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_resolve",
		Description: "Resolve which model version to load for a requested version directory, falling back to older generations when the requested one is missing or incomplete.",
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_versions",
		Description: "List model version directories under a root, newest generation first, with structural completeness.",
	}, s.handleVersions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_retrain",
		Description: "Run the active-learning retraining pipeline: fine-tune the base model on a correction store and persist the result as a new immutable version.",
	}, s.handleRetrain)

	return s, nil
}

// Run serves MCP over stdio until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close releases server resources. Safe to call multiple times.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type resolveArgs struct {
	Path string `json:"path" jsonschema:"path of the requested model version directory"`
}

type resolveResult struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Generation int    `json:"generation"`
}

func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest, args resolveArgs) (*mcp.CallToolResult, resolveResult, error) {
	v, err := version.Resolve(args.Path)
	if err != nil {
		return nil, resolveResult{}, err
	}
	return nil, resolveResult{Path: v.Path, Name: v.Name, Generation: v.Generation}, nil
}

type versionsArgs struct {
	Dir string `json:"dir" jsonschema:"directory holding model version directories"`
}

type versionsResult struct {
	Versions []version.Info `json:"versions"`
}

func (s *Server) handleVersions(ctx context.Context, req *mcp.CallToolRequest, args versionsArgs) (*mcp.CallToolResult, versionsResult, error) {
	infos, err := version.List(args.Dir)
	if err != nil {
		return nil, versionsResult{}, err
	}
	return nil, versionsResult{Versions: infos}, nil
}

type retrainArgs struct {
	ModelDir    string  `json:"model_dir" jsonschema:"path of the base model version"`
	OutputDir   string  `json:"output_dir" jsonschema:"where the new version is written"`
	Corrections string  `json:"corrections" jsonschema:"path of the correction store (CSV, JSONL, or SQLite)"`
	Epochs      int     `json:"epochs,omitempty" jsonschema:"training epochs (default 3)"`
	BatchSize   int     `json:"batch_size,omitempty" jsonschema:"batch size (default 8)"`
	LearnRate   float64 `json:"learning_rate,omitempty" jsonschema:"learning rate (default 2e-5)"`
	MaxLength   int     `json:"max_length,omitempty" jsonschema:"max feature length (default 256)"`
	Seed        int64   `json:"seed,omitempty" jsonschema:"run seed (default 42)"`
}

func (s *Server) handleRetrain(ctx context.Context, req *mcp.CallToolRequest, args retrainArgs) (*mcp.CallToolResult, *pipeline.Summary, error) {
	cfg := config.Default()
	cfg.ModelDir = args.ModelDir
	cfg.OutputDir = args.OutputDir
	if args.Corrections != "" {
		cfg.Corrections = args.Corrections
	}
	if args.Epochs > 0 {
		cfg.Epochs = args.Epochs
	}
	if args.BatchSize > 0 {
		cfg.BatchSize = args.BatchSize
	}
	if args.LearnRate > 0 {
		cfg.LearningRate = args.LearnRate
	}
	if args.MaxLength > 0 {
		cfg.MaxLength = args.MaxLength
	}
	if args.Seed != 0 {
		cfg.Seed = args.Seed
	}

	summary, err := pipeline.Run(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return nil, summary, nil
}
