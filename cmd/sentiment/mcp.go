package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m-alasadi/Arabic-Sentiment-Analyzer/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the pipeline as an MCP (Model Context Protocol) server",
		Long: `Start an MCP server that exposes the retraining pipeline over stdio.

The MCP server allows AI tools to invoke pipeline operations directly:

  • model_resolve   - Resolve which model version to load, with fallback
  • model_versions  - List model versions and their completeness
  • model_retrain   - Run the retraining pipeline

The server communicates via JSON-RPC 2.0 over stdin/stdout, following the
Model Context Protocol specification.

Example usage in an MCP client config:

  {
    "mcpServers": {
      "sentiment": {
        "command": "sentiment",
        "args": ["mcp-server"]
      }
    }
  }
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcp.NewServer(&mcp.Config{
				Name:    "sentiment",
				Version: buildVersion,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer server.Close()

			// Run server (blocks until client disconnects or SIGTERM/SIGINT)
			if err := server.Run(context.Background()); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}
}
