package main

import (
	"fmt"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/mcp"
	"github.com/guideline-analyzer/backend/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the dispatch table as an MCP server over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	uploadDir, err := os.MkdirTemp("", "guidelines-mcp-")
	if err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}
	defer os.RemoveAll(uploadDir)

	sessions := session.NewManager(filepath.Join(uploadDir, "uploads"), nil)
	if _, err := sessions.LoadFile(rootFlags.file); err != nil {
		return fmt.Errorf("load %s: %w", rootFlags.file, err)
	}

	srv := mcp.NewServer(sessions, agent.NewDispatcher(nil, 0), version)
	return srv.Run(cmd.Context(), &sdkmcp.StdioTransport{})
}
