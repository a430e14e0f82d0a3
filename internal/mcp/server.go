package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

// Server exposes the dispatch table as MCP tools over the session's active
// dataset, plus a load_dataset tool to replace it.
type Server struct {
	MCPServer *sdkmcp.Server

	sessions   *session.Manager
	dispatcher *agent.Dispatcher
}

// ToolOutput is the structured result of every dispatch tool. Error mirrors
// the single error record when the call failed.
type ToolOutput struct {
	Records []map[string]any `json:"records"`
	Error   string           `json:"error,omitempty"`
}

type loadDatasetInput struct {
	Path string `json:"path" jsonschema:"path to a guideline audit CSV on the server's filesystem"`
}

type loadDatasetOutput struct {
	FileName    string   `json:"file_name"`
	Fingerprint string   `json:"fingerprint"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
}

func NewServer(sessions *session.Manager, dispatcher *agent.Dispatcher, version string) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "guidelines", Version: version},
			nil,
		),
		sessions:   sessions,
		dispatcher: dispatcher,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "load_dataset",
		Description: "Load a guideline audit CSV from disk and make it the active dataset.",
	}, s.handleLoadDataset)

	for _, ts := range agent.Specs() {
		switch ts.Name {
		case agent.ToolDatasetInfo:
			addDispatchTool[agent.DatasetInfoRequest](s, ts)
		case agent.ToolOverallStatistics:
			addDispatchTool[agent.OverallStatisticsRequest](s, ts)
		case agent.ToolRankByImpact:
			addDispatchTool[agent.RankByImpactRequest](s, ts)
		case agent.ToolCompareGuideline:
			addDispatchTool[agent.CompareGuidelineRequest](s, ts)
		case agent.ToolSearchGuideline:
			addDispatchTool[agent.SearchGuidelineRequest](s, ts)
		case agent.ToolThemeGuidelines:
			addDispatchTool[agent.ThemeGuidelinesRequest](s, ts)
		case agent.ToolAnalyzeByCriteria:
			addDispatchTool[agent.CriteriaRequest](s, ts)
		case agent.ToolSiteAdherence:
			addDispatchTool[agent.SiteAdherenceRequest](s, ts)
		default:
			logger.Warn("Tool has no MCP binding", zap.String("tool", ts.Name))
		}
	}
}

// addDispatchTool registers ts with In as its typed input. Calls go back
// through the dispatcher so validation, caching and metrics match the chat
// path.
func addDispatchTool[In any](s *Server, ts agent.ToolSpec) {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        ts.Name,
		Description: ts.Description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, ToolOutput, error) {
		args, err := json.Marshal(in)
		if err != nil {
			return nil, ToolOutput{}, fmt.Errorf("failed to encode arguments: %w", err)
		}

		var (
			ds          *guideline.Dataset
			fingerprint string
		)
		if snap, err := s.sessions.Current(); err == nil {
			ds, fingerprint = snap.Dataset, snap.Fingerprint
		}

		result := s.dispatcher.Call(ctx, ds, fingerprint, ts.Name, args)
		out := ToolOutput{Records: make([]map[string]any, len(result))}
		for i, rec := range result {
			out.Records[i] = rec
		}
		if msg, isErr := result.Err(); isErr {
			out.Error = msg
		}
		return nil, out, nil
	})
}

func (s *Server) handleLoadDataset(_ context.Context, _ *sdkmcp.CallToolRequest, in loadDatasetInput) (*sdkmcp.CallToolResult, loadDatasetOutput, error) {
	if in.Path == "" {
		return nil, loadDatasetOutput{}, fmt.Errorf("path is required")
	}
	snap, err := s.sessions.LoadFile(in.Path)
	if err != nil {
		return nil, loadDatasetOutput{}, err
	}
	return nil, loadDatasetOutput{
		FileName:    snap.FileName,
		Fingerprint: snap.Fingerprint,
		Rows:        snap.Dataset.Len(),
		Columns:     snap.Dataset.Columns(),
	}, nil
}

// Run serves on transport until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	return s.MCPServer.Run(ctx, transport)
}
