package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/session"
)

const auditCSV = "Citation Code: Platform-Specific,Review Title,Case Study Title,Judgement,Title,Catalog Theme Title,Impact\n" +
	"#1D,R,Shop,adhered_high,Checkout flow,Cart,4\n" +
	"#1M,R,Shop,violated_low,Checkout flow,Cart,-2\n" +
	"#2A,R,Bank,violated_high,Login form,Account,5\n"

func connect(t *testing.T, ctx context.Context, srv *Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	if _, err := srv.MCPServer.Connect(ctx, t1, nil); err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, ctx context.Context, cs *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	for _, c := range res.Content {
		tc, ok := c.(*sdkmcp.TextContent)
		if !ok {
			continue
		}
		if res.IsError {
			t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
		}
		if err := json.Unmarshal([]byte(tc.Text), out); err != nil {
			t.Fatalf("unmarshal %s result: %v (text: %s)", name, err, tc.Text)
		}
		return
	}
	t.Fatalf("no text content in %s result", name)
}

func TestListTools(t *testing.T) {
	ctx := context.Background()
	srv := NewServer(session.NewManager(t.TempDir(), nil), agent.NewDispatcher(nil, 0), "test")
	cs := connect(t, ctx, srv)

	res, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, ts := range agent.Specs() {
		if !names[ts.Name] {
			t.Errorf("tool %s not registered", ts.Name)
		}
	}
	if !names["load_dataset"] {
		t.Error("load_dataset not registered")
	}
}

func TestDispatchToolsOverLoadedDataset(t *testing.T) {
	ctx := context.Background()
	srv := NewServer(session.NewManager(t.TempDir(), nil), agent.NewDispatcher(nil, 0), "test")
	cs := connect(t, ctx, srv)

	var stats ToolOutput
	callTool(t, ctx, cs, agent.ToolOverallStatistics, map[string]any{}, &stats)
	if stats.Error != agent.ErrNoDataset.Error() {
		t.Errorf("statistics before load = %+v", stats)
	}

	path := filepath.Join(t.TempDir(), "audit.csv")
	if err := os.WriteFile(path, []byte(auditCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	var loaded loadDatasetOutput
	callTool(t, ctx, cs, "load_dataset", map[string]any{"path": path}, &loaded)
	if loaded.Rows != 3 {
		t.Fatalf("load_dataset = %+v", loaded)
	}

	var after ToolOutput
	callTool(t, ctx, cs, agent.ToolOverallStatistics, map[string]any{}, &after)
	if after.Error != "" || len(after.Records) != 1 || after.Records[0]["Total Guidelines"] != float64(3) {
		t.Errorf("statistics after load = %+v", after)
	}

	var compare ToolOutput
	callTool(t, ctx, cs, agent.ToolCompareGuideline, map[string]any{"guideline_id": "no such guideline"}, &compare)
	if compare.Error != "Guideline 'no such guideline' not found" {
		t.Errorf("compare = %+v", compare)
	}

	var rank ToolOutput
	callTool(t, ctx, cs, agent.ToolRankByImpact, map[string]any{"group_by": []string{"platform"}}, &rank)
	if len(rank.Records) != 3 {
		t.Errorf("rank = %+v", rank)
	}
}
