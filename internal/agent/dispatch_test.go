package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

func testDataset() *guideline.Dataset {
	cols := []string{
		guideline.ColCitationCode, guideline.ColCaseStudy, guideline.ColTitle, guideline.ColTheme,
		guideline.ColTopic, guideline.ColJudgement, guideline.ColImpact, guideline.ColEstimatedCost,
	}
	return guideline.NewDataset(cols, [][]string{
		{"#1D", "Shop", "Checkout flow", "Cart", "Payment", "violated_high", "5", "low"},
		{"#1M", "Shop", "Checkout flow", "Cart", "Payment", "adhered_low", "1", "low"},
		{"#2D", "Bank", "Login form", "Account", "Auth", "violated_low", "2", ""},
		{"#3A", "Bank", "Search box", "Navigation", "Checkout", "violated_high", "x", ""},
	})
}

func call(t *testing.T, d *Dispatcher, name, args string) Result {
	t.Helper()
	return d.Call(context.Background(), testDataset(), "fp", name, json.RawMessage(args))
}

func TestDecode(t *testing.T) {
	req, err := Decode(ToolRankByPerformance, json.RawMessage(`{"group_by":["theme"],"ascending":true}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(RankByImpactRequest{GroupBy: []string{"theme"}, Ascending: true}, req); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if req, err := Decode(ToolDatasetInfo, nil); err != nil || req != (DatasetInfoRequest{}) {
		t.Errorf("no-arg decode = %v, %v", req, err)
	}

	if _, err := Decode(ToolSearchGuideline, json.RawMessage(`{}`)); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("missing search_term err = %v", err)
	}
	if _, err := Decode(ToolSiteAdherence, json.RawMessage(`{"status":"maybe"}`)); err == nil {
		t.Error("invalid status should fail")
	}
	if _, err := Decode("drop_tables", nil); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("unknown tool err = %v", err)
	}
	if _, err := Decode(ToolThemeGuidelines, json.RawMessage(`{"theme": 3}`)); err == nil {
		t.Error("wrong argument type should fail")
	}
}

func TestCallReturnsErrorRecordsInsteadOfFailing(t *testing.T) {
	d := NewDispatcher(nil, 0)
	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"unknown tool", "bogus", `{}`, "Unknown function: bogus"},
		{"guideline not found", ToolCompareGuideline, `{"guideline_id":"Nope"}`, "Guideline 'Nope' not found"},
		{"theme not found", ToolThemeGuidelines, `{"theme":"Nope"}`, "Theme 'Nope' not found"},
		{"topic outside theme", ToolThemeGuidelines, `{"theme":"Cart","topic":"Checkout"}`, "Topic 'Checkout' not found within theme 'Cart'"},
		{"unknown group field", ToolRankByImpact, `{"group_by":["colour"]}`, "unknown group-by field: colour"},
		{"malformed json", ToolSearchGuideline, `{`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := call(t, d, tt.tool, tt.args).Err()
			if !ok {
				t.Fatalf("expected error record")
			}
			if tt.want != "" && msg != tt.want {
				t.Errorf("message = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestCallWithoutDataset(t *testing.T) {
	got := NewDispatcher(nil, 0).Call(context.Background(), nil, "", ToolOverallStatistics, nil)
	if msg, ok := got.Err(); !ok || msg != "No dataset loaded" {
		t.Errorf("got %v", got)
	}
}

func TestCallNoImpactData(t *testing.T) {
	ds := guideline.NewDataset([]string{guideline.ColCaseStudy}, [][]string{{"A"}})
	got := NewDispatcher(nil, 0).Call(context.Background(), ds, "", ToolRankByImpact, nil)
	if msg, ok := got.Err(); !ok || msg != "No impact data available" {
		t.Errorf("got %v", got)
	}
}

func TestExecuteResults(t *testing.T) {
	d := NewDispatcher(nil, 0)

	stats := call(t, d, ToolOverallStatistics, "")
	if diff := cmp.Diff(Result{{"Total Guidelines": 4, "Desktop": 2, "Mobile": 1, "App": 1}}, stats); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}

	rank := call(t, d, ToolRankByImpact, `{}`)
	want := Result{
		{guideline.ColCaseStudy: "Shop", "Average_Impact": 3.0, "Guidelines_Count": 2},
		{guideline.ColCaseStudy: "Bank", "Average_Impact": 2.0, "Guidelines_Count": 1},
	}
	if diff := cmp.Diff(want, rank); diff != "" {
		t.Errorf("rank (-want +got):\n%s", diff)
	}

	info := call(t, d, ToolDatasetInfo, "")
	if len(info) != 1 || info[0]["total_rows"] != 4.0 {
		t.Errorf("info = %v", info)
	}

	compare := call(t, d, ToolCompareGuideline, `{"guideline_id":"checkout flow","platform":"Mobile"}`)
	if len(compare) != 1 || compare[0][guideline.ColCitationCode] != "#1M" {
		t.Errorf("compare = %v", compare)
	}

	adherence := call(t, d, ToolSiteAdherence, `{"status":"violated"}`)
	wantAdherence := Result{
		{guideline.ColCaseStudy: "Bank", "count": 2},
		{guideline.ColCaseStudy: "Shop", "count": 1},
	}
	if diff := cmp.Diff(wantAdherence, adherence); diff != "" {
		t.Errorf("adherence (-want +got):\n%s", diff)
	}

	criteria := call(t, d, ToolAnalyzeByCriteria, `{"violated":true,"high_impact":true,"low_cost":true}`)
	if len(criteria) != 1 || criteria[0][guideline.ColTitle] != "Checkout flow" {
		t.Errorf("criteria = %v", criteria)
	}

	search := call(t, d, ToolSearchGuideline, `{"search_term":"LOGIN"}`)
	if len(search) != 1 || search[0][guideline.ColTheme] != "Account" {
		t.Errorf("search = %v", search)
	}
}

type memoryCache struct {
	data map[string][]byte
	sets int
}

func (m *memoryCache) GetResult(_ context.Context, key string, out any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (m *memoryCache) SetResult(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.sets++
	m.data[key] = b
	return nil
}

func TestCallUsesCache(t *testing.T) {
	cache := &memoryCache{data: map[string][]byte{}}
	d := NewDispatcher(cache, time.Minute)

	first := call(t, d, ToolSearchGuideline, `{"search_term":"checkout"}`)
	second := call(t, d, ToolSearchGuideline, `{"search_term":"checkout"}`)
	if cache.sets != 1 {
		t.Errorf("sets = %d, want 1", cache.sets)
	}
	if len(first) != len(second) {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}

	ds := testDataset()
	d.Call(context.Background(), ds, "", ToolSearchGuideline, json.RawMessage(`{"search_term":"checkout"}`))
	if cache.sets != 1 {
		t.Error("calls without a fingerprint must bypass the cache")
	}
}

func TestSpecsCoverDispatchTable(t *testing.T) {
	specs := Specs()
	if len(specs) != 8 {
		t.Fatalf("specs = %d", len(specs))
	}
	for _, s := range specs {
		if _, err := Decode(s.Name, nil); errors.Is(err, ErrUnknownTool) {
			t.Errorf("tool %s is not dispatchable", s.Name)
		}
	}
	tools := OpenAITools()
	if len(tools) != len(specs) || tools[0].Function.Name != ToolDatasetInfo {
		t.Errorf("tools = %+v", tools)
	}
}
