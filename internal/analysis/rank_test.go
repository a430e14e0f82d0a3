package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

func TestRankByImpactDefaultsToCaseStudyDescending(t *testing.T) {
	ds := table(t, []string{guideline.ColCaseStudy, guideline.ColImpact},
		[]string{"A", "2"},
		[]string{"A", "4"},
		[]string{"B", "10"},
	)
	g, err := RankByImpact(ds, nil, false)
	if err != nil {
		t.Fatalf("RankByImpact: %v", err)
	}
	want := []GroupStat{
		{Keys: []string{"B"}, MeanImpact: 10, HasMean: true, Count: 1, Size: 1},
		{Keys: []string{"A"}, MeanImpact: 3, HasMean: true, Count: 2, Size: 2, StdDev: math.Sqrt2, HasStdDev: true},
	}
	if diff := cmp.Diff(want, g.Groups, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{guideline.ColCaseStudy}, g.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestRankByImpactExcludesNonNumericFromMean(t *testing.T) {
	ds := table(t, []string{guideline.ColCaseStudy, guideline.ColImpact},
		[]string{"A", "2"},
		[]string{"A", "bad"},
		[]string{"B", ""},
	)
	g, err := RankByImpact(ds, nil, true)
	if err != nil {
		t.Fatalf("RankByImpact: %v", err)
	}
	if len(g.Groups) != 2 {
		t.Fatalf("groups = %d", len(g.Groups))
	}
	a, b := g.Groups[0], g.Groups[1]
	if a.Keys[0] != "A" || a.MeanImpact != 2 || a.Count != 1 || a.Size != 2 {
		t.Errorf("A = %+v", a)
	}
	if b.Keys[0] != "B" || b.HasMean {
		t.Errorf("B should sort last with no mean: %+v", b)
	}
}

func TestRankByImpactGroupings(t *testing.T) {
	ds := fixture(t)

	g, err := RankByImpact(ds, []string{"Citation Code: Platform-Specific", "theme"}, false)
	if err != nil {
		t.Fatalf("RankByImpact: %v", err)
	}
	if diff := cmp.Diff([]string{FieldPlatform, guideline.ColTheme}, g.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
	if got := g.Groups[0].Keys; got[0] != "Desktop" || got[1] != "Account" {
		t.Errorf("first group = %v", got)
	}

	if _, err := RankByImpact(ds, []string{"colour"}, false); !errors.Is(err, ErrUnknownField) {
		t.Errorf("unknown field err = %v", err)
	}
}

func TestRankByImpactNoImpactData(t *testing.T) {
	noImpact := table(t, []string{guideline.ColCaseStudy}, []string{"A"})
	if _, err := RankByImpact(noImpact, nil, false); !errors.Is(err, ErrNoImpactData) {
		t.Errorf("missing column err = %v", err)
	}
	empty := guideline.NewDataset([]string{guideline.ColCaseStudy, guideline.ColImpact}, nil)
	if _, err := RankByImpact(empty, nil, false); !errors.Is(err, ErrNoImpactData) {
		t.Errorf("empty dataset err = %v", err)
	}
}

func TestPlatformPerformance(t *testing.T) {
	got, err := PlatformPerformance(fixture(t))
	if err != nil {
		t.Fatalf("PlatformPerformance: %v", err)
	}
	want := []PlatformScore{
		{Platform: "Desktop", MeanImpact: 4.5, Count: 2},
		{Platform: "Mobile", MeanImpact: -0.5, Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
