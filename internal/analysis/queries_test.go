package analysis

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

func TestCompareGuideline(t *testing.T) {
	ds := fixture(t)

	got, err := CompareGuideline(ds, "  checkout FLOW ", "")
	if err != nil {
		t.Fatalf("CompareGuideline: %v", err)
	}
	if diff := cmp.Diff([]string{"#1D", "#1M"}, codes(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	wantCols := []string{guideline.ColCaseStudy, guideline.ColImpact, guideline.ColCitationCode, guideline.ColEstimatedCost}
	if diff := cmp.Diff(wantCols, got.Columns()); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}

	mobile, err := CompareGuideline(ds, "Checkout flow", "mobile")
	if err != nil {
		t.Fatalf("CompareGuideline: %v", err)
	}
	if diff := cmp.Diff([]string{"#1M"}, codes(mobile)); diff != "" {
		t.Errorf("mobile (-want +got):\n%s", diff)
	}

	_, err = CompareGuideline(ds, "Checkout", "")
	var nf *NotFoundError
	if !errors.As(err, &nf) || err.Error() != "Guideline 'Checkout' not found" {
		t.Errorf("substring must not match: %v", err)
	}
}

func TestSearchGuidelines(t *testing.T) {
	got := SearchGuidelines(fixture(t), "SEARCH")
	if got.Len() != 1 || got.Rows()[0].Title != "Search box" {
		t.Errorf("got %v", got.Records())
	}
	if got.HasColumn(guideline.ColCitationCode) {
		t.Error("search projection should not include citation code")
	}
}

func TestThemeGuidelines(t *testing.T) {
	ds := fixture(t)

	got, err := ThemeGuidelines(ds, "Cart", "")
	if err != nil || got.Len() != 2 {
		t.Fatalf("theme only: %v %v", got, err)
	}

	_, err = ThemeGuidelines(ds, "Nope", "")
	if err == nil || err.Error() != "Theme 'Nope' not found" {
		t.Errorf("missing theme err = %v", err)
	}

	// "Checkout" exists as a topic, but under Forms, not Cart.
	_, err = ThemeGuidelines(ds, "Cart", "Checkout")
	if err == nil || err.Error() != "Topic 'Checkout' not found within theme 'Cart'" {
		t.Errorf("topic outside theme err = %v", err)
	}

	got, err = ThemeGuidelines(ds, "Forms", "Checkout")
	if err != nil || got.Len() != 1 {
		t.Errorf("topic within theme: %v %v", got, err)
	}
}

func TestAnalyzeByCriteria(t *testing.T) {
	ds := fixture(t)
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"high impact", Criteria{HighImpact: true}, []string{"Checkout flow", "Login form"}},
		{"violated", Criteria{Violated: true}, []string{"Checkout flow", "Login form"}},
		{"adhered desktop", Criteria{Adhered: true, Platform: "Desktop"}, []string{"Checkout flow"}},
		{"na", Criteria{NA: true}, []string{"Search box", "Odd code"}},
		{"low cost high impact violated", Criteria{LowCost: true, HighImpact: true, Violated: true}, []string{"Login form"}},
		{"theme and topic", Criteria{Theme: "Forms", Topic: "Inputs"}, []string{"Odd code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titles []string
			for _, r := range AnalyzeByCriteria(ds, tt.criteria).Rows() {
				titles = append(titles, r.Title)
			}
			if diff := cmp.Diff(tt.want, titles); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdherenceStatusPrefersImplementationStatus(t *testing.T) {
	ds := table(t, []string{guideline.ColCitationCode, guideline.ColJudgement, guideline.ColImplementationStatus},
		[]string{"#1D", "adhered_high", "Violated"},
		[]string{"#2D", "violated_low", ""},
	)
	rows := ds.Rows()
	if got := AdherenceStatus(rows[0]); got != "violated" {
		t.Errorf("explicit status = %q", got)
	}
	if got := AdherenceStatus(rows[1]); got != "violated" {
		t.Errorf("derived status = %q", got)
	}
}

func TestSiteAdherence(t *testing.T) {
	ds := table(t, baseColumns,
		[]string{"#1D", "Shop", "T1", "X", "Y", "violated_high", "5", "low"},
		[]string{"#2D", "Bank", "T2", "X", "Y", "violated_low", "1", "low"},
		[]string{"#3M", "Bank", "T3", "X", "Y", "violated_low", "4", ""},
		[]string{"#4D", "Bank", "T4", "X", "Y", "violated_high", "6", "low"},
		[]string{"#5D", "Shop", "T5", "X", "Y", "adhered_high", "5", "low"},
	)

	got := SiteAdherence(ds, AdherenceQuery{Status: "violated"})
	want := []SiteCount{{CaseStudy: "Bank", Count: 3}, {CaseStudy: "Shop", Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	got = SiteAdherence(ds, AdherenceQuery{Status: "violated", Platform: "desktop", LowCost: true, HighImpact: true})
	want = []SiteCount{{CaseStudy: "Shop", Count: 1}, {CaseStudy: "Bank", Count: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filtered (-want +got):\n%s", diff)
	}

	if got := SiteAdherence(nil, AdherenceQuery{Status: "adhered"}); len(got) != 0 {
		t.Errorf("nil dataset = %v", got)
	}
}
