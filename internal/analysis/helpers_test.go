package analysis

import (
	"testing"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

// table builds a Dataset from a header and rows; it keeps the test cases
// readable as literal grids.
func table(t *testing.T, columns []string, rows ...[]string) *guideline.Dataset {
	t.Helper()
	for i, r := range rows {
		if len(r) != len(columns) {
			t.Fatalf("row %d has %d cells, want %d", i, len(r), len(columns))
		}
	}
	return guideline.NewDataset(columns, rows)
}

func codes(ds *guideline.Dataset) []string {
	var out []string
	for _, r := range ds.Rows() {
		out = append(out, r.Get(guideline.ColCitationCode))
	}
	return out
}

var baseColumns = []string{
	guideline.ColCitationCode,
	guideline.ColCaseStudy,
	guideline.ColTitle,
	guideline.ColTheme,
	guideline.ColTopic,
	guideline.ColJudgement,
	guideline.ColImpact,
	guideline.ColEstimatedCost,
}

func fixture(t *testing.T) *guideline.Dataset {
	return table(t, baseColumns,
		[]string{"#1D", "Shop", "Checkout flow", "Cart", "Payment", "adhered_high", "4", "low"},
		[]string{"#1M", "Shop", "Checkout flow", "Cart", "Payment", "violated_low", "-2", "Low"},
		[]string{"#2D", "Bank", "Login form", "Account", "Auth", "violated_high", "5", "low"},
		[]string{"#3A", "Bank", "Search box", "Navigation", "Search", "neutral", "n/a", "high"},
		[]string{"#4M", "Travel", "Date picker", "Forms", "Checkout", "adhered_low", "1", ""},
		[]string{"#5X", "Travel", "Odd code", "Forms", "Inputs", "", "", ""},
	)
}
