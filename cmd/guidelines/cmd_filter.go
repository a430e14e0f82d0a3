package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/internal/analysis"
	"github.com/guideline-analyzer/backend/internal/guideline"
)

var filterFlags struct {
	search    string
	theme     string
	caseStudy string
	platforms []string
	lowCost   bool
	byImpact  bool
	csvOut    bool
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the guidelines matching the dashboard filters",
	RunE:  runFilter,
}

func init() {
	f := filterCmd.Flags()
	f.StringVar(&filterFlags.search, "search", "", "Case-insensitive text in title, code, theme or topic")
	f.StringVar(&filterFlags.theme, "theme", analysis.All, "Catalog theme title")
	f.StringVar(&filterFlags.caseStudy, "case-study", analysis.All, "Case study title")
	f.StringSliceVar(&filterFlags.platforms, "platform", nil, "Platforms to keep (Desktop, Mobile, App or D/M/A)")
	f.BoolVar(&filterFlags.lowCost, "low-cost", false, "Only guidelines with low estimated cost")
	f.BoolVar(&filterFlags.byImpact, "sort-by-impact", false, "Highest impact first")
	f.BoolVar(&filterFlags.csvOut, "csv", false, "Write CSV instead of JSON records")
}

func runFilter(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	f := analysis.Filters{
		SearchTerm:   filterFlags.search,
		Theme:        filterFlags.theme,
		CaseStudy:    filterFlags.caseStudy,
		LowCost:      filterFlags.lowCost,
		SortByImpact: filterFlags.byImpact,
	}
	for _, name := range filterFlags.platforms {
		p, ok := guideline.ParsePlatform(name)
		if !ok {
			return fmt.Errorf("unknown platform %q", name)
		}
		f.Platforms = append(f.Platforms, p)
	}

	out := analysis.ApplyFilters(ds, f)
	if filterFlags.csvOut {
		return out.WriteCSV(cmd.OutOrStdout())
	}
	return writeJSON(cmd.OutOrStdout(), out.Records())
}
