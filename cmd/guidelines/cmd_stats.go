package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/internal/analysis"
)

var statsFlags struct {
	groupBy []string
	jsonOut bool
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print guideline counts per platform and mean impact per group",
	RunE:  runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringSliceVar(&statsFlags.groupBy, "group-by", nil, "Fields to summarize impact by (default case study)")
	f.BoolVar(&statsFlags.jsonOut, "json", false, "Write JSON instead of text")
}

func runStats(cmd *cobra.Command, _ []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	stats := analysis.ComputeOverallStatistics(ds)
	g, gerr := analysis.Summarize(ds, statsFlags.groupBy)

	out := cmd.OutOrStdout()
	if statsFlags.jsonOut {
		payload := map[string]any{"statistics": stats}
		if gerr == nil {
			payload["groups"] = g
		} else {
			payload["groups_error"] = gerr.Error()
		}
		return writeJSON(out, payload)
	}

	fmt.Fprintf(out, "Total Guidelines: %d\n", stats.Total)
	for _, p := range stats.Present() {
		fmt.Fprintf(out, "%-16s  %d\n", string(p)+":", stats.Count(p))
	}
	if gerr != nil {
		fmt.Fprintf(out, "\n%v\n", gerr)
		return nil
	}

	fmt.Fprintln(out)
	for _, s := range g.Groups {
		mean := "n/a"
		if s.HasMean {
			mean = fmt.Sprintf("%.2f", s.MeanImpact)
		}
		fmt.Fprintf(out, "%-40s  mean=%-6s  n=%d\n", strings.Join(s.Keys, " / "), mean, s.Count)
	}
	return nil
}
