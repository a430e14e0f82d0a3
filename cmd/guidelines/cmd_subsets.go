package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/internal/analysis"
)

var subsetsCmd = &cobra.Command{
	Use:   "subsets [slug]",
	Short: "List the curated downloads, or print one as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSubsets,
}

func runSubsets(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		sub, ok := analysis.FindSubset(ds, args[0])
		if !ok {
			return fmt.Errorf("no download named %q", args[0])
		}
		return sub.Data.WriteCSV(out)
	}

	all := append([]analysis.Subset{analysis.CompleteDataset(ds)}, analysis.BuildSubsets(ds)...)
	for _, s := range all {
		fmt.Fprintf(out, "%-50s  %5d rows  %s\n", s.Name, s.Data.Len(), s.Slug())
	}
	return nil
}
