package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	file     string
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "guidelines",
	Short: "Query a UX guideline audit CSV from the command line",
	Long: "guidelines loads an audit export, validates it the same way the API does,\n" +
		"and runs statistics, filters, downloads and dispatch-table tools over it.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return logger.Init(rootFlags.logLevel, "console", "stderr")
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&rootFlags.file, "file", "f", "", "Path to the guideline audit CSV (required)")
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level written to stderr")
	_ = rootCmd.MarkPersistentFlagRequired("file")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(subsetsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
