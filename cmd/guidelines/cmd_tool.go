package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guideline-analyzer/backend/internal/agent"
)

var toolCmd = &cobra.Command{
	Use:   "tool <name> [json-args]",
	Short: "Run one dispatch-table tool against the file and print its records",
	Long: `Run one of the chat tools without a language model.

Arguments are a JSON object, for example:
  guidelines -f data.csv tool search_guideline '{"search_term":"checkout"}'

Use "guidelines tool list" to print the available tools.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTool,
}

func runTool(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if args[0] == "list" {
		for _, s := range agent.Specs() {
			fmt.Fprintf(out, "%-34s %s\n", s.Name, s.Description)
		}
		return nil
	}

	var raw json.RawMessage
	if len(args) == 2 {
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("arguments must be a JSON object: %s", args[1])
		}
		raw = json.RawMessage(args[1])
	}

	ds, err := loadDataset()
	if err != nil {
		return err
	}

	result := agent.NewDispatcher(nil, 0).Call(cmd.Context(), ds, "", args[0], raw)
	if err := writeJSON(out, result); err != nil {
		return err
	}
	if msg, failed := result.Err(); failed {
		return fmt.Errorf("%s: %s", args[0], msg)
	}
	return nil
}
