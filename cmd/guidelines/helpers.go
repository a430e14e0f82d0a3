package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/ingestion"
)

func loadDataset() (*guideline.Dataset, error) {
	ds, err := ingestion.LoadAndValidate(rootFlags.file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rootFlags.file, err)
	}
	return ds, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
