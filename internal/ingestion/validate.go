package ingestion

import (
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

var platformCodePattern = regexp.MustCompile(`^#\d+[DMA]`)

// Validate checks that ds is usable and returns it without fully blank
// rows. The returned error is a *ValidationError.
func Validate(ds *guideline.Dataset) (*guideline.Dataset, error) {
	if ds.Empty() {
		return nil, &ValidationError{Reason: ErrEmptyDataset}
	}

	var missing []string
	for _, col := range expectedColumns() {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		logger.Warn("Upload rejected", zap.Strings("missing_columns", missing))
		return nil, &ValidationError{Reason: ErrMissingColumns, Missing: missing}
	}

	columns := ds.Columns()
	cleaned := ds.Where(func(r *guideline.Row) bool {
		for _, c := range columns {
			if strings.TrimSpace(r.Get(c)) != "" {
				return true
			}
		}
		return false
	})
	if cleaned.Empty() {
		return nil, &ValidationError{Reason: ErrEmptyDataset}
	}

	for _, r := range cleaned.Rows() {
		if platformCodePattern.MatchString(r.CitationCode) {
			return cleaned, nil
		}
	}
	return nil, &ValidationError{Reason: ErrNoPlatformCodes}
}

// expectedColumns is RequiredColumns followed by any key column not already
// in it.
func expectedColumns() []string {
	cols := append([]string(nil), guideline.RequiredColumns...)
	for _, k := range guideline.KeyColumns {
		if !slices.Contains(cols, k) {
			cols = append(cols, k)
		}
	}
	return cols
}

// LoadAndValidate is the upload path: Load followed by Validate.
func LoadAndValidate(path string) (*guideline.Dataset, error) {
	ds, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Validate(ds)
}
