package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

const utf8BOM = "\ufeff"

// Load reads and cleans the CSV at path. Any failure is an *IngestError.
func Load(path string) (*guideline.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IngestError{Kind: Malformed, Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		var ie *IngestError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return nil, err
	}
	return ds, nil
}

// Parse cleans a CSV stream into a Dataset: header names are trimmed,
// entirely blank columns are dropped, and rows missing a case study, title,
// theme or citation code are discarded. Missing columns are not an error
// here; Validate reports them.
func Parse(r io.Reader) (*guideline.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &IngestError{Kind: Malformed, Err: fmt.Errorf("failed to read csv: %w", err)}
	}
	if len(records) == 0 {
		return nil, &IngestError{Kind: Malformed, Err: errors.New("no header row")}
	}

	header := cleanHeader(records[0])
	body := records[1:]
	for i, rec := range body {
		if len(rec) > len(header) && !blankTail(rec[len(header):]) {
			return nil, &IngestError{
				Kind: Malformed,
				Err:  fmt.Errorf("line %d: expected %d fields, saw %d", i+2, len(header), len(rec)),
			}
		}
	}

	header, body = dropEmptyColumns(header, body)

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	// Absent key columns are reported by Validate together with the rest.
	var required []string
	for _, col := range append(append([]string(nil), guideline.KeyColumns...), guideline.ColCitationCode) {
		if _, ok := index[col]; ok {
			required = append(required, col)
		}
	}

	kept := make([][]string, 0, len(body))
	dropped := 0
	for _, rec := range body {
		if hasBlank(rec, index, required) {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}

	if dropped > 0 {
		logger.Debug("Dropped incomplete rows", zap.Int("dropped", dropped))
	}

	return guideline.NewDataset(header, kept), nil
}

// cleanHeader trims names, strips a leading BOM and suffixes duplicates
// with .1, .2 and so on.
func cleanHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		header[i] = h
	}
	return header
}

func dropEmptyColumns(header []string, body [][]string) ([]string, [][]string) {
	if len(body) == 0 {
		return header, body
	}

	keep := make([]int, 0, len(header))
	for col := range header {
		for _, rec := range body {
			if col < len(rec) && strings.TrimSpace(rec[col]) != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	if len(keep) == len(header) {
		return header, body
	}

	newHeader := make([]string, len(keep))
	for i, col := range keep {
		newHeader[i] = header[col]
	}
	newBody := make([][]string, len(body))
	for r, rec := range body {
		row := make([]string, len(keep))
		for i, col := range keep {
			if col < len(rec) {
				row[i] = rec[col]
			}
		}
		newBody[r] = row
	}
	return newHeader, newBody
}

func hasBlank(rec []string, index map[string]int, columns []string) bool {
	for _, col := range columns {
		i := index[col]
		if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
			return true
		}
	}
	return false
}

func blankTail(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
