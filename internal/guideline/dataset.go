package guideline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one audit finding. Cells keeps the raw values aligned with the
// owning Dataset's columns; the typed fields are derived once at
// construction.
type Row struct {
	index map[string]int
	cells []string

	CitationCode    string
	CaseStudy       string
	Title           string
	Theme           string
	Topic           string
	Judgement       Judgement
	Impact          float64
	HasImpact       bool
	EstimatedCost   string
	ImageURLs       []string
	ManualJudgement bool
	Nudged          bool
	NeedsDiscussion bool
}

func newRow(index map[string]int, cells []string) *Row {
	r := &Row{index: index, cells: cells}
	r.CitationCode = strings.TrimSpace(r.Get(ColCitationCode))
	r.CaseStudy = r.Get(ColCaseStudy)
	r.Title = r.Get(ColTitle)
	r.Theme = r.Get(ColTheme)
	r.Topic = r.Get(ColTopic)
	r.Judgement = ParseJudgement(r.Get(ColJudgement))
	r.Impact, r.HasImpact = ParseImpact(r.Get(ColImpact))
	r.EstimatedCost = r.Get(ColEstimatedCost)
	r.ImageURLs = NormalizeImageURLs(r.Get(ColImageURLs))
	r.ManualJudgement = ParseFlag(r.Get(ColManualJudgement))
	r.Nudged = ParseFlag(r.Get(ColNudged))
	r.NeedsDiscussion = ParseFlag(r.Get(ColNeedsDiscussion))
	return r
}

// Get returns the raw cell for column, or "" if the column does not exist.
func (r *Row) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Missing reports whether the cell for column is absent or blank.
func (r *Row) Missing(column string) bool {
	return strings.TrimSpace(r.Get(column)) == ""
}

func (r *Row) Platform() Platform {
	return PlatformOf(r.CitationCode)
}

func (r *Row) GuidelineKey() string {
	return GuidelineKey(r.CitationCode)
}

// Dataset is the table for one upload. It is never modified after
// construction; filters and projections build new Datasets that share rows.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    []*Row
}

// NewDataset builds a Dataset from a header and records. Records shorter than
// the header are padded with blanks.
func NewDataset(columns []string, records [][]string) *Dataset {
	cols := append([]string(nil), columns...)
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	rows := make([]*Row, 0, len(records))
	for _, rec := range records {
		cells := make([]string, len(cols))
		copy(cells, rec)
		rows = append(rows, newRow(index, cells))
	}
	return &Dataset{columns: cols, index: index, rows: rows}
}

func (d *Dataset) Columns() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.columns...)
}

func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[name]
	return ok
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Rows returns the rows in table order. The slice is a copy; the rows are
// shared and must be treated as read-only.
func (d *Dataset) Rows() []*Row {
	if d == nil {
		return nil
	}
	return append([]*Row(nil), d.rows...)
}

// WithRows returns a Dataset with the same columns over the given rows, which
// must belong to d.
func (d *Dataset) WithRows(rows []*Row) *Dataset {
	if d == nil {
		return &Dataset{rows: rows}
	}
	return &Dataset{columns: d.columns, index: d.index, rows: rows}
}

// Where returns the rows of d for which keep is true.
func (d *Dataset) Where(keep func(*Row) bool) *Dataset {
	var rows []*Row
	for _, r := range d.Rows() {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return d.WithRows(rows)
}

// Project keeps only the named columns that exist in d, in the order given.
func (d *Dataset) Project(columns []string) *Dataset {
	var kept []string
	for _, c := range columns {
		if d.HasColumn(c) {
			kept = append(kept, c)
		}
	}
	records := make([][]string, 0, d.Len())
	for _, r := range d.Rows() {
		rec := make([]string, len(kept))
		for i, c := range kept {
			rec[i] = r.Get(c)
		}
		records = append(records, rec)
	}
	return NewDataset(kept, records)
}

// Records renders each row as a field-name to value map. Blank cells are
// nil and the Impact column is numeric.
func (d *Dataset) Records() []map[string]any {
	if d == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(d.rows))
	for _, r := range d.rows {
		rec := make(map[string]any, len(d.columns))
		for _, c := range d.columns {
			rec[c] = cellValue(r, c)
		}
		out = append(out, rec)
	}
	return out
}

func cellValue(r *Row, column string) any {
	if column == ColImpact {
		if r.HasImpact {
			return r.Impact
		}
		return nil
	}
	v := r.Get(column)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

// Distinct returns the distinct non-blank values of column in order of first
// appearance.
func (d *Dataset) Distinct(column string) []string {
	if !d.HasColumn(column) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.rows {
		v := r.Get(column)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// FindByCitation returns the first row whose citation code equals code after
// trimming.
func (d *Dataset) FindByCitation(code string) (*Row, bool) {
	code = strings.TrimSpace(code)
	for _, r := range d.Rows() {
		if r.CitationCode == code {
			return r, true
		}
	}
	return nil, false
}

// WriteCSV writes the header and every row's raw cells.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range d.Rows() {
		if err := cw.Write(r.cells); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
