package analysis

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/metrics"
)

// All disables a theme or case-study filter.
const All = "All"

type Filters struct {
	SearchTerm   string
	Theme        string
	CaseStudy    string
	Platforms    []guideline.Platform
	LowCost      bool
	SortByImpact bool
}

// ApplyFilters ANDs the configured predicates together; the platform set is
// an OR across its members and an empty set keeps every row. The input is
// never modified.
func ApplyFilters(ds *guideline.Dataset, f Filters) *guideline.Dataset {
	start := time.Now()
	defer func() {
		metrics.FilterDuration.Observe(time.Since(start).Seconds())
	}()

	if ds == nil {
		return guideline.NewDataset(nil, nil)
	}

	platforms := make(map[guideline.Platform]bool, len(f.Platforms))
	for _, p := range f.Platforms {
		platforms[p] = true
	}
	search := newMatcher(f.SearchTerm)

	out := ds.Where(func(r *guideline.Row) bool {
		if active(f.Theme) && r.Theme != f.Theme {
			return false
		}
		if active(f.CaseStudy) && r.CaseStudy != f.CaseStudy {
			return false
		}
		if len(platforms) > 0 && !platforms[r.Platform()] {
			return false
		}
		if !search.any(r.Title, r.CitationCode, r.Theme, r.Topic) {
			return false
		}
		if f.LowCost && !isLowCost(r) {
			return false
		}
		return true
	})

	if f.SortByImpact {
		out = SortByImpact(out)
	}
	return out
}

// SortByImpact orders rows by numeric impact, highest first. Rows without a
// numeric impact go last and keep their relative order.
func SortByImpact(ds *guideline.Dataset) *guideline.Dataset {
	rows := ds.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HasImpact != b.HasImpact {
			return a.HasImpact
		}
		return a.HasImpact && a.Impact > b.Impact
	})
	return ds.WithRows(rows)
}

func active(v string) bool {
	return v != "" && v != All
}

// isLowCost is an exact, case-sensitive comparison against "low".
func isLowCost(r *guideline.Row) bool {
	return r.EstimatedCost == guideline.LowCost
}

// matcher is a case-insensitive substring test. An empty term matches
// everything; blank fields never match a non-empty term.
type matcher struct {
	caser cases.Caser
	term  string
}

func newMatcher(term string) *matcher {
	m := &matcher{caser: cases.Fold()}
	if term != "" {
		m.term = m.caser.String(term)
	}
	return m
}

func (m *matcher) any(fields ...string) bool {
	if m.term == "" {
		return true
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(m.caser.String(f), m.term) {
			return true
		}
	}
	return false
}
