package analysis

import (
	"sort"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

// OverallStatistics counts rows by platform. Rows whose citation code has an
// unrecognised suffix count towards Total only.
type OverallStatistics struct {
	Total   int `json:"total"`
	Desktop int `json:"desktop"`
	Mobile  int `json:"mobile"`
	App     int `json:"app"`
}

func ComputeOverallStatistics(ds *guideline.Dataset) OverallStatistics {
	var s OverallStatistics
	for _, r := range ds.Rows() {
		s.Total++
		switch r.Platform() {
		case guideline.Desktop:
			s.Desktop++
		case guideline.Mobile:
			s.Mobile++
		case guideline.App:
			s.App++
		}
	}
	return s
}

// Count returns the number of rows for p.
func (s OverallStatistics) Count(p guideline.Platform) int {
	switch p {
	case guideline.Desktop:
		return s.Desktop
	case guideline.Mobile:
		return s.Mobile
	case guideline.App:
		return s.App
	default:
		return s.Total - s.Desktop - s.Mobile - s.App
	}
}

// Present lists the known platforms with at least one row.
func (s OverallStatistics) Present() []guideline.Platform {
	var out []guideline.Platform
	for _, p := range guideline.Platforms {
		if s.Count(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

type DatasetInfo struct {
	CaseStudies []string `json:"case_studies"`
	Themes      []string `json:"themes"`
	Topics      []string `json:"topics"`
	Platforms   []string `json:"platforms"`
	TotalRows   int      `json:"total_rows"`
	Columns     []string `json:"columns"`
}

func GetDatasetInfo(ds *guideline.Dataset) DatasetInfo {
	info := DatasetInfo{
		CaseStudies: nonNil(ds.Distinct(guideline.ColCaseStudy)),
		Themes:      nonNil(ds.Distinct(guideline.ColTheme)),
		Topics:      nonNil(ds.Distinct(guideline.ColTopic)),
		Platforms:   []string{},
		TotalRows:   ds.Len(),
		Columns:     nonNil(ds.Columns()),
	}
	for _, p := range ComputeOverallStatistics(ds).Present() {
		info.Platforms = append(info.Platforms, string(p))
	}
	return info
}

// FilterOptions feeds the dashboard's dropdowns.
type FilterOptions struct {
	Themes      []string `json:"themes"`
	CaseStudies []string `json:"case_studies"`
	Platforms   []string `json:"platforms"`
}

func GetFilterOptions(ds *guideline.Dataset) FilterOptions {
	opts := FilterOptions{
		Themes:      withAll(ds.Distinct(guideline.ColTheme)),
		CaseStudies: withAll(ds.Distinct(guideline.ColCaseStudy)),
	}
	for _, p := range guideline.Platforms {
		opts.Platforms = append(opts.Platforms, string(p))
	}
	return opts
}

func withAll(values []string) []string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return append([]string{All}, sorted...)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
