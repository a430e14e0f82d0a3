package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

// NotFoundError is returned when a named guideline, theme or topic has no
// rows.
type NotFoundError struct {
	What   string
	Name   string
	Within string
}

func (e *NotFoundError) Error() string {
	if e.Within != "" {
		return fmt.Sprintf("%s '%s' not found within theme '%s'", e.What, e.Name, e.Within)
	}
	return fmt.Sprintf("%s '%s' not found", e.What, e.Name)
}

var (
	compareColumns  = []string{guideline.ColCaseStudy, guideline.ColImpact, guideline.ColCitationCode, guideline.ColEstimatedCost}
	searchColumns   = []string{guideline.ColTitle, guideline.ColTheme, guideline.ColTopic, guideline.ColImplementationStatus, guideline.ColImpact}
	themeColumns    = []string{guideline.ColTitle, guideline.ColTheme, guideline.ColTopic, guideline.ColImpact}
	criteriaColumns = []string{guideline.ColTitle, guideline.ColTheme, guideline.ColTopic, guideline.ColImpact, guideline.ColImplementationStatus}
)

// CompareGuideline returns every site's row for the guideline whose title
// equals title, ignoring case and surrounding space. platform may be empty
// or any value ParsePlatform accepts; unrecognised values do not filter.
func CompareGuideline(ds *guideline.Dataset, title, platform string) (*guideline.Dataset, error) {
	want := strings.TrimSpace(title)
	matches := ds.Where(func(r *guideline.Row) bool {
		return strings.EqualFold(strings.TrimSpace(r.Title), want)
	})
	if matches.Empty() {
		return nil, &NotFoundError{What: "Guideline", Name: title}
	}
	if p, ok := guideline.ParsePlatform(platform); ok {
		matches = matches.Where(func(r *guideline.Row) bool { return r.Platform() == p })
	}
	return matches.Project(compareColumns), nil
}

// SearchGuidelines matches term case-insensitively against title, theme and
// topic.
func SearchGuidelines(ds *guideline.Dataset, term string) *guideline.Dataset {
	m := newMatcher(term)
	return ds.Where(func(r *guideline.Row) bool {
		return m.any(r.Title, r.Theme, r.Topic)
	}).Project(searchColumns)
}

// ThemeGuidelines lists the guidelines of theme, optionally narrowed to a
// topic that must exist within that theme.
func ThemeGuidelines(ds *guideline.Dataset, theme, topic string) (*guideline.Dataset, error) {
	inTheme := ds.Where(func(r *guideline.Row) bool { return r.Theme == theme })
	if inTheme.Empty() {
		return nil, &NotFoundError{What: "Theme", Name: theme}
	}
	if topic != "" {
		inTheme = inTheme.Where(func(r *guideline.Row) bool { return r.Topic == topic })
		if inTheme.Empty() {
			return nil, &NotFoundError{What: "Topic", Name: topic, Within: theme}
		}
	}
	return inTheme.Project(themeColumns), nil
}

// AdherenceStatus is the row's Implementation Status when that column is
// filled in, otherwise "adhered" or "violated" from the judgement. It is
// empty when neither applies.
func AdherenceStatus(r *guideline.Row) string {
	if v := strings.TrimSpace(r.Get(guideline.ColImplementationStatus)); v != "" {
		return strings.ToLower(v)
	}
	return r.Judgement.Status()
}

// isHighImpact treats a missing impact as zero.
func isHighImpact(r *guideline.Row) bool {
	return r.HasImpact && r.Impact >= guideline.HighImpactThreshold
}

type Criteria struct {
	Theme      string
	Topic      string
	Platform   string
	LowCost    bool
	HighImpact bool
	Violated   bool
	Adhered    bool
	NA         bool
}

// AnalyzeByCriteria ANDs every set criterion together.
func AnalyzeByCriteria(ds *guideline.Dataset, c Criteria) *guideline.Dataset {
	platform, byPlatform := guideline.ParsePlatform(c.Platform)
	return ds.Where(func(r *guideline.Row) bool {
		if c.Theme != "" && r.Theme != c.Theme {
			return false
		}
		if c.Topic != "" && r.Topic != c.Topic {
			return false
		}
		if byPlatform && r.Platform() != platform {
			return false
		}
		if c.LowCost && !isLowCost(r) {
			return false
		}
		if c.HighImpact && !isHighImpact(r) {
			return false
		}
		status := AdherenceStatus(r)
		if c.Violated && status != "violated" {
			return false
		}
		if c.Adhered && status != "adhered" {
			return false
		}
		if c.NA && status != "" {
			return false
		}
		return true
	}).Project(criteriaColumns)
}

type AdherenceQuery struct {
	Status     string
	Platform   string
	LowCost    bool
	HighImpact bool
}

type SiteCount struct {
	CaseStudy string `json:"case_study"`
	Count     int    `json:"count"`
}

// SiteAdherence counts matching rows per case study, largest first.
func SiteAdherence(ds *guideline.Dataset, q AdherenceQuery) []SiteCount {
	status := strings.ToLower(strings.TrimSpace(q.Status))
	platform, byPlatform := guideline.ParsePlatform(q.Platform)

	counts := make(map[string]int)
	var order []string
	for _, r := range ds.Rows() {
		if AdherenceStatus(r) != status {
			continue
		}
		if byPlatform && r.Platform() != platform {
			continue
		}
		if q.LowCost && !isLowCost(r) {
			continue
		}
		if q.HighImpact && !isHighImpact(r) {
			continue
		}
		if _, seen := counts[r.CaseStudy]; !seen {
			order = append(order, r.CaseStudy)
		}
		counts[r.CaseStudy]++
	}

	out := make([]SiteCount, 0, len(order))
	for _, cs := range order {
		out = append(out, SiteCount{CaseStudy: cs, Count: counts[cs]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
