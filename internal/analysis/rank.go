package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

var (
	ErrNoImpactData = errors.New("No impact data available")
	ErrUnknownField = errors.New("unknown group-by field")
)

// FieldPlatform is the derived platform, grouped on as though it were a
// column.
const FieldPlatform = "Platform"

var fieldAliases = map[string]string{
	"case_study": guideline.ColCaseStudy,
	"case study": guideline.ColCaseStudy,
	"theme":      guideline.ColTheme,
	"topic":      guideline.ColTopic,
	"title":      guideline.ColTitle,
	"guideline":  guideline.ColTitle,
	"platform":   FieldPlatform,
	"judgement":  guideline.ColJudgement,
	strings.ToLower(guideline.ColCitationCode): FieldPlatform,
}

// ResolveField maps a group-by name to a column, accepting exact column
// names and a few aliases. The citation code column resolves to the derived
// platform.
func ResolveField(ds *guideline.Dataset, name string) (string, error) {
	n := strings.TrimSpace(name)
	if alias, ok := fieldAliases[strings.ToLower(n)]; ok {
		n = alias
	}
	if n == FieldPlatform {
		if !ds.HasColumn(guideline.ColCitationCode) {
			return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		return n, nil
	}
	if !ds.HasColumn(n) {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return n, nil
}

func fieldValue(r *guideline.Row, field string) string {
	if field == FieldPlatform {
		return string(r.Platform())
	}
	return r.Get(field)
}

// GroupStat aggregates impact over one group. Count is the number of numeric
// impacts; Size is the number of rows.
type GroupStat struct {
	Keys       []string
	MeanImpact float64
	HasMean    bool
	Count      int
	Size       int
	StdDev     float64
	HasStdDev  bool
}

type Grouping struct {
	Fields []string
	Groups []GroupStat
}

// Summarize groups ds by fields (default: case study) and computes impact
// statistics per group, in order of first appearance. Rows with a blank key
// are skipped.
func Summarize(ds *guideline.Dataset, fields []string) (*Grouping, error) {
	if ds.Empty() || !ds.HasColumn(guideline.ColImpact) {
		return nil, ErrNoImpactData
	}
	if len(fields) == 0 {
		fields = []string{guideline.ColCaseStudy}
	}

	resolved := make([]string, 0, len(fields))
	for _, f := range fields {
		col, err := ResolveField(ds, f)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, col)
	}

	type acc struct {
		keys   []string
		values []float64
		size   int
	}
	index := make(map[string]*acc)
	var order []*acc

	for _, r := range ds.Rows() {
		keys := make([]string, len(resolved))
		blank := false
		for i, col := range resolved {
			keys[i] = fieldValue(r, col)
			if strings.TrimSpace(keys[i]) == "" {
				blank = true
			}
		}
		if blank {
			continue
		}
		id := strings.Join(keys, "\x1f")
		a, ok := index[id]
		if !ok {
			a = &acc{keys: keys}
			index[id] = a
			order = append(order, a)
		}
		a.size++
		if r.HasImpact {
			a.values = append(a.values, r.Impact)
		}
	}

	g := &Grouping{Fields: resolved, Groups: make([]GroupStat, 0, len(order))}
	for _, a := range order {
		s := GroupStat{Keys: a.keys, Count: len(a.values), Size: a.size}
		s.MeanImpact, s.HasMean = mean(a.values)
		s.StdDev, s.HasStdDev = sampleStdDev(a.values)
		g.Groups = append(g.Groups, s)
	}
	return g, nil
}

// RankByImpact is Summarize sorted by mean impact, descending unless
// ascending is set. Groups without any numeric impact sort last either way;
// ties keep first-appearance order.
func RankByImpact(ds *guideline.Dataset, groupBy []string, ascending bool) (*Grouping, error) {
	g, err := Summarize(ds, groupBy)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(g.Groups, func(i, j int) bool {
		a, b := g.Groups[i], g.Groups[j]
		if a.HasMean != b.HasMean {
			return a.HasMean
		}
		if !a.HasMean {
			return false
		}
		if ascending {
			return a.MeanImpact < b.MeanImpact
		}
		return a.MeanImpact > b.MeanImpact
	})
	return g, nil
}

// PlatformScore is the mean impact of one platform.
type PlatformScore struct {
	Platform   string  `json:"platform"`
	MeanImpact float64 `json:"mean_impact"`
	Count      int     `json:"count"`
}

// PlatformPerformance reports mean impact for each known platform that has
// at least one numeric impact.
func PlatformPerformance(ds *guideline.Dataset) ([]PlatformScore, error) {
	g, err := Summarize(ds, []string{FieldPlatform})
	if err != nil {
		return nil, err
	}
	byPlatform := make(map[string]GroupStat, len(g.Groups))
	for _, s := range g.Groups {
		byPlatform[s.Keys[0]] = s
	}
	out := []PlatformScore{}
	for _, p := range guideline.Platforms {
		s, ok := byPlatform[string(p)]
		if !ok || !s.HasMean {
			continue
		}
		out = append(out, PlatformScore{Platform: string(p), MeanImpact: s.MeanImpact, Count: s.Count})
	}
	return out, nil
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func sampleStdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	m, _ := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1)), true
}
