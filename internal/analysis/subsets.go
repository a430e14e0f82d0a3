package analysis

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/guideline-analyzer/backend/internal/guideline"
)

const (
	CompleteDatasetName = "Complete Dataset"
	CompleteDatasetFile = "complete_guidelines_dataset.csv"

	ColGuideline  = "Guideline"
	ColJudgements = "Judgements"
)

// Subset is one downloadable slice of the dataset.
type Subset struct {
	Name     string
	FileName string
	Data     *guideline.Dataset
}

// Slug is the file name without its extension.
func (s Subset) Slug() string {
	return strings.TrimSuffix(s.FileName, ".csv")
}

func newSubset(name string, data *guideline.Dataset) Subset {
	return Subset{Name: name, FileName: FileNameFor(name), Data: data}
}

// FileNameFor lower-cases name and replaces spaces with underscores.
func FileNameFor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".csv"
}

// CompleteDataset is the whole table, unmodified.
func CompleteDataset(ds *guideline.Dataset) Subset {
	return Subset{Name: CompleteDatasetName, FileName: CompleteDatasetFile, Data: ds}
}

const (
	colCode      = guideline.ColCitationCode
	colCase      = guideline.ColCaseStudy
	colTitle     = guideline.ColTitle
	colJudgement = guideline.ColJudgement
	colGemini    = guideline.ColGeminiURL
)

func rated(r *guideline.Row) bool {
	return r.Judgement != guideline.NotApplicable && r.Judgement != guideline.NotRated
}

// BuildSubsets derives the curated downloads. A subset is produced only when
// its source column exists.
func BuildSubsets(ds *guideline.Dataset) []Subset {
	var out []Subset
	has := ds.HasColumn

	if has(colJudgement) {
		out = append(out, newSubset("1. Not Rated Guidelines",
			ds.Where(func(r *guideline.Row) bool { return r.Judgement == guideline.NotRated }).
				Project([]string{colCode, colCase, colTitle, colGemini})))
	}
	if has(guideline.ColImplementationURLs) {
		out = append(out, newSubset("2. Guidelines Missing Pins",
			ds.Where(func(r *guideline.Row) bool {
				return r.Missing(guideline.ColImplementationURLs) && rated(r)
			}).Project([]string{colCode, colCase, colTitle, colGemini})))
	}
	if has(guideline.ColImageURLs) {
		out = append(out, newSubset("3. Guidelines Missing Screenshots",
			ds.Where(func(r *guideline.Row) bool {
				return len(r.ImageURLs) == 0 && rated(r)
			}).Project([]string{colCode, colCase, colTitle, colJudgement, guideline.ColScenarios, colGemini})))
	}
	if has(guideline.ColClientComment) {
		out = append(out, newSubset("4. Guidelines including Client-Facing Comments",
			ds.Where(func(r *guideline.Row) bool { return !r.Missing(guideline.ColClientComment) }).
				Project([]string{colCode, colCase, colTitle, colGemini, guideline.ColClientComment, guideline.ColImageURLs})))
	}
	if has(guideline.ColInternalComment) {
		out = append(out, newSubset("5. Guidelines including Internal Comments",
			ds.Where(func(r *guideline.Row) bool { return !r.Missing(guideline.ColInternalComment) }).
				Project([]string{colCode, colCase, colTitle, colJudgement, colGemini, guideline.ColInternalComment, guideline.ColImageURLs})))
	}

	flagged := []string{colCode, colCase, colTitle, colJudgement, colGemini, guideline.ColClientComment, guideline.ColInternalComment, guideline.ColImageURLs}
	if has(guideline.ColManualJudgement) {
		out = append(out, newSubset("6. Guideline With Manual Judgement",
			ds.Where(func(r *guideline.Row) bool { return r.ManualJudgement }).Project(flagged)))
	}
	if has(guideline.ColNudged) {
		out = append(out, newSubset("7. Nudged Guidelines",
			ds.Where(func(r *guideline.Row) bool { return r.Nudged }).Project(flagged)))
	}
	if has(guideline.ColNeedsDiscussion) {
		out = append(out, newSubset("8. Guidelines Needing Discussion",
			ds.Where(func(r *guideline.Row) bool { return r.NeedsDiscussion }).
				Project([]string{colCode, colCase, colTitle, colGemini, guideline.ColImageURLs, guideline.ColInternalComment})))
	}
	if has(colJudgement) {
		out = append(out, newSubset("9. All N/A Judgment Guidelines",
			ds.Where(func(r *guideline.Row) bool {
				return r.Judgement == "n/a" || r.Judgement == guideline.NotApplicable
			}).Project([]string{colCode, colCase, colTitle, colJudgement})))
	}
	if has(guideline.ColMasterText) && has(colJudgement) {
		seen := make(map[[2]string]bool)
		out = append(out, newSubset("10. Missing Master Texts",
			ds.Where(func(r *guideline.Row) bool {
				if !r.Missing(guideline.ColMasterText) {
					return false
				}
				if r.Judgement != guideline.AdheredHigh && r.Judgement != guideline.ViolatedHigh {
					return false
				}
				key := [2]string{r.CitationCode, string(r.Judgement)}
				if seen[key] {
					return false
				}
				seen[key] = true
				return true
			}).Project([]string{colCode, colTitle, colJudgement, guideline.ColMasterText})))
	}
	if has(guideline.ColImpact) {
		out = append(out, newSubset("11. High-Impact Guidelines",
			ds.Where(func(r *guideline.Row) bool {
				return r.HasImpact && math.Abs(r.Impact) >= 3
			}).Project([]string{colCode, guideline.ColImpact, colCase, colTitle, colJudgement, colGemini})))
	}
	if has(colJudgement) {
		out = append(out, newSubset("Judgment Inconsistencies", JudgementInconsistencies(ds)))
	}
	return out
}

// FindSubset looks a subset up by slug or file name. The complete dataset is
// included.
func FindSubset(ds *guideline.Dataset, slug string) (Subset, bool) {
	slug = strings.TrimSuffix(slug, ".csv")
	all := append([]Subset{CompleteDataset(ds)}, BuildSubsets(ds)...)
	for _, s := range all {
		if s.Slug() == slug {
			return s, true
		}
	}
	return Subset{}, false
}

type judgementEntry struct {
	CitationCode string `json:"Citation Code: Platform-Specific"`
	Judgement    string `json:"Judgement"`
	GeminiURL    any    `json:"Gemini URL"`
}

// JudgementInconsistencies reports each (case study, guideline key) whose
// platform variants carry more than one distinct judgement. Blank
// judgements are not counted as distinct values.
func JudgementInconsistencies(ds *guideline.Dataset) *guideline.Dataset {
	type group struct {
		caseStudy string
		key       string
		rows      []*guideline.Row
		distinct  map[string]bool
	}
	groups := make(map[[2]string]*group)
	for _, r := range ds.Rows() {
		id := [2]string{r.CaseStudy, r.GuidelineKey()}
		g, ok := groups[id]
		if !ok {
			g = &group{caseStudy: id[0], key: id[1], distinct: make(map[string]bool)}
			groups[id] = g
		}
		g.rows = append(g.rows, r)
		if j := strings.TrimSpace(r.Get(guideline.ColJudgement)); j != "" {
			g.distinct[j] = true
		}
	}

	var flagged []*group
	for _, g := range groups {
		if len(g.distinct) > 1 {
			flagged = append(flagged, g)
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].caseStudy != flagged[j].caseStudy {
			return flagged[i].caseStudy < flagged[j].caseStudy
		}
		return flagged[i].key < flagged[j].key
	})

	records := make([][]string, 0, len(flagged))
	for _, g := range flagged {
		entries := make([]judgementEntry, 0, len(g.rows))
		for _, r := range g.rows {
			e := judgementEntry{CitationCode: r.CitationCode, Judgement: r.Get(guideline.ColJudgement)}
			if u := r.Get(guideline.ColGeminiURL); u != "" {
				e.GeminiURL = u
			}
			entries = append(entries, e)
		}
		encoded, _ := json.Marshal(entries)
		records = append(records, []string{g.caseStudy, g.key, string(encoded)})
	}
	return guideline.NewDataset([]string{colCase, ColGuideline, ColJudgements}, records)
}
