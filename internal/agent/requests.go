package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tool names understood by the dispatch table.
const (
	ToolDatasetInfo       = "get_dataset_info"
	ToolOverallStatistics = "compute_overall_statistics"
	ToolRankByImpact      = "rank_case_studies_by_impact"
	ToolRankByPerformance = "rank_case_studies_by_performance"
	ToolCompareGuideline  = "compare_guideline_across_sites"
	ToolSearchGuideline   = "search_guideline"
	ToolThemeGuidelines   = "get_theme_guidelines"
	ToolAnalyzeByCriteria = "analyze_guidelines_by_criteria"
	ToolSiteAdherence     = "analyze_site_adherence"
)

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrMissingArgument = errors.New("missing required argument")
)

// Request is one of the typed tool invocations below.
type Request interface {
	ToolName() string
	validate() error
}

type DatasetInfoRequest struct{}

type OverallStatisticsRequest struct{}

type RankByImpactRequest struct {
	GroupBy   []string `json:"group_by,omitempty" jsonschema:"fields to group by, e.g. case_study, theme, topic, platform or a column name; defaults to the case study"`
	Ascending bool     `json:"ascending,omitempty" jsonschema:"sort from lowest to highest impact instead of highest first"`
}

type CompareGuidelineRequest struct {
	GuidelineID string `json:"guideline_id" jsonschema:"exact guideline title, case-insensitive"`
	Platform    string `json:"platform,omitempty" jsonschema:"optional platform: Desktop, Mobile or App"`
}

type SearchGuidelineRequest struct {
	SearchTerm string `json:"search_term" jsonschema:"text to look for in guideline titles, themes and topics"`
}

type ThemeGuidelinesRequest struct {
	Theme string `json:"theme" jsonschema:"catalog theme title"`
	Topic string `json:"topic,omitempty" jsonschema:"optional catalog topic title within the theme"`
}

type CriteriaRequest struct {
	Theme      string `json:"theme,omitempty" jsonschema:"catalog theme title"`
	Topic      string `json:"topic,omitempty" jsonschema:"catalog topic title"`
	Platform   string `json:"platform,omitempty" jsonschema:"Desktop, Mobile or App"`
	LowCost    bool   `json:"low_cost,omitempty" jsonschema:"only guidelines with low estimated cost"`
	HighImpact bool   `json:"high_impact,omitempty" jsonschema:"only guidelines with impact of 4 or more"`
	Violated   bool   `json:"violated,omitempty" jsonschema:"only violated guidelines"`
	Adhered    bool   `json:"adhered,omitempty" jsonschema:"only adhered guidelines"`
	NA         bool   `json:"na,omitempty" jsonschema:"only guidelines without an adherence status"`
}

type SiteAdherenceRequest struct {
	Status     string `json:"status" jsonschema:"adhered or violated"`
	Platform   string `json:"platform,omitempty" jsonschema:"Desktop, Mobile or App"`
	LowCost    bool   `json:"low_cost,omitempty" jsonschema:"only guidelines with low estimated cost"`
	HighImpact bool   `json:"high_impact,omitempty" jsonschema:"only guidelines with impact of 4 or more"`
}

func (DatasetInfoRequest) ToolName() string       { return ToolDatasetInfo }
func (OverallStatisticsRequest) ToolName() string { return ToolOverallStatistics }
func (RankByImpactRequest) ToolName() string      { return ToolRankByImpact }
func (CompareGuidelineRequest) ToolName() string  { return ToolCompareGuideline }
func (SearchGuidelineRequest) ToolName() string   { return ToolSearchGuideline }
func (ThemeGuidelinesRequest) ToolName() string   { return ToolThemeGuidelines }
func (CriteriaRequest) ToolName() string          { return ToolAnalyzeByCriteria }
func (SiteAdherenceRequest) ToolName() string     { return ToolSiteAdherence }

func (DatasetInfoRequest) validate() error       { return nil }
func (OverallStatisticsRequest) validate() error { return nil }
func (RankByImpactRequest) validate() error      { return nil }
func (CriteriaRequest) validate() error          { return nil }

func (r CompareGuidelineRequest) validate() error { return require("guideline_id", r.GuidelineID) }
func (r SearchGuidelineRequest) validate() error  { return require("search_term", r.SearchTerm) }
func (r ThemeGuidelinesRequest) validate() error  { return require("theme", r.Theme) }

func (r SiteAdherenceRequest) validate() error {
	if err := require("status", r.Status); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case "adhered", "violated":
		return nil
	default:
		return fmt.Errorf("status must be adhered or violated, got %q", r.Status)
	}
}

func require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return nil
}

// Decode turns a tool name and its JSON arguments into a typed Request.
// Empty arguments decode as {}.
func Decode(name string, args json.RawMessage) (Request, error) {
	var req Request
	switch name {
	case ToolDatasetInfo:
		req = &DatasetInfoRequest{}
	case ToolOverallStatistics:
		req = &OverallStatisticsRequest{}
	case ToolRankByImpact, ToolRankByPerformance:
		req = &RankByImpactRequest{}
	case ToolCompareGuideline:
		req = &CompareGuidelineRequest{}
	case ToolSearchGuideline:
		req = &SearchGuidelineRequest{}
	case ToolThemeGuidelines:
		req = &ThemeGuidelinesRequest{}
	case ToolAnalyzeByCriteria:
		req = &CriteriaRequest{}
	case ToolSiteAdherence:
		req = &SiteAdherenceRequest{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if len(strings.TrimSpace(string(args))) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, req); err != nil {
			return nil, fmt.Errorf("failed to decode arguments for %s: %w", name, err)
		}
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return deref(req), nil
}

// deref returns the value form so that Execute's switch sees one type per
// tool.
func deref(req Request) Request {
	switch r := req.(type) {
	case *DatasetInfoRequest:
		return *r
	case *OverallStatisticsRequest:
		return *r
	case *RankByImpactRequest:
		return *r
	case *CompareGuidelineRequest:
		return *r
	case *SearchGuidelineRequest:
		return *r
	case *ThemeGuidelinesRequest:
		return *r
	case *CriteriaRequest:
		return *r
	case *SiteAdherenceRequest:
		return *r
	default:
		return req
	}
}
