package guideline

import "strings"

type Judgement string

const (
	AdheredHigh   Judgement = "adhered_high"
	AdheredLow    Judgement = "adhered_low"
	ViolatedHigh  Judgement = "violated_high"
	ViolatedLow   Judgement = "violated_low"
	NotApplicable Judgement = "not_applicable"
	Neutral       Judgement = "neutral"
	IssueResolved Judgement = "issue_resolved"
	NotRated      Judgement = "not_rated"
)

const defaultColor = "#FFFFFF"

var judgementColors = map[Judgement]string{
	AdheredHigh:   "#769b37",
	AdheredLow:    "#a1b145",
	ViolatedHigh:  "#b42625",
	ViolatedLow:   "#ea7a0d",
	NotApplicable: "#9c9c9c",
	Neutral:       "#ffc302",
	IssueResolved: "#0273ff",
	NotRated:      "rgba(255,255,255,0.3)",
}

// ParseJudgement normalizes a raw cell (trim, lower-case). The result may be
// empty or unrecognised; use Known and Group to interpret it.
func ParseJudgement(raw string) Judgement {
	return Judgement(strings.ToLower(strings.TrimSpace(raw)))
}

func (j Judgement) Known() bool {
	_, ok := judgementColors[j]
	return ok
}

// Group maps missing and unrecognised judgements to NotRated.
func (j Judgement) Group() Judgement {
	if j.Known() {
		return j
	}
	return NotRated
}

// Status collapses a judgement to "adhered", "violated" or "".
func (j Judgement) Status() string {
	switch {
	case strings.HasPrefix(string(j), "adhered"):
		return "adhered"
	case strings.HasPrefix(string(j), "violated"):
		return "violated"
	default:
		return ""
	}
}

// Color is the display colour for a judgement cell. Missing or unknown
// judgements get the neutral white.
func Color(raw string) string {
	if c, ok := judgementColors[ParseJudgement(raw)]; ok {
		return c
	}
	return defaultColor
}
