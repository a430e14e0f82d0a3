package handlers

import (
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/guideline-analyzer/backend/internal/analysis"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/images"
	"github.com/guideline-analyzer/backend/internal/richtext"
	"github.com/guideline-analyzer/backend/internal/session"
)

// richColumns hold HTML-ish text that is also served as plain text.
var richColumns = []string{
	guideline.ColScenarios,
	guideline.ColIssue,
	guideline.ColAdvice,
	guideline.ColMasterText,
	guideline.ColClientComment,
	guideline.ColInternalComment,
}

type GuidelineHandler struct {
	sessions *session.Manager
	prober   *images.Prober
}

func NewGuidelineHandler(sessions *session.Manager, prober *images.Prober) *GuidelineHandler {
	return &GuidelineHandler{
		sessions: sessions,
		prober:   prober,
	}
}

// List applies the dashboard filters given as query parameters: search,
// theme, case_study, platform (comma-separated names or letters), low_cost
// and sort=impact.
func (h *GuidelineHandler) List(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}

	f := analysis.Filters{
		SearchTerm:   c.Query("search"),
		Theme:        c.Query("theme", analysis.All),
		CaseStudy:    c.Query("case_study", analysis.All),
		LowCost:      c.QueryBool("low_cost"),
		SortByImpact: c.Query("sort") == "impact",
	}
	for _, name := range splitList(c.Query("platform")) {
		if p, ok := guideline.ParsePlatform(name); ok {
			f.Platforms = append(f.Platforms, p)
		}
	}

	out := analysis.ApplyFilters(snap.Dataset, f)
	return c.JSON(fiber.Map{
		"count": out.Len(),
		"rows":  out.Records(),
	})
}

// Detail returns one guideline by exact citation code. A leading '#' may be
// omitted. probe=true also checks each image URL.
func (h *GuidelineHandler) Detail(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}

	code, err := url.PathUnescape(c.Params("code"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid citation code"})
	}
	row, ok := snap.Dataset.FindByCitation(code)
	if !ok && !strings.HasPrefix(code, "#") {
		row, ok = snap.Dataset.FindByCitation("#" + code)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Guideline '" + code + "' not found",
		})
	}

	record := snap.Dataset.
		Where(func(r *guideline.Row) bool { return r == row }).
		Records()[0]

	text := fiber.Map{}
	links := fiber.Map{}
	for _, col := range richColumns {
		if !snap.Dataset.HasColumn(col) || row.Missing(col) {
			continue
		}
		text[col] = richtext.PlainText(row.Get(col))
		if l := richtext.Links(row.Get(col)); len(l) > 0 {
			links[col] = l
		}
	}

	resp := fiber.Map{
		"guideline":       record,
		"platform":        row.Platform(),
		"guideline_key":   row.GuidelineKey(),
		"judgement":       row.Judgement,
		"judgement_color": guideline.Color(row.Get(guideline.ColJudgement)),
		"images":          row.ImageURLs,
		"text":            text,
		"links":           links,
	}
	if c.QueryBool("probe") && h.prober != nil {
		resp["image_checks"] = h.prober.ProbeAll(c.UserContext(), row.ImageURLs)
	}
	return c.JSON(resp)
}

// Performance summarizes impact by the comma-separated group_by fields,
// case study by default.
func (h *GuidelineHandler) Performance(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}

	g, err := analysis.Summarize(snap.Dataset, splitList(c.Query("group_by")))
	if err != nil {
		return analysisError(c, err)
	}

	groups := make([]fiber.Map, 0, len(g.Groups))
	for _, s := range g.Groups {
		keys := fiber.Map{}
		for i, f := range g.Fields {
			keys[f] = s.Keys[i]
		}
		entry := fiber.Map{
			"keys":  keys,
			"count": s.Count,
			"rows":  s.Size,
			"mean":  nil,
			"std":   nil,
		}
		if s.HasMean {
			entry["mean"] = round2(s.MeanImpact)
		}
		if s.HasStdDev {
			entry["std"] = round2(s.StdDev)
		}
		groups = append(groups, entry)
	}
	return c.JSON(fiber.Map{
		"fields": g.Fields,
		"groups": groups,
	})
}

func (h *GuidelineHandler) Platforms(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}
	scores, err := analysis.PlatformPerformance(snap.Dataset)
	if err != nil {
		return analysisError(c, err)
	}
	return c.JSON(fiber.Map{"platforms": scores})
}

func analysisError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, analysis.ErrUnknownField):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, analysis.ErrNoImpactData):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
