package agent

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ToolSpec describes one tool for the language model and the HTTP tool list.
type ToolSpec struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Parameters  jsonschema.Definition `json:"parameters"`
}

var (
	str     = jsonschema.Definition{Type: jsonschema.String}
	boolean = jsonschema.Definition{Type: jsonschema.Boolean}
)

func described(d jsonschema.Definition, description string) jsonschema.Definition {
	d.Description = description
	return d
}

func object(props map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	if props == nil {
		props = map[string]jsonschema.Definition{}
	}
	return jsonschema.Definition{Type: jsonschema.Object, Properties: props, Required: required}
}

var platformParam = jsonschema.Definition{
	Type:        jsonschema.String,
	Description: "Platform to restrict to",
	Enum:        []string{"Desktop", "Mobile", "App"},
}

// Specs lists every tool in the dispatch table, in a stable order.
func Specs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolDatasetInfo,
			Description: "List the case studies, themes, topics and platforms in the loaded dataset, with row and column counts.",
			Parameters:  object(nil),
		},
		{
			Name:        ToolOverallStatistics,
			Description: "Count guidelines in total and per platform (Desktop, Mobile, App).",
			Parameters:  object(nil),
		},
		{
			Name:        ToolRankByImpact,
			Description: "Rank case studies (or other groupings) by their average impact score.",
			Parameters: object(map[string]jsonschema.Definition{
				"group_by": {
					Type:        jsonschema.Array,
					Items:       &str,
					Description: "Group by platform, theme, or topic (e.g. ['platform', 'Catalog Theme Title']). Defaults to case study.",
				},
				"ascending": described(boolean, "Sort impact from low to high instead of high to low."),
			}),
		},
		{
			Name:        ToolCompareGuideline,
			Description: "Compare how each site handles one guideline, identified by its exact title.",
			Parameters: object(map[string]jsonschema.Definition{
				"guideline_id": described(str, "The guideline title."),
				"platform":     platformParam,
			}, "guideline_id"),
		},
		{
			Name:        ToolSearchGuideline,
			Description: "Search guidelines by text in their title, theme or topic.",
			Parameters: object(map[string]jsonschema.Definition{
				"search_term": described(str, "Text to search for."),
			}, "search_term"),
		},
		{
			Name:        ToolThemeGuidelines,
			Description: "List the guidelines in a catalog theme, optionally narrowed to one topic of that theme.",
			Parameters: object(map[string]jsonschema.Definition{
				"theme": described(str, "Catalog theme title."),
				"topic": described(str, "Catalog topic title within the theme."),
			}, "theme"),
		},
		{
			Name:        ToolAnalyzeByCriteria,
			Description: "Filter guidelines by theme, topic, platform, cost, impact and adherence status.",
			Parameters: object(map[string]jsonschema.Definition{
				"theme":       described(str, "Catalog theme title."),
				"topic":       described(str, "Catalog topic title."),
				"platform":    platformParam,
				"low_cost":    described(boolean, "Only guidelines with low estimated cost."),
				"high_impact": described(boolean, "Only guidelines with impact of 4 or more."),
				"violated":    described(boolean, "Only violated guidelines."),
				"adhered":     described(boolean, "Only adhered guidelines."),
				"na":          described(boolean, "Only guidelines without an adherence status."),
			}),
		},
		{
			Name:        ToolSiteAdherence,
			Description: "Count, per case study, the guidelines with a given adherence status.",
			Parameters: object(map[string]jsonschema.Definition{
				"status": {
					Type:        jsonschema.String,
					Description: "Adherence status to count.",
					Enum:        []string{"adhered", "violated"},
				},
				"platform":    platformParam,
				"low_cost":    described(boolean, "Only guidelines with low estimated cost."),
				"high_impact": described(boolean, "Only guidelines with impact of 4 or more."),
			}, "status"),
		},
	}
}

// OpenAITools renders Specs as function tools.
func OpenAITools() []openai.Tool {
	specs := Specs()
	tools := make([]openai.Tool, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Parameters,
			},
		})
	}
	return tools
}
