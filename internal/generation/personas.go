package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// PersonaRequest is the brand material persona analysis works from.
// Instructions narrows the task, e.g. asking for exactly one new persona
// distinct from the existing ones.
type PersonaRequest struct {
	Brand        BrandContext
	Platforms    []string
	Objectives   []string
	URLContext   string
	Instructions string
}

// PersonaAnalyzer derives buyer personas and a platform scheduling strategy
// from brand material. Like the content generator it is an external
// collaborator behind a one-method interface.
type PersonaAnalyzer interface {
	AnalyzePersonas(ctx context.Context, req PersonaRequest) (PersonaAnalysis, error)
}

// DefaultAnalysis is the fallback when persona analysis never ran or failed:
// generic slots for every requested platform.
func DefaultAnalysis(platforms []string) PersonaAnalysis {
	ppw := make(map[string]int, len(platforms))
	for _, p := range platforms {
		ppw[p] = defaultPostsPerWeek
	}
	return PersonaAnalysis{
		Strategy:                DefaultStrategy(platforms),
		RecommendedPostsPerWeek: ppw,
	}
}

// AnthropicPersonaAnalyzer is the production PersonaAnalyzer.
type AnthropicPersonaAnalyzer struct {
	client *anthropicClient
}

var _ PersonaAnalyzer = (*AnthropicPersonaAnalyzer)(nil)

func NewAnthropicPersonaAnalyzer(cfg AnthropicConfig) *AnthropicPersonaAnalyzer {
	return &AnthropicPersonaAnalyzer{client: newAnthropicClient(cfg)}
}

func (a *AnthropicPersonaAnalyzer) AnalyzePersonas(ctx context.Context, req PersonaRequest) (PersonaAnalysis, error) {
	text, err := a.client.complete(ctx, buildPersonaPrompt(req), personaMaxTokens)
	if err != nil {
		return PersonaAnalysis{}, err
	}

	var analysis PersonaAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &analysis); err != nil {
		return PersonaAnalysis{}, fmt.Errorf("anthropic: parse persona output: %w", err)
	}
	if len(analysis.Strategy) == 0 {
		analysis.Strategy = DefaultStrategy(req.Platforms)
	}
	return analysis, nil
}

func buildPersonaPrompt(req PersonaRequest) string {
	var sb strings.Builder

	sb.WriteString("Analyze this brand and derive its buyer personas and the optimal posting schedule per platform.\n\n")

	sb.WriteString("## BRAND\n")
	fmt.Fprintf(&sb, "Name: %s\n", req.Brand.Name)
	fmt.Fprintf(&sb, "Sector: %s\n", orNA(req.Brand.Sector))
	fmt.Fprintf(&sb, "Description: %s\n", orNA(req.Brand.Description))
	fmt.Fprintf(&sb, "Values: %s\n", orNA(req.Brand.Values))
	fmt.Fprintf(&sb, "Tone of voice: %s\n", orDefault(req.Brand.ToneOfVoice, "professional"))
	fmt.Fprintf(&sb, "Platforms: %s\n", strings.Join(req.Platforms, ", "))
	if len(req.Objectives) > 0 {
		fmt.Fprintf(&sb, "Objectives: %s\n", strings.Join(req.Objectives, ", "))
	}
	if req.URLContext != "" {
		sb.WriteString("\n## WEBSITE CONTEXT\n")
		sb.WriteString(req.URLContext)
		sb.WriteString("\n")
	}
	if req.Instructions != "" {
		sb.WriteString("\n## ADDITIONAL INSTRUCTIONS\n")
		sb.WriteString(req.Instructions)
		sb.WriteString("\n")
	}

	sb.WriteString(`
## INSTRUCTIONS
1. Identify 2-4 buyer personas with name, weight (fractions summing to 1), demographics, pain points and interests
2. For every platform, recommend 2-4 optimal posting slots as {day, time, priority} with day 0=Monday..6=Sunday, time "HH:MM", priority 1=best
3. Recommend posts per week per platform

## OUTPUT FORMAT (JSON object)
{
  "personas": [
    {
      "name": "Persona name",
      "weight": 0.6,
      "demographics": {"age_range": "30-45", "role": "Marketing manager", "location": "EU"},
      "pain_points": ["..."],
      "interests": ["..."]
    }
  ],
  "scheduling_strategy": {
    "linkedin": {
      "optimal_slots": [{"day": 1, "time": "08:30", "priority": 1}],
      "avoid": ["weekend mornings"]
    }
  },
  "recommended_posts_per_week": {"linkedin": 3}
}

Reply ONLY with the JSON object, no markdown.
`)

	return sb.String()
}
