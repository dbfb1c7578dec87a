package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// RefineRequest asks for a single existing post to be rewritten following
// user feedback, keeping the brand voice.
type RefineRequest struct {
	Content      string
	Platform     string
	Pillar       string
	Instructions string
	Brand        BrandContext
}

// Refinement is the rewritten post material. Empty fields mean "keep what the
// post already has".
type Refinement struct {
	Content          string   `json:"content"`
	Hashtags         []string `json:"hashtags"`
	VisualSuggestion string   `json:"visual_suggestion"`
	CTA              string   `json:"cta"`
}

// PostRefiner rewrites one post on demand, outside the batch pipeline.
type PostRefiner interface {
	RegeneratePost(ctx context.Context, req RefineRequest) (Refinement, error)
}

const refineMaxTokens = 1000

// AnthropicPostRefiner is the production PostRefiner.
type AnthropicPostRefiner struct {
	client *anthropicClient
}

var _ PostRefiner = (*AnthropicPostRefiner)(nil)

func NewAnthropicPostRefiner(cfg AnthropicConfig) *AnthropicPostRefiner {
	return &AnthropicPostRefiner{client: newAnthropicClient(cfg)}
}

func (a *AnthropicPostRefiner) RegeneratePost(ctx context.Context, req RefineRequest) (Refinement, error) {
	text, err := a.client.complete(ctx, buildRefinePrompt(req), refineMaxTokens)
	if err != nil {
		return Refinement{}, err
	}

	var out Refinement
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return Refinement{}, fmt.Errorf("anthropic: parse refinement output: %w", err)
	}
	return out, nil
}

func buildRefinePrompt(req RefineRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an expert social media manager. Rewrite a %s post following the user's request.\n\n", req.Platform)

	sb.WriteString("## BRAND\n")
	fmt.Fprintf(&sb, "Name: %s\n", req.Brand.Name)
	fmt.Fprintf(&sb, "Sector: %s\n", orNA(req.Brand.Sector))
	fmt.Fprintf(&sb, "Tone of voice: %s\n", orDefault(req.Brand.ToneOfVoice, "professional"))
	fmt.Fprintf(&sb, "Pillar: %s\n", orNA(req.Pillar))
	if req.Brand.StyleGuide != "" {
		sb.WriteString("\n## STYLE GUIDE\n")
		sb.WriteString(req.Brand.StyleGuide)
		sb.WriteString("\n")
	}

	sb.WriteString("\n## ORIGINAL POST\n")
	sb.WriteString(req.Content)
	sb.WriteString("\n\n## REQUEST\n")
	sb.WriteString(orDefault(req.Instructions, "Improve the post while keeping its message."))

	sb.WriteString(`

## OUTPUT FORMAT (JSON object)
{
  "content": "rewritten post copy",
  "hashtags": ["hashtag1", "hashtag2"],
  "visual_suggestion": "visual suggestion",
  "cta": "call to action"
}

Reply ONLY with the JSON object, no markdown.
`)

	return sb.String()
}
