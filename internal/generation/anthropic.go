package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	batchMaxTokens        = 16000
	personaMaxTokens      = 4000
)

// AnthropicConfig configures the messages-API client shared by the content
// generator and the persona analyzer.
type AnthropicConfig struct {
	APIKey    string
	APIURL    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

type anthropicClient struct {
	client *http.Client
	apiKey string
	apiURL string
	model  string
}

func newAnthropicClient(cfg AnthropicConfig) *anthropicClient {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultAnthropicURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &anthropicClient{
		client: &http.Client{Timeout: timeout},
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		model:  model,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// complete sends one user prompt and returns the concatenated text blocks.
func (c *anthropicClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("anthropic api key is not configured")
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("anthropic: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("anthropic: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// stripCodeFence removes a surrounding ``` or ```json fence, which the model
// emits occasionally despite instructions.
func stripCodeFence(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	parts := strings.SplitN(out, "```", 3)
	if len(parts) < 2 {
		return out
	}
	out = parts[1]
	out = strings.TrimPrefix(out, "json")
	return strings.TrimSpace(out)
}

// AnthropicGenerator is the production ContentGenerator.
type AnthropicGenerator struct {
	client    *anthropicClient
	maxTokens int
}

var _ ContentGenerator = (*AnthropicGenerator)(nil)

func NewAnthropicGenerator(cfg AnthropicConfig) *AnthropicGenerator {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = batchMaxTokens
	}
	return &AnthropicGenerator{client: newAnthropicClient(cfg), maxTokens: maxTokens}
}

func (g *AnthropicGenerator) GenerateBatch(ctx context.Context, req BatchRequest) ([]Candidate, error) {
	text, err := g.client.complete(ctx, buildBatchPrompt(req), g.maxTokens)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &candidates); err != nil {
		return nil, fmt.Errorf("anthropic: parse batch output: %w", err)
	}
	return candidates, nil
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func buildBatchPrompt(req BatchRequest) string {
	var sb strings.Builder

	sb.WriteString("Generate content for an editorial calendar.\n\n")

	sb.WriteString("## BRAND\n")
	fmt.Fprintf(&sb, "Name: %s\n", req.Brand.Name)
	fmt.Fprintf(&sb, "Sector: %s\n", orNA(req.Brand.Sector))
	fmt.Fprintf(&sb, "Description: %s\n", orNA(req.Brand.Description))
	fmt.Fprintf(&sb, "Tone of voice: %s\n", orDefault(req.Brand.ToneOfVoice, "professional"))
	fmt.Fprintf(&sb, "Values: %s\n\n", orNA(req.Brand.Values))

	if req.Project.URLContext != "" {
		sb.WriteString("## WEBSITE CONTEXT\n")
		sb.WriteString(req.Project.URLContext)
		sb.WriteString("\n\n")
	}
	if req.Project.ResearchContext != "" {
		sb.WriteString("## RESEARCH CONTEXT\n")
		sb.WriteString(req.Project.ResearchContext)
		sb.WriteString("\n\n")
	}

	if len(req.Personas) > 0 {
		sb.WriteString("## BUYER PERSONAS\n")
		for _, p := range req.Personas {
			fmt.Fprintf(&sb, "### %s (weight: %.0f%%)\n", p.Name, p.Weight*100)
			if role := p.Demographics["role"]; role != "" {
				fmt.Fprintf(&sb, "- Profile: %s, %s\n", p.Demographics["age_range"], role)
			}
			if len(p.PainPoints) > 0 {
				fmt.Fprintf(&sb, "- Pain points: %s\n", strings.Join(p.PainPoints, ", "))
			}
			if len(p.Interests) > 0 {
				fmt.Fprintf(&sb, "- Interests: %s\n", strings.Join(p.Interests, ", "))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## OPTIMAL SCHEDULING (persona based)\n")
	sb.WriteString(formatSchedulingForPrompt(req.Strategy, req.Platforms))
	sb.WriteString("\n\n")

	sb.WriteString("## PROJECT\n")
	fmt.Fprintf(&sb, "Period: %s - %s\n",
		req.Window.Start.Format("2006-01-02"), req.Window.End.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Platforms: %s\n", strings.Join(req.Platforms, ", "))
	ppw, _ := json.Marshal(map[string]int(req.PostsPerWeek))
	fmt.Fprintf(&sb, "Posts per week: %s\n", ppw)
	if len(req.Project.Themes) > 0 {
		fmt.Fprintf(&sb, "Themes: %s\n", strings.Join(req.Project.Themes, ", "))
	} else {
		sb.WriteString("Themes: generic for the sector\n")
	}
	fmt.Fprintf(&sb, "Brief: %s\n", orNA(req.Project.Brief))
	if req.Brand.StyleGuide != "" {
		sb.WriteString("\n## STYLE GUIDE\n")
		sb.WriteString(req.Brand.StyleGuide)
		sb.WriteString("\n")
	}

	sb.WriteString(`
## AVAILABLE CONTENT FORMATS
- **post**: standard content (image + copy), all platforms
- **story**: ephemeral vertical content, Instagram and Facebook only
- **reel**: short vertical video 15-60s, Instagram, Facebook and TikTok only

## INSTRUCTIONS
1. Generate content for this period only
2. Adapt tone and topics to the personas above
3. Vary formats (post/story/reel) where the platform supports them
4. Every item must have: platform, content, hashtags, content_type, post_type, pillar, visual_suggestion, cta

## OUTPUT FORMAT (JSON array)
[
  {
    "platform": "linkedin",
    "content": "Long-form post copy with educational value...",
    "hashtags": ["hashtag1", "hashtag2"],
    "content_type": "post",
    "post_type": "educational",
    "pillar": "thought leadership",
    "visual_suggestion": "Carousel with 5 infographic slides",
    "cta": "Call to action"
  }
]

Reply ONLY with the JSON array, no markdown.
`)

	return sb.String()
}

func formatSchedulingForPrompt(strategy SchedulingStrategy, platforms []string) string {
	var lines []string
	for _, platform := range platforms {
		slots := strategy.SlotsFor(platform)
		if len(slots) > 3 {
			slots = slots[:3]
		}
		var slotStrs []string
		for _, s := range slots {
			if s.Day < 0 || s.Day > 6 {
				continue
			}
			slotStrs = append(slotStrs, fmt.Sprintf("%s %s", weekdayNames[s.Day], s.Time))
		}
		line := fmt.Sprintf("- %s: %s", strings.ToUpper(platform), strings.Join(slotStrs, ", "))
		if avoid := strategy[platform].Avoid; len(avoid) > 0 {
			line += fmt.Sprintf(" (avoid: %s)", strings.Join(avoid, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
