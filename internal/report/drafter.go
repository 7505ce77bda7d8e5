package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mellowdog/pawdesk/internal/domain"
)

// Drafter turns a report run's handover notes into raw model output. The
// interface exists so the pipeline can be tested without a live model.
type Drafter interface {
	DraftReport(ctx context.Context, run *domain.ReportRun) (map[string]interface{}, error)
}

// GeminiDrafter drafts daily reports with Gemini.
type GeminiDrafter struct {
	model string
}

// NewGeminiDrafter creates a GeminiDrafter; an empty model name selects
// DefaultModelName.
func NewGeminiDrafter(model string) *GeminiDrafter {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiDrafter{model: model}
}

// DraftReport sends the prompt to the model and returns the parsed JSON
// object. It expects STRICT JSON and strips Markdown fences when the model
// ignores instructions.
func (d *GeminiDrafter) DraftReport(ctx context.Context, run *domain.ReportRun) (map[string]interface{}, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("DraftReport: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildReportPrompt(run)},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, d.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("DraftReport: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("DraftReport: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("DraftReport: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}

	return parsed, nil
}

// cleanModelJSON strips code fences and surrounding junk so that only the
// JSON object between the first '{' and last '}' remains.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

var _ Drafter = (*GeminiDrafter)(nil)
