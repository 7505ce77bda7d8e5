package report

import (
	"fmt"
	"strings"

	"github.com/mellowdog/pawdesk/internal/domain"
)

// transformModelOutputToDraft converts raw model output into a ReportDraft.
func transformModelOutputToDraft(rawOutput map[string]interface{}) (*domain.ReportDraft, error) {
	headline, err := getStringField(rawOutput, "headline", true)
	if err != nil {
		return nil, fmt.Errorf("transformModelOutputToDraft: %w", err)
	}
	summary, err := getStringField(rawOutput, "summary", true)
	if err != nil {
		return nil, fmt.Errorf("transformModelOutputToDraft: %w", err)
	}
	mood, err := getStringField(rawOutput, "mood", false)
	if err != nil {
		return nil, fmt.Errorf("transformModelOutputToDraft: %w", err)
	}
	meals, err := getStringField(rawOutput, "meals", false)
	if err != nil {
		return nil, fmt.Errorf("transformModelOutputToDraft: %w", err)
	}
	activities, err := getStringSliceField(rawOutput, "activities")
	if err != nil {
		return nil, fmt.Errorf("transformModelOutputToDraft: %w", err)
	}

	return &domain.ReportDraft{
		Headline:   headline,
		Summary:    summary,
		Mood:       mood,
		Meals:      meals,
		Activities: activities,
	}, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getStringSliceField(m map[string]interface{}, key string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	slice, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want array", key, v)
	}

	out := make([]string, 0, len(slice))
	for i, item := range slice {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("field %q element %d has type %T, want string", key, i, item)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
