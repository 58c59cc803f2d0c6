package llm

import (
	"math"
	"testing"
)

func TestLookupCost_CoversDefaultsAndAliases(t *testing.T) {
	cfg := DefaultConfig()
	ids := []string{
		resolveModel(cfg.Anthropic.Model, anthropicModels),
		resolveModel(cfg.OpenAI.Model, openaiModels),
		resolveModel(cfg.Gemini.Model, geminiModels),
		cfg.OpenRouter.Model,
	}
	for _, m := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		for _, id := range m {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if LookupCost(id) == nil {
			t.Errorf("no price for %q", id)
		}
	}
}

func TestLookupCost_NormalisesIDs(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"google/gemini-2.5-flash", "gemini-2.5-flash"},
		{"openai/gpt-4o-mini:free", "gpt-4o-mini"},
		{"models/gemini-2.5-pro", "gemini-2.5-pro"},
		{"anthropic/claude-sonnet-4-5", "claude-sonnet-4-5"},
	}
	for _, tt := range tests {
		got := LookupCost(tt.id)
		want := LookupCost(tt.want)
		if got == nil || want == nil || *got != *want {
			t.Errorf("LookupCost(%q) = %v, want %v", tt.id, got, want)
		}
	}
	if LookupCost("mock") != nil {
		t.Error("unlisted model priced")
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 0.3, OutputPerMTok: 2.5}
	got := c.Cost(2_000_000, 400_000)
	if math.Abs(got-1.6) > 1e-9 {
		t.Errorf("cost = %v, want 1.6", got)
	}
}
