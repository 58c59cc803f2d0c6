package llm

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func answerSchema() *Schema {
	return &Schema{
		Name:        "test-answer",
		Description: "One answer key entry",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":                 map[string]any{"type": "integer", "minimum": 1},
				"correctAnswerIndex": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
				"explanation":        map[string]any{"type": "string"},
				"unit":               map[string]any{"type": "string", "enum": []any{"N", "J", "W"}},
			},
			"required": []any{"id", "correctAnswerIndex"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"id":1,"correctAnswerIndex":2,"explanation":"F = ma","unit":"N"}`, false},
		{"optional fields omitted", `{"id":2,"correctAnswerIndex":0}`, false},
		{"missing required", `{"id":3}`, true},
		{"wrong type", `{"id":"four","correctAnswerIndex":1}`, true},
		{"index out of range", `{"id":5,"correctAnswerIndex":4}`, true},
		{"enum violation", `{"id":6,"correctAnswerIndex":1,"unit":"kg"}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(answerSchema(), json.RawMessage(tt.raw), "end")
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if string(invErr.Content) != tt.raw {
				t.Errorf("content = %q, want %q", invErr.Content, tt.raw)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`), "max_tokens"); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name:        "test-exam",
		Description: "Questions with options",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"text": map[string]any{"type": "string"},
							"options": map[string]any{
								"type":     "array",
								"items":    map[string]any{"type": "string"},
								"minItems": 4,
								"maxItems": 4,
							},
						},
						"required": []any{"text", "options"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}

	valid := json.RawMessage(`{"questions":[{"text":"\\(v = d/t\\)","options":["1","2","3","4"]}]}`)
	if err := validateResponse(schema, valid, "end"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	short := json.RawMessage(`{"questions":[{"text":"q","options":["1","2"]}]}`)
	if err := validateResponse(schema, short, "end"); err == nil {
		t.Fatal("expected error for a question with two options")
	}
}

func TestValidateResponse_Truncated(t *testing.T) {
	raw := json.RawMessage(`{"id":1,"correctAnswerIndex":2,"explanation":"F = m`)

	err := validateResponse(answerSchema(), raw, "max_tokens")
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %v", err)
	}
	if string(maxTok.Content) != string(raw) {
		t.Errorf("content = %s", maxTok.Content)
	}

	// The same reply without the stop reason is just malformed.
	err = validateResponse(answerSchema(), raw, "end")
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %v", err)
	}

	// A complete reply that happens to end at the limit still passes.
	if err := validateResponse(answerSchema(), json.RawMessage(`{"id":1,"correctAnswerIndex":2}`), "max_tokens"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_ExactIntegers(t *testing.T) {
	if err := validateResponse(answerSchema(), json.RawMessage(`{"id":1,"correctAnswerIndex":2.5}`), "end"); err == nil {
		t.Fatal("fractional answer index accepted")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrRateLimit{}, "provider rate limit reached"},
		{&ErrRateLimit{RetryAfter: 8 * time.Second, Err: errors.New("429")}, "provider rate limit reached, retry after 8s: 429"},
		{&ErrProviderUnavailable{}, "AI provider unreachable"},
		{&ErrProviderUnavailable{Err: errors.New("503")}, "AI provider unreachable: 503"},
		{&ErrMaxTokensExceeded{Content: json.RawMessage(`{"a":`)}, "reply truncated at the token limit after 5 bytes"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
