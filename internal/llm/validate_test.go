package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func answerSchema() *Schema {
	return &Schema{
		Name:        "test-answer",
		Description: "A graded answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"correct": map[string]any{"type": "boolean"},
				"feedback": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
			},
			"required": []any{"correct", "feedback"},
		},
	}
}

func TestValidateResponseAccepts(t *testing.T) {
	raw := json.RawMessage(`{"correct": true, "feedback": "well done"}`)
	if err := validateResponse(answerSchema(), raw); err != nil {
		t.Errorf("validateResponse() error = %v, want nil", err)
	}
}

func TestValidateResponseRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `not json at all`},
		{"missing required", `{"correct": true}`},
		{"wrong type", `{"correct": "yes", "feedback": "ok"}`},
		{"empty feedback", `{"correct": false, "feedback": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(answerSchema(), json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("validateResponse() error = nil, want failure")
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Errorf("error = %v, want *ErrInvalidResponse", err)
			}
		})
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Errorf("validateResponse(nil, ...) error = %v, want nil", err)
	}
}

func TestResponseTextUnwrapsJSONString(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"quoted string", `"hello there"`, "hello there"},
		{"plain text", `hello there`, "hello there"},
		{"json object", `{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Content: json.RawMessage(tt.content)}
			if got := r.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}
