package llm

import (
	"context"
	"encoding/json"
)

// Provider is the model collaborator abstraction. Agents build a Request
// from their prompt templates and receive either free text or JSON
// conforming to the request's Schema.
type Provider interface {
	// Generate sends a prompt to the model and returns its response.
	// When the request carries a Schema, the provider uses its native
	// structured output mechanism and the response Content is the
	// validated JSON document.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured with.
	ModelID() string
}

// Request describes a single model call.
type Request struct {
	// System sets the model's role and constraints for this call.
	System string

	// Messages is the conversation sent to the model. Most agent calls
	// are single-turn: one user message built from a prompt template.
	Messages []Message

	// Schema, when set, constrains the response to a JSON document
	// conforming to it. When nil, Content is the raw text wrapped as
	// json.RawMessage.
	Schema *Schema

	// MaxTokens bounds the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero means deterministic.
	Temperature float64
}

// Message is a single turn in the prompt conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the response must conform to.
type Schema struct {
	// Name identifies the schema. Kebab-case, e.g. "quiz-questions".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// requested, raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this call.
	Usage Usage

	// Model is the model that actually served the call.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text. Free-text responses
// arrive as a JSON-encoded string from some providers; those are unwrapped.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}
