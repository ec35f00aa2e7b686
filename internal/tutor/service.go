// Package tutor answers student questions, provides hints, and explains
// misconceptions through the model collaborator.
package tutor

import (
	"context"
	"fmt"

	"github.com/abhisek/tutorbot/internal/llm"
)

// Service is the question-answering agent.
type Service struct {
	provider llm.Provider
	config   Config
}

// New creates a tutor over the given provider.
func New(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, config: cfg}
}

// AnswerQuestion answers a free-form student question with recent
// conversation history as context.
func (s *Service) AnswerQuestion(ctx context.Context, in AnswerInput) (string, error) {
	ctx = llm.WithPurpose(ctx, "answer-question")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: answerSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAnswerMessage(in, s.config.MaxHistoryTurns)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return resp.Text(), nil
}

// ProvideHint returns a nudge toward the solution without revealing it.
func (s *Service) ProvideHint(ctx context.Context, in HintInput) (string, error) {
	ctx = llm.WithPurpose(ctx, "hint")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: hintSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildHintMessage(in)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("provide hint: %w", err)
	}
	return resp.Text(), nil
}

// ExplainMisconception explains why a specific misunderstanding is
// wrong and what the correct rule is.
func (s *Service) ExplainMisconception(ctx context.Context, in MisconceptionInput) (string, error) {
	ctx = llm.WithPurpose(ctx, "misconception")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: misconceptionSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildMisconceptionMessage(in)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("explain misconception: %w", err)
	}
	return resp.Text(), nil
}
