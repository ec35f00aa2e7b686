// Package guide generates lessons, study plans, and resource
// recommendations through the model collaborator.
package guide

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/llm"
)

// Service is the learning-guide agent.
type Service struct {
	provider llm.Provider
	repo     *docstore.Repo
	config   Config
}

// New creates a guide over the given provider and repo.
func New(provider llm.Provider, repo *docstore.Repo, cfg Config) *Service {
	return &Service{provider: provider, repo: repo, config: cfg}
}

// LearningContent generates a short lesson on a topic.
func (s *Service) LearningContent(ctx context.Context, in ContentInput) (string, error) {
	ctx = llm.WithPurpose(ctx, "learning-content")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: contentSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildContentMessage(in)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("learning content: %w", err)
	}
	return resp.Text(), nil
}

// StudyPlan generates and persists a study plan. Missing goal or
// timeline hints fall back to defaults.
func (s *Service) StudyPlan(ctx context.Context, in PlanInput) (*docstore.StudyPlan, error) {
	ctx = llm.WithPurpose(ctx, "study-plan")

	if in.Goal == "" {
		in.Goal = DefaultGoal
	}
	if in.Timeline == "" {
		in.Timeline = DefaultTimeline
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: planSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPlanMessage(in)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("study plan: %w", err)
	}

	plan := &docstore.StudyPlan{
		StudentID: in.StudentID,
		Topic:     in.Topic,
		Goal:      in.Goal,
		Timeline:  in.Timeline,
		Plan:      resp.Text(),
	}
	if _, err := s.repo.SaveStudyPlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("save study plan: %w", err)
	}
	return plan, nil
}

// RecommendResources returns structured resource recommendations for a
// topic.
func (s *Service) RecommendResources(ctx context.Context, in ResourceInput) ([]Resource, error) {
	ctx = llm.WithPurpose(ctx, "resources")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: resourcesSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildResourcesMessage(in)},
		},
		Schema:      ResourcesSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("recommend resources: %w", err)
	}

	var out struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return out.Resources, nil
}
