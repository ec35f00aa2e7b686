// Package progressagent summarizes a student's progress, recommends
// difficulty adjustments, and describes learning patterns from stored
// quiz results.
package progressagent

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/llm"
)

// Config bounds the model calls the progress agent makes.
type Config struct {
	MaxTokens   int
	Temperature float64

	// DefaultPeriodDays is the reporting window when the caller gives
	// none.
	DefaultPeriodDays int
}

// DefaultConfig returns the progress agent's standard settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         1024,
		Temperature:       0.6,
		DefaultPeriodDays: 30,
	}
}

// Service is the progress-tracking agent.
type Service struct {
	provider llm.Provider
	repo     *docstore.Repo
	config   Config
	now      func() time.Time
}

// New creates a progress agent over the given provider and repo.
func New(provider llm.Provider, repo *docstore.Repo, cfg Config) *Service {
	return &Service{provider: provider, repo: repo, config: cfg, now: time.Now}
}

// Summary computes per-topic stats over the period, asks the model for
// a narrative report, and persists it.
func (s *Service) Summary(ctx context.Context, studentID string, days int) (*docstore.ProgressReport, error) {
	ctx = llm.WithPurpose(ctx, "progress-report")

	if days <= 0 {
		days = s.config.DefaultPeriodDays
	}

	results, err := s.repo.Results(ctx, studentID, "", 0)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	stats := computeTopicStats(results, cutoff)

	text := s.reportText(ctx, stats, days)

	report := &docstore.ProgressReport{
		StudentID:  studentID,
		PeriodDays: days,
		Report:     text,
	}
	if _, err := s.repo.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

// reportText asks the model for the narrative, falling back to a
// deterministic rendering of the stats.
func (s *Service) reportText(ctx context.Context, stats []TopicStats, days int) string {
	resp, err := s.provider.Generate(ctx, llm.Request{
		System: summarySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSummaryMessage(stats, days)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err == nil {
		return resp.Text()
	}

	if len(stats) == 0 {
		return fmt.Sprintf("No quiz activity in the last %d days yet. Take a quiz to start tracking progress.", days)
	}
	return fmt.Sprintf("Activity over the last %d days:\n%s", days, formatStats(stats))
}

// RecommendDifficulty returns the student's current level for a topic
// and a recommended level derived from recent average scores. It does
// not persist the recommendation; the caller decides whether to apply
// it.
func (s *Service) RecommendDifficulty(ctx context.Context, studentID, topic string) (current, recommended int, err error) {
	current, err = s.repo.DifficultyLevel(ctx, studentID, topic)
	if err != nil {
		return 0, 0, fmt.Errorf("load difficulty: %w", err)
	}

	results, err := s.repo.Results(ctx, studentID, topic, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("load results: %w", err)
	}
	cutoff := s.now().UTC().AddDate(0, 0, -s.config.DefaultPeriodDays)
	stats := computeTopicStats(results, cutoff)

	return current, recommendLevel(current, stats), nil
}

// LearningPattern describes the student's study habits from stored
// results.
func (s *Service) LearningPattern(ctx context.Context, studentID string) (string, error) {
	ctx = llm.WithPurpose(ctx, "learning-pattern")

	results, err := s.repo.Results(ctx, studentID, "", 0)
	if err != nil {
		return "", fmt.Errorf("load results: %w", err)
	}
	stats := computeTopicStats(results, time.Time{})

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: patternSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPatternMessage(stats, results)},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("learning pattern: %w", err)
	}
	return resp.Text(), nil
}
