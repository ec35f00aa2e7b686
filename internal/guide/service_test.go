package guide

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/llm"
)

func newTestService(mock *llm.MockProvider) (*Service, *docstore.Repo) {
	repo := docstore.NewRepo(docstore.NewMemory())
	return New(mock, repo, DefaultConfig()), repo
}

func TestLearningContent(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(`"Fractions name parts of a whole. Example: 3/4 of a pizza."`)
	svc, _ := newTestService(mock)

	got, err := svc.LearningContent(context.Background(), ContentInput{
		Topic:      "fractions",
		Subtopic:   "basics",
		Difficulty: 2,
	})
	if err != nil {
		t.Fatalf("LearningContent() error = %v", err)
	}
	if got == "" {
		t.Error("LearningContent() returned empty lesson")
	}

	msg := mock.Calls()[0].Messages[0].Content
	if !strings.Contains(msg, "fractions") || !strings.Contains(msg, "basics") {
		t.Errorf("prompt missing topic/subtopic: %q", msg)
	}
}

func TestStudyPlanAppliesDefaultsAndPersists(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(`"Week 1: review basics. Week 2: practice."`)
	svc, _ := newTestService(mock)

	plan, err := svc.StudyPlan(context.Background(), PlanInput{StudentID: "s1", Topic: "algebra"})
	if err != nil {
		t.Fatalf("StudyPlan() error = %v", err)
	}
	if plan.Goal != DefaultGoal {
		t.Errorf("Goal = %q, want default %q", plan.Goal, DefaultGoal)
	}
	if plan.Timeline != DefaultTimeline {
		t.Errorf("Timeline = %q, want default %q", plan.Timeline, DefaultTimeline)
	}
	if plan.Key == "" {
		t.Error("plan was not persisted")
	}
	if !strings.Contains(plan.Plan, "Week 1") {
		t.Errorf("Plan = %q", plan.Plan)
	}
}

func TestStudyPlanKeepsExplicitHints(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(`"plan"`)
	svc, _ := newTestService(mock)

	plan, err := svc.StudyPlan(context.Background(), PlanInput{
		StudentID: "s1",
		Topic:     "algebra",
		Goal:      "pass the entrance exam",
		Timeline:  "6 weeks",
	})
	if err != nil {
		t.Fatalf("StudyPlan() error = %v", err)
	}
	if plan.Goal != "pass the entrance exam" || plan.Timeline != "6 weeks" {
		t.Errorf("plan = %+v, want explicit hints preserved", plan)
	}

	msg := mock.Calls()[0].Messages[0].Content
	if !strings.Contains(msg, "pass the entrance exam") || !strings.Contains(msg, "6 weeks") {
		t.Errorf("prompt missing hints: %q", msg)
	}
}

func TestRecommendResourcesStructured(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(`{
		"resources": [
			{"title": "Fraction Foundations", "kind": "video", "description": "Visual introduction for beginners."},
			{"title": "Practice Set 3", "kind": "exercise", "description": "Mixed drills with solutions."}
		]
	}`)
	svc, _ := newTestService(mock)

	got, err := svc.RecommendResources(context.Background(), ResourceInput{Topic: "fractions", Difficulty: 2})
	if err != nil {
		t.Fatalf("RecommendResources() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(resources) = %d, want 2", len(got))
	}
	if got[0].Kind != "video" || got[1].Kind != "exercise" {
		t.Errorf("kinds = %q, %q", got[0].Kind, got[1].Kind)
	}
	if mock.Calls()[0].Schema == nil {
		t.Error("resource recommendation should request structured output")
	}
}

func TestRecommendResourcesPropagatesModelError(t *testing.T) {
	mock := llm.NewMockProvider().AddError(&llm.ErrRateLimit{Err: errors.New("quota")})
	svc, _ := newTestService(mock)

	_, err := svc.RecommendResources(context.Background(), ResourceInput{Topic: "fractions"})
	var rate *llm.ErrRateLimit
	if !errors.As(err, &rate) {
		t.Errorf("error = %v, want *llm.ErrRateLimit", err)
	}
}
