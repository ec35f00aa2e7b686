package quizmaster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/llm"
)

// quizJSON renders a valid quiz response with n questions.
func quizJSON(n int) string {
	questions := make([]map[string]any, n)
	for i := range n {
		questions[i] = map[string]any{
			"text": fmt.Sprintf("Question %d?", i+1),
			"options": map[string]string{
				"A": "right", "B": "wrong", "C": "wrong too", "D": "also wrong",
			},
			"correct_option": "A",
			"explanation":    "Because A.",
			"concepts":       []string{fmt.Sprintf("concept-%d", i+1)},
		}
	}
	raw, _ := json.Marshal(map[string]any{"questions": questions})
	return string(raw)
}

func newTestService(mock *llm.MockProvider) (*Service, *docstore.Repo) {
	repo := docstore.NewRepo(docstore.NewMemory())
	return New(mock, repo, DefaultConfig()), repo
}

func TestGenerateQuizPersists(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(quizJSON(5))
	svc, repo := newTestService(mock)

	quiz, err := svc.GenerateQuiz(context.Background(), GenerateInput{
		StudentID:    "s1",
		Topic:        "fractions",
		Subtopic:     "basics",
		Difficulty:   3,
		NumQuestions: 5,
	})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if quiz.Key == "" {
		t.Fatal("quiz was not assigned a key")
	}
	if len(quiz.Questions) != 5 {
		t.Errorf("len(Questions) = %d, want 5", len(quiz.Questions))
	}

	stored, err := repo.Quiz(context.Background(), quiz.Key)
	if err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}
	if len(stored.Questions) != 5 {
		t.Errorf("stored questions = %d, want 5", len(stored.Questions))
	}

	// The curriculum concepts should appear in the prompt when the
	// caller gives none.
	msg := mock.Calls()[0].Messages[0].Content
	if !strings.Contains(msg, "Concepts to cover:") {
		t.Errorf("prompt missing concepts line: %q", msg)
	}
	if mock.Calls()[0].Schema == nil {
		t.Error("quiz generation should request structured output")
	}
}

func TestGenerateQuizDefaultsQuestionCount(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(quizJSON(5))
	svc, _ := newTestService(mock)

	quiz, err := svc.GenerateQuiz(context.Background(), GenerateInput{
		StudentID: "s1",
		Topic:     "fractions",
	})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if len(quiz.Questions) != DefaultQuestions {
		t.Errorf("len(Questions) = %d, want default %d", len(quiz.Questions), DefaultQuestions)
	}

	msg := mock.Calls()[0].Messages[0].Content
	if !strings.Contains(msg, "Number of questions: 5") {
		t.Errorf("prompt did not default the question count: %q", msg)
	}
}

func TestGenerateQuizRejectsMalformedQuestions(t *testing.T) {
	// Missing option D on the only question.
	bad := `{"questions":[{"text":"Q?","options":{"A":"1","B":"2","C":"3","D":""},"correct_option":"A","explanation":"x","concepts":[]}]}`
	mock := llm.NewMockProvider().AddResponse(bad)
	svc, _ := newTestService(mock)

	_, err := svc.GenerateQuiz(context.Background(), GenerateInput{StudentID: "s1", Topic: "fractions"})
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Errorf("error = %v, want *llm.ErrInvalidResponse", err)
	}
}

func TestGenerateQuizPropagatesModelError(t *testing.T) {
	mock := llm.NewMockProvider().AddError(&llm.ErrProviderUnavailable{Err: errors.New("down")})
	svc, _ := newTestService(mock)

	_, err := svc.GenerateQuiz(context.Background(), GenerateInput{StudentID: "s1", Topic: "fractions"})
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("error = %v, want *llm.ErrProviderUnavailable", err)
	}
}

func TestEvaluateAnswerCorrectnessIsLocal(t *testing.T) {
	// The model feedback claims the answer is wrong; grading must not care.
	mock := llm.NewMockProvider().
		AddResponse(quizJSON(2)).
		AddResponse(`"Nice work, that is exactly right."`)
	svc, repo := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 2})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}

	eval, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{
		StudentID:     "s1",
		QuestionIndex: 0,
		Utterance:     "A",
	})
	if err != nil {
		t.Fatalf("EvaluateAnswer() error = %v", err)
	}
	if !eval.Recognized || !eval.Correct || eval.Selected != "A" {
		t.Errorf("eval = %+v, want recognized correct A", eval)
	}
	if eval.Feedback == "" {
		t.Error("empty feedback")
	}

	answers, err := repo.Answers(ctx, quiz.Key)
	if err != nil {
		t.Fatalf("Answers() error = %v", err)
	}
	if len(answers) != 1 || !answers[0].Correct {
		t.Errorf("answers = %+v, want one correct answer logged", answers)
	}
}

func TestEvaluateAnswerFallsBackToExplanation(t *testing.T) {
	mock := llm.NewMockProvider().
		AddResponse(quizJSON(1)).
		AddError(&llm.ErrProviderUnavailable{Err: errors.New("down")})
	svc, _ := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}

	eval, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{
		StudentID:     "s1",
		QuestionIndex: 0,
		Utterance:     "B",
	})
	if err != nil {
		t.Fatalf("EvaluateAnswer() error = %v", err)
	}
	if eval.Correct {
		t.Error("B graded correct, want incorrect")
	}
	if !strings.Contains(eval.Feedback, "Because A.") {
		t.Errorf("feedback = %q, want stored explanation fallback", eval.Feedback)
	}
}

func TestEvaluateAnswerUnrecognized(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(quizJSON(1))
	svc, repo := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}

	eval, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{
		StudentID:     "s1",
		QuestionIndex: 0,
		Utterance:     "hmm not sure",
	})
	if err != nil {
		t.Fatalf("EvaluateAnswer() error = %v", err)
	}
	if eval.Recognized {
		t.Error("Recognized = true for unreadable answer")
	}

	answers, err := repo.Answers(ctx, quiz.Key)
	if err != nil {
		t.Fatalf("Answers() error = %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("unrecognized answer was logged: %+v", answers)
	}
}

func TestEvaluateAnswerIndexOutOfRange(t *testing.T) {
	mock := llm.NewMockProvider().AddResponse(quizJSON(1))
	svc, _ := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}

	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{QuestionIndex: 5, Utterance: "A"}); err == nil {
		t.Error("EvaluateAnswer() with bad index error = nil, want failure")
	}
}

func TestAnalyzeResultsScoreAndPersistence(t *testing.T) {
	mock := llm.NewMockProvider().
		AddResponse(quizJSON(2)).
		AddResponse(`"ok"`).  // feedback for answer 1
		AddResponse(`"ok"`).  // feedback for answer 2
		AddResponse(`"You did well on the basics."`)
	svc, repo := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 2})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{StudentID: "s1", QuestionIndex: 0, Utterance: "A"}); err != nil {
		t.Fatalf("EvaluateAnswer(0) error = %v", err)
	}
	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{StudentID: "s1", QuestionIndex: 1, Utterance: "B"}); err != nil {
		t.Fatalf("EvaluateAnswer(1) error = %v", err)
	}

	result, err := svc.AnalyzeResults(ctx, quiz)
	if err != nil {
		t.Fatalf("AnalyzeResults() error = %v", err)
	}
	if result.Correct != 1 || result.Total != 2 {
		t.Errorf("result = %d/%d, want 1/2", result.Correct, result.Total)
	}
	if result.Score != 0.5 {
		t.Errorf("Score = %v, want 0.5", result.Score)
	}

	stored, err := repo.ResultForQuiz(ctx, quiz.Key)
	if err != nil {
		t.Fatalf("ResultForQuiz() error = %v", err)
	}
	if stored.Score != 0.5 {
		t.Errorf("stored Score = %v, want 0.5", stored.Score)
	}
}

func TestAnalyzeResultsSurvivesModelFailure(t *testing.T) {
	mock := llm.NewMockProvider().
		AddResponse(quizJSON(1)).
		AddResponse(`"ok"`).
		AddError(&llm.ErrProviderUnavailable{Err: errors.New("down")})
	svc, _ := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{StudentID: "s1", QuestionIndex: 0, Utterance: "A"}); err != nil {
		t.Fatalf("EvaluateAnswer() error = %v", err)
	}

	result, err := svc.AnalyzeResults(ctx, quiz)
	if err != nil {
		t.Fatalf("AnalyzeResults() error = %v", err)
	}
	if result.Analysis == "" {
		t.Error("Analysis empty, want deterministic fallback")
	}
	if result.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", result.Score)
	}
}

func TestFollowUpQuizTargetsMissedConcepts(t *testing.T) {
	mock := llm.NewMockProvider().
		AddResponse(quizJSON(2)).
		AddResponse(`"ok"`).
		AddResponse(`"ok"`).
		AddResponse(quizJSON(2))
	svc, _ := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 2})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	// Miss question 1 (concept-1), get question 2 right.
	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{StudentID: "s1", QuestionIndex: 0, Utterance: "B"}); err != nil {
		t.Fatalf("EvaluateAnswer(0) error = %v", err)
	}
	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{StudentID: "s1", QuestionIndex: 1, Utterance: "A"}); err != nil {
		t.Fatalf("EvaluateAnswer(1) error = %v", err)
	}

	followUp, err := svc.FollowUpQuiz(ctx, quiz)
	if err != nil {
		t.Fatalf("FollowUpQuiz() error = %v", err)
	}
	if followUp.Key == quiz.Key {
		t.Error("follow-up reused the original quiz key, want a fresh instance")
	}

	// The generation prompt must target only the missed concept.
	calls := mock.Calls()
	prompt := calls[len(calls)-1].Messages[0].Content
	if !strings.Contains(prompt, "concept-1") {
		t.Errorf("follow-up prompt missing missed concept: %q", prompt)
	}
	if strings.Contains(prompt, "concept-2") {
		t.Errorf("follow-up prompt includes mastered concept: %q", prompt)
	}
}

func TestFollowUpQuizNothingMissed(t *testing.T) {
	mock := llm.NewMockProvider().
		AddResponse(quizJSON(1)).
		AddResponse(`"ok"`)
	svc, _ := newTestService(mock)
	ctx := context.Background()

	quiz, err := svc.GenerateQuiz(ctx, GenerateInput{StudentID: "s1", Topic: "fractions", NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if _, err := svc.EvaluateAnswer(ctx, quiz, EvaluateInput{StudentID: "s1", QuestionIndex: 0, Utterance: "A"}); err != nil {
		t.Fatalf("EvaluateAnswer() error = %v", err)
	}

	if _, err := svc.FollowUpQuiz(ctx, quiz); err == nil {
		t.Error("FollowUpQuiz() with perfect score error = nil, want failure")
	}
}
