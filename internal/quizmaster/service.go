// Package quizmaster generates quizzes, grades submitted answers, and
// analyzes finished quizzes. Correctness is always decided locally
// against the stored quiz; the model writes questions and feedback
// text, never verdicts.
package quizmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/llm"
)

// Service is the quiz agent.
type Service struct {
	provider llm.Provider
	repo     *docstore.Repo
	config   Config
}

// New creates a quiz master over the given provider and repo.
func New(provider llm.Provider, repo *docstore.Repo, cfg Config) *Service {
	return &Service{provider: provider, repo: repo, config: cfg}
}

// quizOutput is the raw model response before validation.
type quizOutput struct {
	Questions []struct {
		Text          string            `json:"text"`
		Options       map[string]string `json:"options"`
		CorrectOption string            `json:"correct_option"`
		Explanation   string            `json:"explanation"`
		Concepts      []string          `json:"concepts"`
	} `json:"questions"`
}

// GenerateQuiz asks the model for a structured quiz, validates it, and
// persists it. A new quiz is always a fresh instance, never a resume.
func (s *Service) GenerateQuiz(ctx context.Context, in GenerateInput) (*docstore.QuizRecord, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	if in.NumQuestions < 1 {
		in.NumQuestions = DefaultQuestions
	}
	if in.Difficulty < 1 {
		in.Difficulty = 1
	}
	if in.Difficulty > 5 {
		in.Difficulty = 5
	}

	concepts := in.Concepts
	if len(concepts) == 0 {
		var err error
		concepts, err = s.repo.Concepts(ctx, in.Topic, in.Subtopic)
		if err != nil {
			return nil, fmt.Errorf("load concepts: %w", err)
		}
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: generateSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildGenerateMessage(in, concepts)},
		},
		Schema:      QuizSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var raw quizOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	questions, err := buildQuestions(raw)
	if err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(questions) > in.NumQuestions {
		questions = questions[:in.NumQuestions]
	}

	quiz := &docstore.QuizRecord{
		StudentID:  in.StudentID,
		Topic:      in.Topic,
		Subtopic:   in.Subtopic,
		Difficulty: in.Difficulty,
		Questions:  questions,
	}
	if _, err := s.repo.SaveQuiz(ctx, quiz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	return quiz, nil
}

func buildQuestions(raw quizOutput) ([]docstore.QuizQuestion, error) {
	if len(raw.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	out := make([]docstore.QuizQuestion, 0, len(raw.Questions))
	for i, q := range raw.Questions {
		if q.Text == "" {
			return nil, fmt.Errorf("question %d has empty text", i)
		}
		for _, key := range optionKeys {
			if q.Options[key] == "" {
				return nil, fmt.Errorf("question %d missing option %s", i, key)
			}
		}
		if !isOptionLetter(q.CorrectOption) {
			return nil, fmt.Errorf("question %d has invalid correct option %q", i, q.CorrectOption)
		}
		out = append(out, docstore.QuizQuestion{
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			Concepts:      q.Concepts,
		})
	}
	return out, nil
}

// EvaluateAnswer grades one submitted answer against the stored quiz,
// records it, and produces feedback text. Model failure degrades to the
// question's stored explanation; grading never depends on the model.
func (s *Service) EvaluateAnswer(ctx context.Context, quiz *docstore.QuizRecord, in EvaluateInput) (*Evaluation, error) {
	if in.QuestionIndex < 0 || in.QuestionIndex >= len(quiz.Questions) {
		return nil, fmt.Errorf("question index %d out of range [0,%d)", in.QuestionIndex, len(quiz.Questions))
	}
	q := quiz.Questions[in.QuestionIndex]

	selected := ParseSelectedOption(in.Utterance, q)
	if selected == "" {
		return &Evaluation{
			Recognized:    false,
			CorrectOption: q.CorrectOption,
			Feedback:      "I couldn't tell which option you picked. Please answer with A, B, C, or D.",
		}, nil
	}

	correct := selected == q.CorrectOption

	if err := s.repo.LogAnswer(ctx, docstore.QuizAnswer{
		QuizID:        quiz.Key,
		StudentID:     in.StudentID,
		QuestionIndex: in.QuestionIndex,
		Selected:      selected,
		Correct:       correct,
	}); err != nil {
		return nil, fmt.Errorf("log answer: %w", err)
	}

	return &Evaluation{
		Recognized:    true,
		Selected:      selected,
		Correct:       correct,
		CorrectOption: q.CorrectOption,
		Feedback:      s.feedback(ctx, q, selected, correct),
	}, nil
}

// feedback asks the model to react to the answer, falling back to the
// stored explanation when the model is unavailable.
func (s *Service) feedback(ctx context.Context, q docstore.QuizQuestion, selected string, correct bool) string {
	ctx = llm.WithPurpose(ctx, "answer-feedback")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: feedbackSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildFeedbackMessage(q, selected, correct)},
		},
		MaxTokens:   512,
		Temperature: s.config.Temperature,
	})
	if err == nil {
		return resp.Text()
	}

	if correct {
		return fmt.Sprintf("Correct! %s", q.Explanation)
	}
	return fmt.Sprintf("Not quite. The answer was %s. %s", q.CorrectOption, q.Explanation)
}

// AnalyzeResults computes the final score, asks the model for an
// analysis, and persists the result. The score and the persisted record
// never depend on the model call succeeding.
func (s *Service) AnalyzeResults(ctx context.Context, quiz *docstore.QuizRecord) (*docstore.QuizResult, error) {
	answers, err := s.repo.Answers(ctx, quiz.Key)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
		}
	}
	total := len(quiz.Questions)

	result := &docstore.QuizResult{
		QuizID:    quiz.Key,
		StudentID: quiz.StudentID,
		Topic:     quiz.Topic,
		Correct:   correct,
		Total:     total,
		Score:     float64(correct) / float64(total),
		Analysis:  s.analysis(ctx, quiz, answers, correct),
	}
	if _, err := s.repo.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}
	return result, nil
}

func (s *Service) analysis(ctx context.Context, quiz *docstore.QuizRecord, answers []docstore.QuizAnswer, correct int) string {
	ctx = llm.WithPurpose(ctx, "quiz-analysis")

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: analysisSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAnalysisMessage(quiz, answers, correct)},
		},
		MaxTokens:   512,
		Temperature: s.config.Temperature,
	})
	if err == nil {
		return resp.Text()
	}

	missed := MissedConcepts(quiz, answers)
	if len(missed) == 0 {
		return fmt.Sprintf("You scored %d out of %d. Great work across the board.", correct, len(quiz.Questions))
	}
	return fmt.Sprintf("You scored %d out of %d. Worth revisiting: %s.", correct, len(quiz.Questions), strings.Join(missed, ", "))
}

// FollowUpQuiz generates a fresh quiz targeting only the concepts the
// student missed. Returns an error when nothing was missed.
func (s *Service) FollowUpQuiz(ctx context.Context, quiz *docstore.QuizRecord) (*docstore.QuizRecord, error) {
	answers, err := s.repo.Answers(ctx, quiz.Key)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	missed := MissedConcepts(quiz, answers)
	if len(missed) == 0 {
		return nil, fmt.Errorf("no missed concepts to follow up on")
	}

	return s.GenerateQuiz(ctx, GenerateInput{
		StudentID:    quiz.StudentID,
		Topic:        quiz.Topic,
		Subtopic:     quiz.Subtopic,
		Difficulty:   quiz.Difficulty,
		NumQuestions: len(quiz.Questions),
		Concepts:     missed,
	})
}
