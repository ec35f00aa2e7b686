// Package dispatch routes a classified turn to exactly one handling
// branch and guarantees the session state is consistent before the
// turn ends. Collaborator failures degrade to fallback text; a turn
// always produces a response.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/tutorbot/internal/classify"
	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/guide"
	"github.com/abhisek/tutorbot/internal/quizmaster"
	"github.com/abhisek/tutorbot/internal/session"
	"github.com/abhisek/tutorbot/internal/tutor"
)

// QuestionAnswerer answers free-form questions.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, in tutor.AnswerInput) (string, error)
}

// QuizAgent generates, grades, and analyzes quizzes.
type QuizAgent interface {
	GenerateQuiz(ctx context.Context, in quizmaster.GenerateInput) (*docstore.QuizRecord, error)
	EvaluateAnswer(ctx context.Context, quiz *docstore.QuizRecord, in quizmaster.EvaluateInput) (*quizmaster.Evaluation, error)
	AnalyzeResults(ctx context.Context, quiz *docstore.QuizRecord) (*docstore.QuizResult, error)
}

// ContentGuide generates lessons and study plans.
type ContentGuide interface {
	LearningContent(ctx context.Context, in guide.ContentInput) (string, error)
	StudyPlan(ctx context.Context, in guide.PlanInput) (*docstore.StudyPlan, error)
}

// ProgressTracker summarizes stored results.
type ProgressTracker interface {
	Summary(ctx context.Context, studentID string, days int) (*docstore.ProgressReport, error)
}

// Config tunes the dispatcher.
type Config struct {
	// CallTimeout bounds each collaborator call. The registry lock is
	// never held across these calls.
	CallTimeout time.Duration
}

// DefaultConfig returns the dispatcher's standard settings.
func DefaultConfig() Config {
	return Config{CallTimeout: 30 * time.Second}
}

// Dispatcher owns the intent-to-branch transition table.
type Dispatcher struct {
	tutor     QuestionAnswerer
	quiz      QuizAgent
	guide     ContentGuide
	progress  ProgressTracker
	extractor classify.Extractor
	repo      *docstore.Repo
	publisher event.Publisher
	config    Config
}

// New creates a dispatcher. A nil publisher disables events.
func New(
	t QuestionAnswerer,
	q QuizAgent,
	g ContentGuide,
	p ProgressTracker,
	ex classify.Extractor,
	repo *docstore.Repo,
	pub event.Publisher,
	cfg Config,
) *Dispatcher {
	if pub == nil {
		pub = event.Nop{}
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig().CallTimeout
	}
	return &Dispatcher{
		tutor:     t,
		quiz:      q,
		guide:     g,
		progress:  p,
		extractor: ex,
		repo:      repo,
		publisher: pub,
		config:    cfg,
	}
}

// Result is one dispatched turn's outcome.
type Result struct {
	Response string
	Intent   classify.Intent

	// Fallback marks that a collaborator failed and the response is
	// the user-safe substitute.
	Fallback bool
}

// Dispatch classifies the utterance, runs exactly one branch, and
// appends both sides of the turn to the conversation history. The
// returned error reports only broken state invariants, never
// collaborator failures.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, st *session.State, utterance string) (Result, error) {
	intent := classify.Classify(utterance, st.Mode, st.ActiveQuizID != "")
	d.publish(event.KeyTurnClassified, map[string]any{
		"session_id": sessionID,
		"intent":     string(intent),
	})

	var res Result
	res.Intent = intent

	switch intent {
	case classify.IntentQuestion:
		res.Response, res.Fallback = d.handleQuestion(ctx, st, utterance)
	case classify.IntentQuizRequest:
		res.Response, res.Fallback = d.handleQuizRequest(ctx, st, utterance)
	case classify.IntentQuizAnswer:
		res.Response, res.Fallback = d.handleQuizAnswer(ctx, st, utterance)
	case classify.IntentContent:
		res.Response, res.Fallback = d.handleContent(ctx, st, utterance)
	case classify.IntentProgress:
		res.Response, res.Fallback = d.handleProgress(ctx, st)
	case classify.IntentStudyPlan:
		res.Response, res.Fallback = d.handleStudyPlan(ctx, st, utterance)
	default:
		return Result{}, fmt.Errorf("unhandled intent %q", intent)
	}

	// The turn's history append happens regardless of branch outcome.
	if err := st.RecordTurn(session.RoleUser, utterance); err != nil {
		return res, err
	}
	if err := st.RecordTurn(session.RoleSystem, res.Response); err != nil {
		return res, err
	}

	if err := st.Validate(); err != nil {
		return res, fmt.Errorf("state invariant after %s branch: %w", intent, err)
	}

	key := event.KeyTurnCompleted
	if res.Fallback {
		key = event.KeyTurnFallback
	}
	d.publish(key, map[string]any{
		"session_id": sessionID,
		"intent":     string(intent),
	})

	return res, nil
}

// publish emits an event best-effort. Event delivery never affects the
// turn.
func (d *Dispatcher) publish(key string, payload any) {
	_ = d.publisher.Publish(key, payload)
}

// callCtx bounds one collaborator call.
func (d *Dispatcher) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.config.CallTimeout)
}
