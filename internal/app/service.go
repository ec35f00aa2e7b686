// Package app wires the session registry, dispatcher, and storage into
// the operations the HTTP layer exposes: start a session, handle a
// turn, end a session.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/tutorbot/internal/dispatch"
	"github.com/abhisek/tutorbot/internal/docstore"
	"github.com/abhisek/tutorbot/internal/event"
	"github.com/abhisek/tutorbot/internal/session"
)

// Service exposes the tutoring entry points.
type Service struct {
	registry   *session.Registry
	dispatcher *dispatch.Dispatcher
	repo       *docstore.Repo
	publisher  event.Publisher
}

// New creates the application service. A nil publisher disables events.
func New(registry *session.Registry, d *dispatch.Dispatcher, repo *docstore.Repo, pub event.Publisher) *Service {
	if pub == nil {
		pub = event.Nop{}
	}
	return &Service{
		registry:   registry,
		dispatcher: d,
		repo:       repo,
		publisher:  pub,
	}
}

// StartSessionRequest carries the optional seed values for a new
// session.
type StartSessionRequest struct {
	StudentID string
	Name      string
	Topic     string
	Subtopic  string

	// Difficulty zero means "use the student's stored level".
	Difficulty int
}

// StartSession validates the request, ensures the student's profile
// exists, and seeds a fresh session. Returns the new session id.
func (s *Service) StartSession(ctx context.Context, req StartSessionRequest) (string, error) {
	if strings.TrimSpace(req.StudentID) == "" {
		return "", &ValidationError{Field: "student_id", Reason: "must not be empty"}
	}
	if req.Difficulty != 0 && (req.Difficulty < session.MinDifficulty || req.Difficulty > session.MaxDifficulty) {
		return "", &ValidationError{
			Field:  "difficulty",
			Reason: fmt.Sprintf("must be between %d and %d", session.MinDifficulty, session.MaxDifficulty),
		}
	}

	if _, err := s.repo.EnsureProfile(ctx, req.StudentID, req.Name); err != nil {
		return "", fmt.Errorf("ensure profile: %w", err)
	}

	difficulty := req.Difficulty
	if difficulty == 0 {
		stored, err := s.repo.DifficultyLevel(ctx, req.StudentID, req.Topic)
		if err != nil {
			stored = docstore.DefaultDifficulty
		}
		difficulty = stored
	}

	var logID string
	if req.Topic != "" {
		id, err := s.repo.StartLearningLog(ctx, req.StudentID, req.Topic)
		if err == nil {
			logID = id
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to start learning log: %v\n", err)
		}
	}

	sessionID := uuid.NewString()
	st := s.registry.GetOrCreate(sessionID, req.StudentID)
	st.StartTopicSession(req.Topic, req.Subtopic, difficulty, session.ModeExploration, logID)

	_ = s.publisher.Publish(event.KeySessionStarted, map[string]any{
		"session_id": sessionID,
		"student_id": req.StudentID,
		"topic":      st.Topic,
	})
	return sessionID, nil
}

// TurnResult is one handled turn's outcome.
type TurnResult struct {
	Response string          `json:"response"`
	Intent   string          `json:"intent"`
	Fallback bool            `json:"fallback"`
	Summary  session.Summary `json:"state"`
}

// HandleTurn validates the turn, routes it through the dispatcher, and
// records both sides in the interaction log. Turns for the same session
// must not run concurrently; the caller serializes per session id.
func (s *Service) HandleTurn(ctx context.Context, sessionID, studentID, utterance string) (*TurnResult, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, &ValidationError{Field: "student_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(utterance) == "" {
		return nil, &ValidationError{Field: "message", Reason: "must not be empty"}
	}

	st := s.registry.GetOrCreate(sessionID, studentID)

	res, err := s.dispatcher.Dispatch(ctx, sessionID, st, utterance)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	s.logInteraction(ctx, sessionID, studentID, "user", utterance, string(res.Intent))
	s.logInteraction(ctx, sessionID, studentID, "system", res.Response, string(res.Intent))

	return &TurnResult{
		Response: res.Response,
		Intent:   string(res.Intent),
		Fallback: res.Fallback,
		Summary:  st.Summary(),
	}, nil
}

// logInteraction is best-effort; a storage failure never fails the turn.
func (s *Service) logInteraction(ctx context.Context, sessionID, studentID, role, content, intent string) {
	err := s.repo.LogInteraction(ctx, docstore.Interaction{
		SessionID: sessionID,
		StudentID: studentID,
		Role:      role,
		Content:   content,
		Intent:    intent,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log interaction: %v\n", err)
	}
}

// EndSession records the observed duration on the learning log and
// removes the session from the registry.
func (s *Service) EndSession(ctx context.Context, sessionID string, duration time.Duration) error {
	if strings.TrimSpace(sessionID) == "" {
		return &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}

	st, ok := s.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if st.SessionLogID != "" {
		minutes := int(duration.Round(time.Minute) / time.Minute)
		if err := s.repo.FinishLearningLog(ctx, st.SessionLogID, minutes); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to finish learning log: %v\n", err)
		}
	}

	s.registry.Remove(sessionID)
	_ = s.publisher.Publish(event.KeySessionEnded, map[string]any{
		"session_id": sessionID,
		"student_id": st.StudentID,
	})
	return nil
}

// Registry exposes the session registry for lifecycle management.
func (s *Service) Registry() *session.Registry {
	return s.registry
}
