package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/tutorbot/internal/llm"
)

// DefaultDifficulty is the level assumed for a student with no history
// on a topic. Levels run 1 (easiest) to 5 (hardest).
const DefaultDifficulty = 3

// defaultConcepts seeds concept lists for common topics when the
// curriculum collection has no entry.
var defaultConcepts = map[string][]string{
	"fractions":  {"equivalent fractions", "addition with unlike denominators", "simplification", "mixed numbers"},
	"algebra":    {"variables", "linear equations", "substitution", "factoring"},
	"geometry":   {"angles", "area", "perimeter", "triangles"},
	"statistics": {"mean", "median", "mode", "range"},
}

// genericConcepts is the last-resort concept list for unknown topics.
var genericConcepts = []string{"definitions", "core principles", "worked examples", "common mistakes"}

// Repo wraps a Store with the typed operations the agents and the
// dispatcher need. It also implements llm.CallLogger.
type Repo struct {
	store Store
	now   func() time.Time
}

// NewRepo creates a Repo over the given store.
func NewRepo(store Store) *Repo {
	return &Repo{store: store, now: time.Now}
}

// Profile loads a student profile by student id.
func (r *Repo) Profile(ctx context.Context, studentID string) (*StudentProfile, error) {
	var profiles []StudentProfile
	err := r.store.Query(ctx, ColStudents, map[string]any{"student_id": studentID}, QueryOpts{Limit: 1}, &profiles)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, &ErrNotFound{Collection: ColStudents, Key: studentID}
	}
	return &profiles[0], nil
}

// EnsureProfile returns the student's profile, creating one when none
// exists yet.
func (r *Repo) EnsureProfile(ctx context.Context, studentID, name string) (*StudentProfile, error) {
	profile, err := r.Profile(ctx, studentID)
	if err == nil {
		return profile, nil
	}
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	created := StudentProfile{
		StudentID: studentID,
		Name:      name,
		CreatedAt: r.now().UTC(),
		UpdatedAt: r.now().UTC(),
	}
	key, err := r.store.Put(ctx, ColStudents, created)
	if err != nil {
		return nil, err
	}
	created.Key = key
	return &created, nil
}

// DifficultyLevel returns the student's current level for a topic,
// defaulting when no record exists.
func (r *Repo) DifficultyLevel(ctx context.Context, studentID, topic string) (int, error) {
	var recs []DifficultyRecord
	filter := map[string]any{"student_id": studentID, "topic": topic}
	if err := r.store.Query(ctx, ColStudentLevels, filter, QueryOpts{Limit: 1}, &recs); err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return DefaultDifficulty, nil
	}
	return recs[0].Level, nil
}

// SetDifficultyLevel stores the student's level for a topic, replacing
// any existing record.
func (r *Repo) SetDifficultyLevel(ctx context.Context, studentID, topic string, level int) error {
	var recs []DifficultyRecord
	filter := map[string]any{"student_id": studentID, "topic": topic}
	if err := r.store.Query(ctx, ColStudentLevels, filter, QueryOpts{Limit: 1}, &recs); err != nil {
		return err
	}

	if len(recs) > 0 {
		return r.store.Update(ctx, ColStudentLevels, recs[0].Key, map[string]any{
			"level":      level,
			"updated_at": r.now().UTC(),
		})
	}

	_, err := r.store.Put(ctx, ColStudentLevels, DifficultyRecord{
		StudentID: studentID,
		Topic:     topic,
		Level:     level,
		UpdatedAt: r.now().UTC(),
	})
	return err
}

// StartLearningLog records the start of a learning session and returns
// the log key for the later duration update.
func (r *Repo) StartLearningLog(ctx context.Context, studentID, topic string) (string, error) {
	return r.store.Put(ctx, ColLearningLogs, LearningLog{
		StudentID: studentID,
		Topic:     topic,
		StartedAt: r.now().UTC(),
	})
}

// FinishLearningLog sets the duration on a learning log.
func (r *Repo) FinishLearningLog(ctx context.Context, logKey string, minutes int) error {
	return r.store.Update(ctx, ColLearningLogs, logKey, map[string]any{
		"duration_minutes": minutes,
	})
}

// LogInteraction appends one dialogue turn to the interaction log.
func (r *Repo) LogInteraction(ctx context.Context, in Interaction) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.now().UTC()
	}
	_, err := r.store.Put(ctx, ColInteractions, in)
	return err
}

// Interactions lists a session's turns, oldest first.
func (r *Repo) Interactions(ctx context.Context, sessionID string, limit int) ([]Interaction, error) {
	var out []Interaction
	filter := map[string]any{"session_id": sessionID}
	opts := QueryOpts{SortBy: "created_at", Limit: limit}
	if err := r.store.Query(ctx, ColInteractions, filter, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveQuiz persists a generated quiz and returns its key.
func (r *Repo) SaveQuiz(ctx context.Context, quiz *QuizRecord) (string, error) {
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = r.now().UTC()
	}
	key, err := r.store.Put(ctx, ColQuizzes, *quiz)
	if err != nil {
		return "", err
	}
	quiz.Key = key
	return key, nil
}

// Quiz loads a quiz by key.
func (r *Repo) Quiz(ctx context.Context, quizID string) (*QuizRecord, error) {
	var quiz QuizRecord
	if err := r.store.Get(ctx, ColQuizzes, quizID, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// LogAnswer records one submitted quiz answer.
func (r *Repo) LogAnswer(ctx context.Context, ans QuizAnswer) error {
	if ans.CreatedAt.IsZero() {
		ans.CreatedAt = r.now().UTC()
	}
	_, err := r.store.Put(ctx, ColQuizAnswers, ans)
	return err
}

// Answers lists a quiz's submitted answers in question order.
func (r *Repo) Answers(ctx context.Context, quizID string) ([]QuizAnswer, error) {
	var out []QuizAnswer
	filter := map[string]any{"quiz_id": quizID}
	opts := QueryOpts{SortBy: "question_index"}
	if err := r.store.Query(ctx, ColQuizAnswers, filter, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveResult persists a quiz result and returns its key.
func (r *Repo) SaveResult(ctx context.Context, res *QuizResult) (string, error) {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = r.now().UTC()
	}
	key, err := r.store.Put(ctx, ColQuizResults, *res)
	if err != nil {
		return "", err
	}
	res.Key = key
	return key, nil
}

// ResultForQuiz loads the result of a specific quiz.
func (r *Repo) ResultForQuiz(ctx context.Context, quizID string) (*QuizResult, error) {
	var out []QuizResult
	filter := map[string]any{"quiz_id": quizID}
	if err := r.store.Query(ctx, ColQuizResults, filter, QueryOpts{Limit: 1}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &ErrNotFound{Collection: ColQuizResults, Key: quizID}
	}
	return &out[0], nil
}

// Results lists a student's quiz results, newest first. An empty topic
// matches all topics.
func (r *Repo) Results(ctx context.Context, studentID, topic string, limit int) ([]QuizResult, error) {
	filter := map[string]any{"student_id": studentID}
	if topic != "" {
		filter["topic"] = topic
	}
	var out []QuizResult
	opts := QueryOpts{SortBy: "created_at", Desc: true, Limit: limit}
	if err := r.store.Query(ctx, ColQuizResults, filter, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveReport persists a progress report.
func (r *Repo) SaveReport(ctx context.Context, rep *ProgressReport) (string, error) {
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = r.now().UTC()
	}
	key, err := r.store.Put(ctx, ColProgressReports, *rep)
	if err != nil {
		return "", err
	}
	rep.Key = key
	return key, nil
}

// SaveStudyPlan persists a study plan.
func (r *Repo) SaveStudyPlan(ctx context.Context, plan *StudyPlan) (string, error) {
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = r.now().UTC()
	}
	key, err := r.store.Put(ctx, ColStudyPlans, *plan)
	if err != nil {
		return "", err
	}
	plan.Key = key
	return key, nil
}

// Concepts returns the testable concepts for a topic and subtopic,
// preferring the curriculum collection and falling back to built-in
// defaults.
func (r *Repo) Concepts(ctx context.Context, topic, subtopic string) ([]string, error) {
	var entries []CurriculumEntry
	filter := map[string]any{"topic": topic, "subtopic": subtopic}
	if err := r.store.Query(ctx, ColCurriculum, filter, QueryOpts{Limit: 1}, &entries); err != nil {
		return nil, err
	}
	if len(entries) > 0 && len(entries[0].Concepts) > 0 {
		return entries[0].Concepts, nil
	}
	if concepts, ok := defaultConcepts[topic]; ok {
		return concepts, nil
	}
	return genericConcepts, nil
}

// LogModelCall implements llm.CallLogger.
func (r *Repo) LogModelCall(ctx context.Context, rec llm.CallRecord) error {
	_, err := r.store.Put(ctx, ColModelCalls, ModelCall{
		Provider:     rec.Provider,
		Model:        rec.Model,
		Purpose:      rec.Purpose,
		InputTokens:  rec.InputTokens,
		OutputTokens: rec.OutputTokens,
		LatencyMs:    rec.LatencyMs,
		Success:      rec.Success,
		Error:        rec.ErrorMessage,
		CreatedAt:    r.now().UTC(),
	})
	return err
}
