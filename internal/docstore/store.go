// Package docstore provides document persistence for student profiles,
// quizzes, interaction logs, and the other tutoring records. A Mongo
// implementation backs production; an in-memory implementation backs
// tests and local development.
package docstore

import "context"

// Collection names.
const (
	ColStudents        = "students"
	ColLearningLogs    = "learning_logs"
	ColInteractions    = "interactions"
	ColQuizzes         = "quizzes"
	ColQuizAnswers     = "quiz_answers"
	ColQuizResults     = "quiz_results"
	ColProgressReports = "progress_reports"
	ColStudyPlans      = "study_plans"
	ColCurriculum      = "curriculum"
	ColStudentLevels   = "student_levels"
	ColModelCalls      = "model_calls"
)

// QueryOpts controls ordering and result size for Query.
type QueryOpts struct {
	// SortBy names the document field to order by. Empty means no
	// guaranteed order.
	SortBy string

	// Desc reverses the sort order.
	Desc bool

	// Limit caps the number of documents returned. Zero means no limit.
	Limit int
}

// Store is the document persistence abstraction. Documents are keyed by
// a string "_id"; Put assigns one when the document carries none.
type Store interface {
	// Get loads the document with the given key into out.
	// Returns *ErrNotFound if no document matches.
	Get(ctx context.Context, collection, key string, out any) error

	// Put inserts a document and returns its key.
	Put(ctx context.Context, collection string, doc any) (string, error)

	// Query loads all documents matching the equality filter into out,
	// which must be a pointer to a slice.
	Query(ctx context.Context, collection string, filter map[string]any, opts QueryOpts, out any) error

	// Update sets the given fields on the document with the given key.
	// Returns *ErrNotFound if no document matches.
	Update(ctx context.Context, collection, key string, fields map[string]any) error

	// Close releases the store's resources.
	Close(ctx context.Context) error
}
