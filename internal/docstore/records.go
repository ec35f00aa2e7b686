package docstore

import "time"

// StudentProfile is a student's identity record.
type StudentProfile struct {
	Key       string    `bson:"_id" json:"_id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	Name      string    `bson:"name" json:"name"`
	Grade     string    `bson:"grade,omitempty" json:"grade,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DifficultyRecord stores a student's current difficulty level for a topic.
type DifficultyRecord struct {
	Key       string    `bson:"_id" json:"_id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	Topic     string    `bson:"topic" json:"topic"`
	Level     int       `bson:"level" json:"level"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// LearningLog records one learning session for a student on a topic.
type LearningLog struct {
	Key             string    `bson:"_id" json:"_id"`
	StudentID       string    `bson:"student_id" json:"student_id"`
	Topic           string    `bson:"topic" json:"topic"`
	StartedAt       time.Time `bson:"started_at" json:"started_at"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
}

// Interaction records one turn of the dialogue, user or system side.
type Interaction struct {
	Key       string    `bson:"_id" json:"_id"`
	SessionID string    `bson:"session_id" json:"session_id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Intent    string    `bson:"intent,omitempty" json:"intent,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	Text          string            `bson:"text" json:"text"`
	Options       map[string]string `bson:"options" json:"options"`
	CorrectOption string            `bson:"correct_option" json:"correct_option"`
	Explanation   string            `bson:"explanation" json:"explanation"`
	Concepts      []string          `bson:"concepts" json:"concepts"`
}

// QuizRecord is a generated quiz with its questions.
type QuizRecord struct {
	Key        string         `bson:"_id" json:"_id"`
	StudentID  string         `bson:"student_id" json:"student_id"`
	Topic      string         `bson:"topic" json:"topic"`
	Subtopic   string         `bson:"subtopic" json:"subtopic"`
	Difficulty int            `bson:"difficulty" json:"difficulty"`
	Questions  []QuizQuestion `bson:"questions" json:"questions"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
}

// QuizAnswer records one submitted answer against a quiz question.
type QuizAnswer struct {
	Key           string    `bson:"_id" json:"_id"`
	QuizID        string    `bson:"quiz_id" json:"quiz_id"`
	StudentID     string    `bson:"student_id" json:"student_id"`
	QuestionIndex int       `bson:"question_index" json:"question_index"`
	Selected      string    `bson:"selected" json:"selected"`
	Correct       bool      `bson:"correct" json:"correct"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// QuizResult is the outcome of a completed quiz.
type QuizResult struct {
	Key       string    `bson:"_id" json:"_id"`
	QuizID    string    `bson:"quiz_id" json:"quiz_id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	Topic     string    `bson:"topic" json:"topic"`
	Correct   int       `bson:"correct" json:"correct"`
	Total     int       `bson:"total" json:"total"`
	Score     float64   `bson:"score" json:"score"`
	Analysis  string    `bson:"analysis,omitempty" json:"analysis,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ProgressReport is a generated progress summary for a student.
type ProgressReport struct {
	Key        string    `bson:"_id" json:"_id"`
	StudentID  string    `bson:"student_id" json:"student_id"`
	PeriodDays int       `bson:"period_days" json:"period_days"`
	Report     string    `bson:"report" json:"report"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// StudyPlan is a generated study plan for a student.
type StudyPlan struct {
	Key       string    `bson:"_id" json:"_id"`
	StudentID string    `bson:"student_id" json:"student_id"`
	Topic     string    `bson:"topic" json:"topic"`
	Goal      string    `bson:"goal" json:"goal"`
	Timeline  string    `bson:"timeline" json:"timeline"`
	Plan      string    `bson:"plan" json:"plan"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CurriculumEntry maps a topic and subtopic to its testable concepts.
type CurriculumEntry struct {
	Key      string   `bson:"_id" json:"_id"`
	Topic    string   `bson:"topic" json:"topic"`
	Subtopic string   `bson:"subtopic" json:"subtopic"`
	Concepts []string `bson:"concepts" json:"concepts"`
}

// ModelCall records one model collaborator invocation for auditing.
type ModelCall struct {
	Key          string    `bson:"_id" json:"_id"`
	Provider     string    `bson:"provider" json:"provider"`
	Model        string    `bson:"model" json:"model"`
	Purpose      string    `bson:"purpose" json:"purpose"`
	InputTokens  int       `bson:"input_tokens" json:"input_tokens"`
	OutputTokens int       `bson:"output_tokens" json:"output_tokens"`
	LatencyMs    int64     `bson:"latency_ms" json:"latency_ms"`
	Success      bool      `bson:"success" json:"success"`
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
