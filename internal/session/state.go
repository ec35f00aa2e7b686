// Package session holds the mutable per-dialogue state: topic,
// difficulty, learning mode, active quiz, conversation history, and the
// registry that owns all live sessions.
package session

import "fmt"

// Mode is the dialogue's current pedagogical phase.
type Mode string

const (
	ModeExploration    Mode = "exploration"
	ModeGuidedLearning Mode = "guided_learning"
	ModeQuiz           Mode = "quiz"
	ModeReview         Mode = "review"
	ModeChallenge      Mode = "challenge"
)

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeExploration, ModeGuidedLearning, ModeQuiz, ModeReview, ModeChallenge:
		return true
	}
	return false
}

// Role is the side of the dialogue that produced a turn entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Turn is one conversation history entry.
type Turn struct {
	Role    Role
	Content string
}

// Difficulty bounds. Adjustments are clamped into this range on every
// write rather than rejected; the API boundary validates caller input
// separately.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Defaults applied when the student gives no explicit values.
const (
	DefaultTopic     = "general"
	DefaultSubtopic  = "basics"
	DefaultQuestions = 5
)

// Context keys owned by the quiz branches.
const (
	CtxQuestionIndex  = "current_question_index"
	CtxTotalQuestions = "total_questions"
	CtxQuizContent    = "quiz_content"
)

// ErrInvalidRole is returned when a turn carries a role other than
// user or system.
type ErrInvalidRole struct {
	Role string
}

func (e *ErrInvalidRole) Error() string {
	return fmt.Sprintf("invalid turn role %q (want user or system)", e.Role)
}

// State is the mutable record of one student's ongoing dialogue.
// Ownership is exclusively the Registry's; turns for the same session
// must be processed sequentially by the caller.
type State struct {
	StudentID string

	Topic        string
	Subtopic     string
	Difficulty   int
	Mode         Mode
	ActiveQuizID string
	SessionLogID string

	history []Turn
	context map[string]any
}

// New creates a fresh session state in exploration mode with the
// default difficulty.
func New(studentID string) *State {
	return &State{
		StudentID:  studentID,
		Difficulty: 3,
		Mode:       ModeExploration,
		context:    make(map[string]any),
	}
}

// StartTopicSession sets the topic, subtopic, difficulty, mode and the
// persisted learning-log reference. It touches nothing else.
func (s *State) StartTopicSession(topic, subtopic string, difficulty int, mode Mode, logID string) {
	if topic == "" {
		topic = DefaultTopic
	}
	if subtopic == "" {
		subtopic = DefaultSubtopic
	}
	if !mode.Valid() {
		mode = ModeExploration
	}
	s.Topic = topic
	s.Subtopic = subtopic
	s.SetDifficulty(difficulty)
	s.Mode = mode
	s.SessionLogID = logID
}

// StartQuiz marks a quiz active and forces quiz mode. An empty quiz id
// would break the quiz-mode invariant and is a programming error.
func (s *State) StartQuiz(quizID string) error {
	if quizID == "" {
		return fmt.Errorf("start quiz: empty quiz id")
	}
	s.ActiveQuizID = quizID
	s.Mode = ModeQuiz
	return nil
}

// EndQuiz clears the active quiz and moves the dialogue to review mode.
func (s *State) EndQuiz() {
	s.ActiveQuizID = ""
	s.Mode = ModeReview
	delete(s.context, CtxQuestionIndex)
	delete(s.context, CtxTotalQuestions)
	delete(s.context, CtxQuizContent)
}

// RecordTurn appends one entry to the conversation history.
func (s *State) RecordTurn(role Role, content string) error {
	if role != RoleUser && role != RoleSystem {
		return &ErrInvalidRole{Role: string(role)}
	}
	s.history = append(s.history, Turn{Role: role, Content: content})
	return nil
}

// SetContext stores a value in the cross-branch scratch space.
func (s *State) SetContext(key string, value any) {
	if s.context == nil {
		s.context = make(map[string]any)
	}
	s.context[key] = value
}

// GetContext reads a scratch value, returning def when the key is absent.
func (s *State) GetContext(key string, def any) any {
	if v, ok := s.context[key]; ok {
		return v
	}
	return def
}

// SetDifficulty stores a difficulty level, silently clamping it into
// [MinDifficulty, MaxDifficulty].
func (s *State) SetDifficulty(level int) {
	if level < MinDifficulty {
		level = MinDifficulty
	}
	if level > MaxDifficulty {
		level = MaxDifficulty
	}
	s.Difficulty = level
}

// History returns a copy of the conversation history in submission order.
func (s *State) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// RecentHistory returns a copy of the last n history entries.
func (s *State) RecentHistory(n int) []Turn {
	if n <= 0 || len(s.history) == 0 {
		return nil
	}
	start := len(s.history) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// HistoryLen returns the number of recorded turns.
func (s *State) HistoryLen() int {
	return len(s.history)
}

// Clear wipes the history and scratch context. The only sanctioned way
// to truncate history.
func (s *State) Clear() {
	s.history = nil
	s.context = make(map[string]any)
}

// Summary is an immutable snapshot handed to collaborators and API
// responses without exposing the mutable record.
type Summary struct {
	StudentID  string `json:"student_id"`
	Topic      string `json:"topic"`
	Subtopic   string `json:"subtopic"`
	Difficulty int    `json:"difficulty"`
	Mode       Mode   `json:"mode"`
	QuizActive bool   `json:"quiz_active"`
	HistoryLen int    `json:"history_len"`
}

// Summary snapshots the state.
func (s *State) Summary() Summary {
	return Summary{
		StudentID:  s.StudentID,
		Topic:      s.Topic,
		Subtopic:   s.Subtopic,
		Difficulty: s.Difficulty,
		Mode:       s.Mode,
		QuizActive: s.ActiveQuizID != "",
		HistoryLen: len(s.history),
	}
}

// Validate reports the first broken invariant, or nil. Branches call it
// after mutation; a failure here is a programming error, not bad input.
func (s *State) Validate() error {
	if (s.ActiveQuizID != "") != (s.Mode == ModeQuiz) {
		return fmt.Errorf("quiz invariant broken: active_quiz_id=%q mode=%q", s.ActiveQuizID, s.Mode)
	}
	if s.Difficulty < MinDifficulty || s.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d outside [%d,%d]", s.Difficulty, MinDifficulty, MaxDifficulty)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("unknown learning mode %q", s.Mode)
	}
	return nil
}
