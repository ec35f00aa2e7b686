package session

import "fmt"

// QuizPhase describes where the active quiz stands.
type QuizPhase string

const (
	QuizNotStarted QuizPhase = "not_started"
	QuizInProgress QuizPhase = "in_progress"
	QuizCompleted  QuizPhase = "completed"
)

// BeginQuizProgress initializes the quiz progress counters at question
// zero. Total is fixed for the quiz's lifetime and must be at least 1.
func (s *State) BeginQuizProgress(total int) error {
	if total < 1 {
		return fmt.Errorf("quiz needs at least 1 question, got %d", total)
	}
	s.SetContext(CtxQuestionIndex, 0)
	s.SetContext(CtxTotalQuestions, total)
	return nil
}

// QuizProgress reads the current question index and total. ok is false
// when no quiz progress is tracked.
func (s *State) QuizProgress() (index, total int, ok bool) {
	index, iok := asInt(s.GetContext(CtxQuestionIndex, nil))
	total, tok := asInt(s.GetContext(CtxTotalQuestions, nil))
	if !iok || !tok || total < 1 {
		return 0, 0, false
	}
	return index, total, true
}

// AdvanceQuiz records one evaluated answer. It returns true exactly
// when the answer was the quiz's last; otherwise it moves to the next
// question.
func (s *State) AdvanceQuiz() (completed bool, err error) {
	index, total, ok := s.QuizProgress()
	if !ok {
		return false, fmt.Errorf("advance quiz: no quiz in progress")
	}
	s.SetContext(CtxQuestionIndex, index+1)
	return index+1 >= total, nil
}

// Phase derives the quiz phase from the active quiz reference and the
// progress counters.
func (s *State) Phase() QuizPhase {
	if s.ActiveQuizID == "" {
		return QuizNotStarted
	}
	index, total, ok := s.QuizProgress()
	if !ok {
		return QuizNotStarted
	}
	if index >= total {
		return QuizCompleted
	}
	return QuizInProgress
}

// asInt tolerates float64 values, which appear when context round-trips
// through JSON.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}
