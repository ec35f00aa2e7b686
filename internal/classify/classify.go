// Package classify maps a raw user utterance plus the current session
// state to an intent label. Classification is a pure function over its
// inputs: no side effects, no randomness, fixed priority order.
package classify

import (
	"strings"

	"github.com/abhisek/tutorbot/internal/session"
)

// Intent is the classified purpose of a turn.
type Intent string

const (
	IntentQuestion    Intent = "question"
	IntentQuizRequest Intent = "quiz_request"
	IntentQuizAnswer  Intent = "quiz_answer"
	IntentContent     Intent = "content_request"
	IntentProgress    Intent = "progress_request"
	IntentStudyPlan   Intent = "study_plan_request"
)

// commandPrefix lets a student escape quiz-answer capture mid-quiz.
const commandPrefix = "/"

// Trigger phrase sets, matched case-insensitively as substrings.
// First matching rule wins; the ordering is a deliberate tie-break
// policy.
var (
	quizPhrases      = []string{"quiz", "test me"}
	progressPhrases  = []string{"progress", "how am i doing"}
	studyPlanPhrases = []string{"study plan", "learning plan"}
	contentPhrases   = []string{"explain", "teach me", "learn about"}
)

// Classify maps one utterance to an intent given the session's mode and
// whether a quiz is active. Deterministic: the same triple always
// yields the same intent.
func Classify(utterance string, mode session.Mode, quizActive bool) Intent {
	lower := strings.ToLower(strings.TrimSpace(utterance))

	if quizActive && mode == session.ModeQuiz && !strings.HasPrefix(lower, commandPrefix) {
		return IntentQuizAnswer
	}
	if containsAny(lower, quizPhrases) {
		return IntentQuizRequest
	}
	if containsAny(lower, progressPhrases) {
		return IntentProgress
	}
	if containsAny(lower, studyPlanPhrases) {
		return IntentStudyPlan
	}
	if containsAny(lower, contentPhrases) {
		return IntentContent
	}
	return IntentQuestion
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
