package quizmaster

import (
	"strings"

	"github.com/abhisek/tutorbot/internal/docstore"
)

// ParseSelectedOption reads the chosen letter out of a free-text
// answer. It accepts a bare letter, a letter embedded in a sentence
// ("i think it's b", "option C.", "b)"), or the full text of an option.
// Returns "" when nothing recognizable is found.
func ParseSelectedOption(utterance string, q docstore.QuizQuestion) string {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return ""
	}

	upper := strings.ToUpper(trimmed)
	if len(upper) == 1 && isOptionLetter(upper) {
		return upper
	}

	// Standalone letter among the words, trailing punctuation stripped.
	for _, word := range strings.Fields(upper) {
		word = strings.Trim(word, ".,!?):")
		if len(word) == 1 && isOptionLetter(word) {
			return word
		}
	}

	// Full option text match.
	lower := strings.ToLower(trimmed)
	for _, key := range optionKeys {
		text := strings.ToLower(strings.TrimSpace(q.Options[key]))
		if text != "" && strings.Contains(lower, text) {
			return key
		}
	}

	return ""
}

func isOptionLetter(s string) bool {
	for _, key := range optionKeys {
		if s == key {
			return true
		}
	}
	return false
}

// MissedConcepts returns the set union of concepts tagged on questions
// answered incorrectly, duplicates removed, first-seen order preserved.
func MissedConcepts(quiz *docstore.QuizRecord, answers []docstore.QuizAnswer) []string {
	seen := make(map[string]bool)
	var out []string

	for _, a := range answers {
		if a.Correct || a.QuestionIndex < 0 || a.QuestionIndex >= len(quiz.Questions) {
			continue
		}
		for _, c := range quiz.Questions[a.QuestionIndex].Concepts {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
