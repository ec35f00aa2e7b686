package tutor

import "github.com/abhisek/tutorbot/internal/session"

// Config bounds the model calls the tutor makes.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxHistoryTurns limits how much conversation history goes into
	// the prompt.
	MaxHistoryTurns int
}

// DefaultConfig returns the tutor's standard model settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       1024,
		Temperature:     0.7,
		MaxHistoryTurns: 6,
	}
}

// AnswerInput is one student question with its dialogue context.
type AnswerInput struct {
	Question   string
	Topic      string
	Difficulty int
	History    []session.Turn
}

// HintInput asks for a nudge on a question without giving it away.
type HintInput struct {
	Question   string
	Topic      string
	Difficulty int
}

// MisconceptionInput asks for a targeted explanation of why a specific
// misunderstanding is wrong.
type MisconceptionInput struct {
	Topic         string
	Misconception string
	Difficulty    int
}
