package quizmaster

// Config bounds the model calls the quiz master makes.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the quiz master's standard model settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.8,
	}
}

// DefaultQuestions is the quiz length when the caller gives none.
const DefaultQuestions = 5

// GenerateInput describes one quiz to generate.
type GenerateInput struct {
	StudentID    string
	Topic        string
	Subtopic     string
	Difficulty   int
	NumQuestions int

	// Concepts to target. Empty means use the curriculum's concepts
	// for the topic and subtopic.
	Concepts []string
}

// EvaluateInput is one submitted answer against an active quiz.
type EvaluateInput struct {
	StudentID     string
	QuestionIndex int
	Utterance     string
}

// Evaluation is the outcome of grading one answer. Correctness is
// decided locally against the stored quiz; the model only writes the
// feedback text.
type Evaluation struct {
	// Recognized is false when no option could be read from the
	// utterance. The answer is not graded or recorded in that case.
	Recognized bool

	Selected      string
	Correct       bool
	CorrectOption string
	Feedback      string
}
