package guide

// Config bounds the model calls the learning guide makes.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the guide's standard model settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Defaults applied when a study plan request carries no hints.
const (
	DefaultGoal     = "master the fundamentals"
	DefaultTimeline = "4 weeks"
)

// ContentInput describes one lesson to generate.
type ContentInput struct {
	Topic      string
	Subtopic   string
	Difficulty int
}

// PlanInput describes one study plan to generate.
type PlanInput struct {
	StudentID string
	Topic     string
	Goal      string
	Timeline  string
}

// ResourceInput asks for learning resources on a topic.
type ResourceInput struct {
	Topic      string
	Difficulty int
}

// Resource is one recommended learning resource.
type Resource struct {
	Title       string `json:"title"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}
