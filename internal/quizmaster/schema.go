package quizmaster

import "github.com/abhisek/tutorbot/internal/llm"

// optionKeys are the four answer slots every question carries.
var optionKeys = []string{"A", "B", "C", "D"}

// QuizSchema defines the JSON schema for generated quizzes.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A multiple-choice quiz with lettered options and concept tags",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question prompt, plain text",
						},
						"options": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"A": map[string]any{"type": "string"},
								"B": map[string]any{"type": "string"},
								"C": map[string]any{"type": "string"},
								"D": map[string]any{"type": "string"},
							},
							"required":             []any{"A", "B", "C", "D"},
							"additionalProperties": false,
							"description":          "Exactly four answer options keyed by letter",
						},
						"correct_option": map[string]any{
							"type":        "string",
							"enum":        []any{"A", "B", "C", "D"},
							"description": "The letter of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right, shown after answering",
						},
						"concepts": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "The concepts this question tests",
						},
					},
					"required":             []any{"text", "options", "correct_option", "explanation", "concepts"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
