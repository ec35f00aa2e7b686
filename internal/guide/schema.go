package guide

import "github.com/abhisek/tutorbot/internal/llm"

// ResourcesSchema defines the JSON schema for resource recommendations.
var ResourcesSchema = &llm.Schema{
	Name:        "learning-resources",
	Description: "A list of recommended learning resources",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "The resource's name",
						},
						"kind": map[string]any{
							"type":        "string",
							"enum":        []any{"video", "article", "exercise", "book"},
							"description": "What form the resource takes",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "What it covers and who it suits, one sentence",
						},
					},
					"required":             []any{"title", "kind", "description"},
					"additionalProperties": false,
				},
				"minItems": 1,
			},
		},
		"required":             []any{"resources"},
		"additionalProperties": false,
	},
}
