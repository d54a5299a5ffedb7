package problemgen

import "github.com/abhisek/ladderquiz/internal/llm"

// BatchSchema defines the JSON schema for LLM batch responses.
var BatchSchema = &llm.Schema{
	Name:        "quiz-batch",
	Description: "A batch of quiz questions with answers and explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner; must not contain the answer",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One to three sentences supporting the answer",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct final answer. A bare number string for numeric answers.",
						},
						"answer_type": map[string]any{
							"type": "string",
							"enum": []any{"text", "numeric"},
						},
					},
					"required":             []any{"question", "explanation", "answer", "answer_type"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}
