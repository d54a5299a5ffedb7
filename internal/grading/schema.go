package grading

import "github.com/abhisek/ladderquiz/internal/llm"

// VerdictSchema defines the JSON schema for grader responses. The score has
// no bounds here; out-of-range values are clamped after parsing.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "A 0-10 correctness score with a short rationale",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"description": "0 for blank or off-topic, 10 for a perfect answer",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Short rationale for the score",
			},
		},
		"required":             []any{"score", "explanation"},
		"additionalProperties": false,
	},
}
