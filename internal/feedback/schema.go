package feedback

import "github.com/softswan/softswan/internal/llm"

// FeedbackSchema defines the JSON schema for answer grading.
var FeedbackSchema = &llm.Schema{
	Name:        "answer-feedback",
	Description: "Whether a puzzle answer is correct, with one sentence of feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{
				"type":        "boolean",
				"description": "Whether the user answer is correct",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Constructive single-sentence feedback for the user",
			},
		},
		"required":             []any{"isCorrect", "feedback"},
		"additionalProperties": false,
	},
}

type feedbackOutput struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}
