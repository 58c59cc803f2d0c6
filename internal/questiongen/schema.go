package questiongen

import "github.com/sameane/physexam/internal/llm"

// questionDefinition is shared by the single-question and exam schemas.
// Every property is required so strict structured-output modes accept it;
// svgCode and visualDescription are empty strings when there is no diagram.
func questionDefinition() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": `The physics problem text. Math is LaTeX between \( and \).`,
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Exactly 4 answer options. Math is LaTeX.",
			},
			"correctAnswerIndex": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     3,
				"description": "Index (0-3) of the correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A brief worked solution",
			},
			"svgCode": map[string]any{
				"type":        "string",
				"description": "Minimal SVG markup for a diagram of the problem, or empty. No markdown code fences.",
			},
			"visualDescription": map[string]any{
				"type":        "string",
				"description": "A concise description of the diagram when svgCode is set, otherwise empty",
			},
		},
		"required":             []any{"text", "options", "correctAnswerIndex", "explanation", "svgCode", "visualDescription"},
		"additionalProperties": false,
	}
}

// QuestionSchema is the response for edit and image extraction.
var QuestionSchema = &llm.Schema{
	Name:        "exam-question",
	Description: "A single multiple-choice physics question",
	Definition:  questionDefinition(),
}

// ExamSchema is the response for exam and variant generation.
var ExamSchema = &llm.Schema{
	Name:        "exam-questions",
	Description: "A list of multiple-choice physics questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": questionDefinition(),
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// AnswerKeySchema is the response for answer key regeneration.
var AnswerKeySchema = &llm.Schema{
	Name:        "answer-key",
	Description: "The correct option and explanation for each question id",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                 map[string]any{"type": "integer"},
						"correctAnswerIndex": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
						"explanation":        map[string]any{"type": "string"},
					},
					"required":             []any{"id", "correctAnswerIndex", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"answers"},
		"additionalProperties": false,
	},
}

// DiagramSchema is the response for diagram edits.
var DiagramSchema = &llm.Schema{
	Name:        "diagram",
	Description: "Complete SVG markup for a physics diagram",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"svgCode": map[string]any{
				"type":        "string",
				"description": "The complete, valid SVG markup",
			},
		},
		"required":             []any{"svgCode"},
		"additionalProperties": false,
	},
}

// DescriptionSchema is the response for visual descriptions.
var DescriptionSchema = &llm.Schema{
	Name:        "visual-description",
	Description: "A concise scientific description of a figure",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
		},
		"required":             []any{"description"},
		"additionalProperties": false,
	},
}
