package lessons

import "github.com/joeaphiboon/BiteSizedLearning/internal/llm"

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func object(required []any, props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// LessonSchema is the shape the lesson template asks for. Extracted
// documents are validated against it in strict mode, and it is sent as the
// native response format when structured output is enabled.
var LessonSchema = &llm.Schema{
	Name:        "daily-lesson",
	Description: "A five-minute lesson with concept, exercise, application and reflection",
	Definition: object(
		[]any{"title", "category", "concept", "exercise", "practicalApplication", "reflection"},
		map[string]any{
			"title":    stringProp("Engaging lesson title"),
			"category": stringProp("The requested category, verbatim"),
			"concept": object([]any{"mainIdea", "priorKnowledge"}, map[string]any{
				"mainIdea":       stringProp("2-3 sentences explaining the main concept"),
				"priorKnowledge": stringProp("What students should already know"),
			}),
			"exercise": object([]any{"question", "options", "correctAnswer"}, map[string]any{
				"question": stringProp("A multiple choice question"),
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 4,
					"maxItems": 4,
				},
				"correctAnswer": map[string]any{
					"type":        "integer",
					"description": "Zero-based index of the correct option",
					"minimum":     0,
					"maximum":     3,
				},
			}),
			"practicalApplication": object([]any{"realWorldExample", "caseStudy", "challengePrompt"}, map[string]any{
				"realWorldExample": stringProp("A real-world example"),
				"caseStudy":        stringProp("A brief case study"),
				"challengePrompt":  stringProp("A challenge question"),
			}),
			"reflection": object([]any{"connectingPrompt", "nextSteps", "relatedTopics"}, map[string]any{
				"connectingPrompt": stringProp("A reflection question"),
				"nextSteps":        stringProp("Suggested next steps"),
				"relatedTopics": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 4,
					"maxItems": 4,
				},
			}),
		},
	),
}
