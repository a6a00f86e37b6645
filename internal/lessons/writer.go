package lessons

import (
	"context"
	"fmt"

	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
)

// LessonWriter requests a lesson for a topic and turns the reply into a
// validated Lesson.
type LessonWriter struct {
	provider llm.Provider
	cfg      Config
}

func NewLessonWriter(provider llm.Provider, cfg Config) *LessonWriter {
	return &LessonWriter{provider: provider, cfg: cfg}
}

// WriteLesson makes one request. The raw reply is returned whenever one was
// received, including alongside extraction and validation errors.
func (w *LessonWriter) WriteLesson(ctx context.Context, category Category, topic string) (*Lesson, string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)

	resp, err := w.provider.Generate(ctx, BuildLessonRequest(category, topic, w.cfg))
	if err != nil {
		return nil, "", fmt.Errorf("lesson generation: %w", err)
	}
	raw := string(resp.Content)

	lesson, err := w.Parse(raw, category)
	return lesson, raw, err
}

// Parse extracts and validates a lesson from a raw reply according to the
// writer's strategy and validation mode.
func (w *LessonWriter) Parse(raw string, category Category) (*Lesson, error) {
	doc, err := ExtractWith(raw, w.cfg.Extract)
	if err != nil {
		return nil, err
	}
	lesson, err := Decode(doc)
	if err != nil {
		return nil, err
	}
	if w.cfg.Validation != ValidationKeys {
		if err := Validate(lesson, doc, category); err != nil {
			return nil, err
		}
	}
	return lesson, nil
}
