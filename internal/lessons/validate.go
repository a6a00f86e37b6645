package lessons

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
)

// ValidationMode selects how much of the lesson shape is enforced after
// extraction.
type ValidationMode string

const (
	// ValidationStrict rejects lessons that break any structural invariant.
	ValidationStrict ValidationMode = "strict"

	// ValidationKeys only requires the top-level keys, as extraction does.
	ValidationKeys ValidationMode = "keys"
)

// ParseValidationMode accepts "strict" or "keys"; empty means strict.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch ValidationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ValidationStrict:
		return ValidationStrict, nil
	case ValidationKeys:
		return ValidationKeys, nil
	}
	return "", fmt.Errorf("unknown validation mode %q (want strict or keys)", s)
}

// ErrInvalidLesson matches any *ValidationError.
var ErrInvalidLesson = errors.New("invalid lesson")

// ValidationError lists every problem found in a lesson.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidLesson, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidLesson }

// Decode converts an extracted document into a typed Lesson. Members of
// the wrong JSON type are reported as a *ValidationError.
func Decode(doc *Document) (*Lesson, error) {
	var l Lesson
	if err := json.Unmarshal(doc.Raw, &l); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Problems: []string{
				fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			}}
		}
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	return &l, nil
}

// Validate checks a decoded lesson against the invariants of a lesson
// generated for category, then checks doc against LessonSchema. Broken
// lessons are rejected, never repaired.
func Validate(l *Lesson, doc *Document, category Category) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(l.Title) == "" {
		add("title is empty")
	}
	if l.Category != string(category) {
		add("category is %q, requested %q", l.Category, category)
	}
	if strings.TrimSpace(l.Concept.MainIdea) == "" {
		add("concept.mainIdea is empty")
	}
	if strings.TrimSpace(l.Exercise.Question) == "" {
		add("exercise.question is empty")
	}
	if n := len(l.Exercise.Options); n != 4 {
		add("exercise.options has %d entries, want 4", n)
	}
	for i, opt := range l.Exercise.Options {
		if strings.TrimSpace(opt) == "" {
			add("exercise.options[%d] is empty", i)
		}
	}
	if c := l.Exercise.CorrectAnswer; c < 0 || c >= len(l.Exercise.Options) {
		add("exercise.correctAnswer %d is out of range", c)
	}
	if n := len(l.Reflection.RelatedTopics); n != 4 {
		add("reflection.relatedTopics has %d entries, want 4", n)
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	if _, err := llm.ValidateJSON(LessonSchema, doc.Raw); err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	return nil
}
