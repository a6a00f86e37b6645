package lessons

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mutate applies edit to the filled lesson and re-extracts it.
func mutate(t *testing.T, category string, edit func(m map[string]any)) *Document {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(filledLesson(category)), &m))
	edit(m)
	b, err := json.Marshal(m)
	require.NoError(t, err)
	doc, err := Extract(string(b))
	require.NoError(t, err)
	return doc
}

func section(m map[string]any, key string) map[string]any {
	return m[key].(map[string]any)
}

func TestDecodeAndValidate_FilledTemplate(t *testing.T) {
	doc, err := Extract(filledLesson("technology"))
	require.NoError(t, err)

	l, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, "technology", l.Category)
	assert.Len(t, l.Exercise.Options, 4)
	assert.Equal(t, 0, l.Exercise.CorrectAnswer)
	assert.Len(t, l.Reflection.RelatedTopics, 4)

	assert.NoError(t, Validate(l, doc, Technology))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		edit     func(m map[string]any)
		problem  string
	}{
		{
			name:     "three options",
			category: Science,
			edit: func(m map[string]any) {
				ex := section(m, "exercise")
				ex["options"] = ex["options"].([]any)[:3]
			},
			problem: "exercise.options has 3 entries",
		},
		{
			name:     "correct answer out of range",
			category: Science,
			edit:     func(m map[string]any) { section(m, "exercise")["correctAnswer"] = 4 },
			problem:  "exercise.correctAnswer 4 is out of range",
		},
		{
			name:     "negative correct answer",
			category: Science,
			edit:     func(m map[string]any) { section(m, "exercise")["correctAnswer"] = -1 },
			problem:  "out of range",
		},
		{
			name:     "wrong category",
			category: History,
			edit:     func(m map[string]any) {},
			problem:  `category is "science", requested "history"`,
		},
		{
			name:     "empty title",
			category: Science,
			edit:     func(m map[string]any) { m["title"] = "  " },
			problem:  "title is empty",
		},
		{
			name:     "empty option",
			category: Science,
			edit: func(m map[string]any) {
				section(m, "exercise")["options"].([]any)[2] = ""
			},
			problem: "exercise.options[2] is empty",
		},
		{
			name:     "empty main idea",
			category: Science,
			edit:     func(m map[string]any) { section(m, "concept")["mainIdea"] = "" },
			problem:  "concept.mainIdea is empty",
		},
		{
			name:     "five related topics",
			category: Science,
			edit: func(m map[string]any) {
				r := section(m, "reflection")
				r["relatedTopics"] = append(r["relatedTopics"].([]any), "Extra")
			},
			problem: "reflection.relatedTopics has 5 entries",
		},
		{
			name:     "missing nested key",
			category: Science,
			edit:     func(m map[string]any) { delete(section(m, "practicalApplication"), "caseStudy") },
			problem:  "schema validation failed",
		},
		{
			name:     "unexpected member",
			category: Science,
			edit:     func(m map[string]any) { m["difficulty"] = "easy" },
			problem:  "schema validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mutate(t, "science", tt.edit)
			l, err := Decode(doc)
			require.NoError(t, err)

			err = Validate(l, doc, tt.category)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLesson))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.True(t, strings.Contains(strings.Join(ve.Problems, "; "), tt.problem),
				"problems %v do not mention %q", ve.Problems, tt.problem)
		})
	}
}

func TestDecode_WrongType(t *testing.T) {
	doc := mutate(t, "science", func(m map[string]any) {
		section(m, "exercise")["correctAnswer"] = "0"
	})

	_, err := Decode(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLesson))
	assert.Contains(t, err.Error(), "correctAnswer")
}

func TestParseValidationMode(t *testing.T) {
	m, err := ParseValidationMode("")
	require.NoError(t, err)
	assert.Equal(t, ValidationStrict, m)

	m, err = ParseValidationMode("KEYS")
	require.NoError(t, err)
	assert.Equal(t, ValidationKeys, m)

	_, err = ParseValidationMode("lenient")
	assert.Error(t, err)
}

func TestLessonIsCorrect(t *testing.T) {
	l := &Lesson{Exercise: Exercise{Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2}}
	assert.True(t, l.IsCorrect(2))
	assert.False(t, l.IsCorrect(0))
	assert.False(t, l.IsCorrect(7))

	l.Exercise.CorrectAnswer = 9
	for i := range l.Exercise.Options {
		assert.False(t, l.IsCorrect(i))
	}

	var nilLesson *Lesson
	assert.False(t, nilLesson.IsCorrect(0))
}
