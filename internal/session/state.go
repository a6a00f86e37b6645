// Package session holds the per-user state of one learner: the current
// lesson, the chosen answer, the reflection text and the credentials used
// to generate lessons. All mutation goes through setters.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
)

var (
	ErrNoAPIKey    = errors.New("no API key set")
	ErrGenerating  = errors.New("a lesson is already being generated")
	ErrNoLesson    = errors.New("no lesson loaded")
	ErrOptionRange = errors.New("answer option out of range")
)

// User-facing texts.
const (
	FeedbackCorrect   = "Correct! Excellent work!"
	FeedbackIncorrect = "Not quite right. Give it another try!"
	PromptAPIKey      = "Please enter your API key first!"
)

// Feedback is the verdict on the selected answer.
type Feedback struct {
	Correct bool
	Message string
}

// State is one learner's session. The zero value is not usable; see New.
type State struct {
	mu sync.Mutex

	id       string
	lastSeen time.Time

	provider string
	apiKey   string

	category   lessons.Category
	lesson     *lessons.Lesson
	topic      string
	selected   *int
	attempts   int
	reflection string
	diagnostic *lessons.Diagnostic
	generating bool
}

// New returns an empty session for id using provider by default.
func New(id, provider string) *State {
	return &State{id: id, provider: provider, category: lessons.Random, lastSeen: time.Now()}
}

func (s *State) ID() string { return s.id }

// SetCredentials stores the provider and API key for this session. The
// returned warning is non-empty when the key does not look like one
// issued by provider; the key is stored regardless.
func (s *State) SetCredentials(provider, apiKey string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if provider != "" {
		s.provider = provider
	}
	s.apiKey = apiKey
	return llm.CheckKeyPrefix(s.provider, apiKey)
}

// Credentials returns the provider and API key for this session.
func (s *State) Credentials() (provider, apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.provider, s.apiKey
}

func (s *State) SetCategory(c lessons.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = c
}

// BeginGenerate marks a generation as running. It fails when no API key
// is set or another generation for this session has not finished. Every
// successful call must be paired with FinishGenerate.
func (s *State) BeginGenerate(requireKey bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if requireKey && s.apiKey == "" {
		return ErrNoAPIKey
	}
	if s.generating {
		return ErrGenerating
	}
	s.generating = true
	return nil
}

// FinishGenerate applies an outcome. A failed outcome records its
// diagnostic and leaves the current lesson in place.
func (s *State) FinishGenerate(out lessons.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	if out.Lesson == nil {
		s.diagnostic = out.Diagnostic
		return
	}
	s.replaceLocked(out.Lesson, out.Topic)
}

// ReplaceLesson installs a new lesson and clears the answer, the
// reflection and any previous diagnostic.
func (s *State) ReplaceLesson(l *lessons.Lesson, topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(l, topic)
}

func (s *State) replaceLocked(l *lessons.Lesson, topic string) {
	s.lesson = l
	s.topic = topic
	s.selected = nil
	s.attempts = 0
	s.reflection = ""
	s.diagnostic = nil
}

// SelectAnswer records option i. The learner may pick again after a wrong
// answer; only the latest pick is kept.
func (s *State) SelectAnswer(i int) (Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lesson == nil {
		return Feedback{}, ErrNoLesson
	}
	if n := len(s.lesson.Exercise.Options); i < 0 || i >= n {
		return Feedback{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOptionRange, i, n)
	}
	s.selected = &i
	s.attempts++
	return feedbackFor(s.lesson, i), nil
}

// SetReflection replaces the reflection text for the current lesson.
func (s *State) SetReflection(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lesson == nil {
		return ErrNoLesson
	}
	s.reflection = text
	return nil
}

// Reset drops the lesson and everything tied to it. Credentials and the
// chosen category are kept.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(nil, "")
}

func feedbackFor(l *lessons.Lesson, i int) Feedback {
	if l.IsCorrect(i) {
		return Feedback{Correct: true, Message: FeedbackCorrect}
	}
	return Feedback{Correct: false, Message: FeedbackIncorrect}
}

// View is a consistent copy of a session for rendering.
type View struct {
	ID         string
	Provider   string
	HasAPIKey  bool
	KeyWarning string
	Category   lessons.Category
	Lesson     *lessons.Lesson
	Topic      string
	Selected   *int
	Attempts   int
	Feedback   *Feedback
	Reflection string
	Diagnostic *lessons.Diagnostic
	Generating bool
}

// Snapshot copies the session under its lock. Lessons are never modified
// after generation, so the lesson pointer is shared.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:         s.id,
		Provider:   s.provider,
		HasAPIKey:  s.apiKey != "",
		Category:   s.category,
		Lesson:     s.lesson,
		Topic:      s.topic,
		Attempts:   s.attempts,
		Reflection: s.reflection,
		Diagnostic: s.diagnostic,
		Generating: s.generating,
	}
	if s.apiKey != "" {
		v.KeyWarning = llm.CheckKeyPrefix(s.provider, s.apiKey)
	}
	if s.selected != nil {
		sel := *s.selected
		v.Selected = &sel
		fb := feedbackFor(s.lesson, sel)
		v.Feedback = &fb
	}
	return v
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
