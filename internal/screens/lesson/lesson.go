// Package lesson is the screen that generates a lesson for one category
// and walks the learner through it.
package lesson

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/router"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screen"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/components"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/layout"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

const reflectionLimit = 2000

// LessonScreen implements screen.Screen for one lesson.
type LessonScreen struct {
	deps     Deps
	state    *session.State
	category lessons.Category

	spinner    spinner.Model
	choices    components.MultiChoice
	reflection textarea.Model
	editing    bool
	cancel     context.CancelFunc

	showPrior bool
	showCase  bool

	scroll    int
	maxScroll int // set by View
	notice    string
}

var (
	_ screen.Screen          = (*LessonScreen)(nil)
	_ screen.KeyHintProvider = (*LessonScreen)(nil)
	_ screen.StatusProvider  = (*LessonScreen)(nil)
	_ screen.InputCapturer   = (*LessonScreen)(nil)
)

// New creates a LessonScreen that generates a lesson for category when
// it is first shown.
func New(deps Deps, state *session.State, category lessons.Category) *LessonScreen {
	ta := textarea.New()
	ta.Placeholder = "Write your thoughts here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = reflectionLimit
	ta.SetHeight(4)

	return &LessonScreen{
		deps:       deps.withDefaults(),
		state:      state,
		category:   category,
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Selected)),
		reflection: ta,
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	s.state.SetCategory(s.category)
	return s.generate()
}

func (s *LessonScreen) Title() string {
	return "Lesson"
}

func (s *LessonScreen) Status() string {
	provider, _ := s.state.Credentials()
	return fmt.Sprintf("%s · %s", s.category.Label(), provider)
}

// CapturingInput keeps Esc for the screen while a reflection is being
// written or a generation can still be cancelled.
func (s *LessonScreen) CapturingInput() bool {
	return s.editing || s.state.Snapshot().Generating
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	v := s.state.Snapshot()
	switch {
	case v.Generating:
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	case s.editing:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Save"},
			{Key: "Esc", Description: "Done"},
		}
	case v.Lesson == nil:
		return []layout.KeyHint{
			{Key: "N", Description: "Try again"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "P/S", Description: "Details"},
		{Key: "R", Description: "Reflect"},
		{Key: "N", Description: "New lesson"},
		{Key: "Esc", Description: "Back"},
	}
}

// generate marks the session as generating and returns the command that
// runs the generation.
func (s *LessonScreen) generate() tea.Cmd {
	provider, _ := s.state.Credentials()
	if err := s.state.BeginGenerate(provider != llm.ProviderMock); err != nil {
		if errors.Is(err, session.ErrNoAPIKey) {
			s.notice = session.PromptAPIKey
		} else {
			s.notice = err.Error()
		}
		return nil
	}
	s.notice = ""

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.deps.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.deps.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	s.cancel = cancel

	deps, st, category := s.deps, s.state, s.category
	run := func() tea.Msg {
		defer cancel()
		return generatedMsg{Outcome: deps.generate(ctx, st, category)}
	}
	return tea.Batch(run, s.spinner.Tick)
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		return s, s.handleGenerated(msg.Outcome)

	case spinner.TickMsg:
		if !s.state.Snapshot().Generating {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case components.ChoiceMsg:
		return s, s.handleChoice(msg.Index)

	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}

	if s.editing {
		var cmd tea.Cmd
		s.reflection, cmd = s.reflection.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LessonScreen) handleGenerated(out lessons.Outcome) tea.Cmd {
	s.cancel = nil
	if !out.OK() {
		return nil
	}
	l := out.Lesson
	s.choices = components.NewMultiChoice(l.Exercise.Question, l.Exercise.Options)
	s.reflection.SetValue("")
	s.showPrior, s.showCase = false, false
	s.scroll = 0
	s.notice = fmt.Sprintf("Generating lesson about: %s", out.Topic)
	return nil
}

func (s *LessonScreen) handleChoice(i int) tea.Cmd {
	fb, err := s.state.SelectAnswer(i)
	if err != nil {
		s.notice = err.Error()
		return nil
	}
	s.choices.Mark(i, fb.Correct)
	s.notice = fb.Message
	s.deps.recordAnswer(context.Background(), s.state, i, fb.Correct)
	return nil
}

func (s *LessonScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if s.editing {
		return s.handleEditingKey(msg)
	}

	v := s.state.Snapshot()
	if v.Generating {
		if msg.String() == "esc" {
			if s.cancel != nil {
				s.cancel()
			}
			return func() tea.Msg { return router.PopScreenMsg{} }
		}
		return nil
	}

	switch msg.String() {
	case "n":
		return s.generate()
	case "up", "k":
		s.scrollBy(-1)
		return nil
	case "down", "j":
		s.scrollBy(1)
		return nil
	case "pgup":
		s.scrollBy(-10)
		return nil
	case "pgdown", "space":
		s.scrollBy(10)
		return nil
	}

	if v.Lesson == nil {
		return nil
	}

	switch msg.String() {
	case "p":
		s.showPrior = !s.showPrior
		return nil
	case "s":
		s.showCase = !s.showCase
		return nil
	case "r":
		s.editing = true
		s.reflection.SetValue(v.Reflection)
		return s.reflection.Focus()
	}

	var cmd tea.Cmd
	s.choices, cmd = s.choices.Update(msg)
	return cmd
}

func (s *LessonScreen) handleEditingKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+s":
		s.editing = false
		s.reflection.Blur()
		if err := s.state.SetReflection(s.reflection.Value()); err != nil {
			s.notice = err.Error()
		} else {
			s.notice = "Reflection saved."
		}
		return nil
	}
	var cmd tea.Cmd
	s.reflection, cmd = s.reflection.Update(msg)
	return cmd
}

func (s *LessonScreen) scrollBy(n int) {
	s.scroll = min(max(s.scroll+n, 0), s.maxScroll)
}
