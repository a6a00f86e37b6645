package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/router"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screens/lesson"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
)

type emptyHistory struct{}

func (emptyHistory) QueryLessonEvents(context.Context, store.QueryOpts) ([]store.LessonEventRecord, error) {
	return nil, nil
}
func (emptyHistory) StatsByCategory(context.Context) ([]store.CategoryStats, error) { return nil, nil }
func (emptyHistory) FirstTryAccuracy(context.Context) (float64, int, error)         { return 0, 0, nil }

var enter = tea.KeyPressMsg{Code: tea.KeyEnter}

func labels(h *HomeScreen) []string {
	var out []string
	for _, item := range h.menu.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestHome_MenuOrder(t *testing.T) {
	h := New(lesson.Deps{}, session.New("tui", llm.ProviderMock), nil)
	got := strings.Join(labels(h), ",")
	if got != "Random,Science,Technology,Psychology,History,API Key,Quit" {
		t.Errorf("menu = %s", got)
	}

	h = New(lesson.Deps{}, session.New("tui", llm.ProviderMock), emptyHistory{})
	if !strings.Contains(strings.Join(labels(h), ","), "History,Quit") {
		t.Errorf("history entry missing: %v", labels(h))
	}
}

func TestHome_StartsOnSessionCategory(t *testing.T) {
	st := session.New("tui", llm.ProviderMock)
	st.SetCategory(lessons.Psychology)
	h := New(lesson.Deps{}, st, nil)

	item, _ := h.menu.Current()
	if item.Label != "Psychology" {
		t.Errorf("selected = %q", item.Label)
	}
	if !strings.Contains(h.View(100, 40), lessons.Psychology.Description()) {
		t.Error("description of the highlighted category not shown")
	}
}

func TestHome_PushesLessonScreen(t *testing.T) {
	h := New(lesson.Deps{}, session.New("tui", llm.ProviderMock), nil)
	if h.CapturingInput() {
		t.Fatal("mock provider should not ask for a key")
	}

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(enter)
	if cmd == nil {
		t.Fatal("enter on a category should return a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if _, ok := push.Screen.(*lesson.LessonScreen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
	if got := h.state.Snapshot().Category; got != lessons.Science {
		t.Errorf("session category = %q", got)
	}
}

func TestHome_AsksForKey(t *testing.T) {
	st := session.New("tui", llm.ProviderGroq)
	h := New(lesson.Deps{}, st, nil)
	if !h.CapturingInput() {
		t.Fatal("expected key prompt without a key")
	}

	// Empty submit keeps the prompt open.
	h.Update(enter)
	if !h.askKey {
		t.Fatal("empty key accepted")
	}

	h.keyInput.Model.SetValue("sk-not-a-groq-key")
	h.Update(enter)
	if h.askKey {
		t.Fatal("prompt still open after saving")
	}
	if _, key := st.Credentials(); key != "sk-not-a-groq-key" {
		t.Errorf("stored key = %q", key)
	}
	if !strings.Contains(h.warning, "usually start with") {
		t.Errorf("warning = %q", h.warning)
	}
	if !strings.Contains(h.View(100, 40), "Settings saved.") {
		t.Error("confirmation not shown")
	}
}

func TestHome_SkipKeyThenStartPromptsAgain(t *testing.T) {
	h := New(lesson.Deps{}, session.New("tui", llm.ProviderGroq), nil)
	h.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if h.askKey {
		t.Fatal("esc should close the prompt")
	}

	h.Update(enter)
	if !h.askKey || h.notice != session.PromptAPIKey {
		t.Errorf("askKey = %v notice = %q", h.askKey, h.notice)
	}
}
