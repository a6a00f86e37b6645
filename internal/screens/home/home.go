// Package home is the root screen: it picks the category, holds the API
// key prompt and links to the lesson history.
package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/llm"
	"github.com/joeaphiboon/BiteSizedLearning/internal/router"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screen"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screens/history"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screens/lesson"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/components"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/layout"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps    lesson.Deps
	state   *session.State
	history history.Repo

	menu     components.Menu
	keyInput components.TextInput
	askKey   bool
	notice   string
	warning  string
}

var (
	_ screen.Screen          = (*HomeScreen)(nil)
	_ screen.KeyHintProvider = (*HomeScreen)(nil)
	_ screen.StatusProvider  = (*HomeScreen)(nil)
	_ screen.InputCapturer   = (*HomeScreen)(nil)
)

// New creates a HomeScreen. hist may be nil when no database is open, in
// which case the history entry is hidden.
func New(deps lesson.Deps, state *session.State, hist history.Repo) *HomeScreen {
	h := &HomeScreen{
		deps:     deps,
		state:    state,
		history:  hist,
		keyInput: components.NewTextInput("Paste your API key", true, 200),
	}
	h.menu = components.NewMenu(h.menuItems())
	h.selectCategory(state.Snapshot().Category)
	h.askKey = h.needsKey()
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	for _, c := range lessons.Selectable() {
		items = append(items, components.MenuItem{
			Label:       c.Label(),
			Description: c.Description(),
			Action:      func() tea.Cmd { return h.start(c) },
		})
	}
	items = append(items, components.MenuItem{
		Label:       "API Key",
		Description: "Enter or replace the key used to generate lessons",
		Action: func() tea.Cmd {
			h.askKey = true
			h.keyInput.Reset()
			return h.keyInput.Init()
		},
	})
	if h.history != nil {
		items = append(items, components.MenuItem{
			Label:       "History",
			Description: "Past lessons and how your answers went",
			Action: func() tea.Cmd {
				return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(h.history)} }
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:       "Quit",
		Description: "Leave BiteSized",
		Action:      func() tea.Cmd { return tea.Quit },
	})
	return items
}

func (h *HomeScreen) selectCategory(c lessons.Category) {
	for i, item := range h.menu.Items {
		if item.Label == c.Label() {
			h.menu.Selected = i
			return
		}
	}
}

func (h *HomeScreen) needsKey() bool {
	v := h.state.Snapshot()
	return !v.HasAPIKey && v.Provider != llm.ProviderMock
}

// start opens a lesson for c, asking for a key first when none is set.
func (h *HomeScreen) start(c lessons.Category) tea.Cmd {
	h.state.SetCategory(c)
	if h.needsKey() {
		h.askKey = true
		h.notice = session.PromptAPIKey
		return h.keyInput.Init()
	}
	h.notice = ""
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: lesson.New(h.deps, h.state, c)}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.askKey {
		return h.keyInput.Init()
	}
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Status() string {
	provider, _ := h.state.Credentials()
	return provider
}

func (h *HomeScreen) CapturingInput() bool {
	return h.askKey
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.askKey {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save key"},
			{Key: "Esc", Description: "Skip"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if h.askKey {
		return h, h.updateKey(msg)
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) updateKey(msg tea.Msg) tea.Cmd {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter":
			key := h.keyInput.Value()
			if key == "" {
				h.keyInput.Submit(false)
				return nil
			}
			provider, _ := h.state.Credentials()
			h.warning = h.state.SetCredentials(provider, key)
			h.keyInput.Submit(true)
			h.askKey = false
			h.notice = "Settings saved."
			return nil
		case "esc":
			h.askKey = false
			return nil
		}
	}
	var cmd tea.Cmd
	h.keyInput, cmd = h.keyInput.Update(msg)
	return cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)

	sections := []string{
		center.Render(theme.Title.Render("What do you want to learn today?")),
	}

	if h.notice != "" {
		sections = append(sections, center.Render(theme.Hint.Render(h.notice)))
	}
	if h.warning != "" {
		sections = append(sections, layout.Wrap(theme.Warning, h.warning, cw))
	}

	if h.askKey {
		provider, _ := h.state.Credentials()
		prompt := theme.Body.Render("API key for "+provider) + "\n\n" + h.keyInput.View()
		sections = append(sections, components.Card(prompt, cw))
	} else {
		sections = append(sections, components.Card(strings.TrimRight(h.menu.View(), "\n"), cw))
		if item, ok := h.menu.Current(); ok && item.Description != "" {
			sections = append(sections, center.Render(theme.Hint.Render(item.Description)))
		}
	}

	content := strings.Join(sections, "\n\n")
	return components.Frame(content, width, height)
}
