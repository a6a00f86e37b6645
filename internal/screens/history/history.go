package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/router"
	"github.com/joeaphiboon/BiteSizedLearning/internal/screen"
	"github.com/joeaphiboon/BiteSizedLearning/internal/store"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/components"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/layout"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

// listLimit caps how many past lessons are loaded.
const listLimit = 50

// Repo is the read side of the event store the history screen needs.
// *store.Events implements it.
type Repo interface {
	QueryLessonEvents(ctx context.Context, opts store.QueryOpts) ([]store.LessonEventRecord, error)
	StatsByCategory(ctx context.Context) ([]store.CategoryStats, error)
	FirstTryAccuracy(ctx context.Context) (float64, int, error)
}

type historyLoadedMsg struct {
	Lessons  []store.LessonEventRecord
	Stats    []store.CategoryStats
	Accuracy float64
	Answered int
	Err      error
}

// HistoryScreen displays past generations and answer statistics.
type HistoryScreen struct {
	repo     Repo
	lessons  []store.LessonEventRecord
	stats    []store.CategoryStats
	accuracy float64
	answered int
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo Repo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		ctx := context.Background()

		recs, err := repo.QueryLessonEvents(ctx, store.QueryOpts{Limit: listLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := repo.StatsByCategory(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		acc, n, err := repo.FirstTryAccuracy(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Lessons: recs, Stats: stats, Accuracy: acc, Answered: n}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.lessons = msg.Lessons
			s.stats = msg.Stats
			s.accuracy = msg.Accuracy
			s.answered = msg.Answered
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.lessons)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return centered.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	case !s.loaded:
		return centered.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	case len(s.lessons) == 0:
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No lessons yet. Pick a category to start!")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(s.renderStats(cw))
	b.WriteString("\n")

	for i, rec := range s.lessons {
		b.WriteString(s.renderRow(i, rec, cw))
		b.WriteString("\n")
		if s.expanded[i] {
			b.WriteString(renderDetails(rec, cw))
		}
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *HistoryScreen) renderStats(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Correct answers by category"))
	b.WriteString("\n")
	for _, st := range s.stats {
		if st.Answers == 0 {
			continue
		}
		bar := components.RatioBar{
			Label: fmt.Sprintf("%-11s", lessons.Category(st.Category).Label()),
			Value: st.Correct,
			Total: st.Answers,
			Width: cw,
		}
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	if s.answered > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("First-try accuracy: %.0f%% over %d lessons", s.accuracy*100, s.answered)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderRow(i int, rec store.LessonEventRecord, cw int) string {
	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}

	mark := theme.Correct.Render("✓")
	label := rec.Title
	if !rec.Success {
		mark = theme.Incorrect.Render("✗")
		label = "failed: " + rec.DiagnosticKind
	}

	cat := rec.Category
	if cat == "" {
		cat = rec.RequestedCategory
	}
	line := fmt.Sprintf("%s%s  %-10s  %s", prefix, rec.Timestamp.Local().Format("Jan 02 15:04"), cat, label)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.MaxWidth(cw-2).Render(line) + " " + mark
}

func renderDetails(rec store.LessonEventRecord, cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(4)
	var lines []string
	if rec.Topic != "" {
		lines = append(lines, "Topic: "+rec.Topic)
	}
	if rec.RequestedCategory != rec.Category && rec.Category != "" {
		lines = append(lines, "Requested: "+rec.RequestedCategory)
	}
	if rec.Diagnostic != "" {
		lines = append(lines, rec.Diagnostic)
	}
	lines = append(lines, fmt.Sprintf("Took %.1fs", float64(rec.DurationMs)/1000))
	return layout.Wrap(dim, strings.Join(lines, "\n"), cw) + "\n"
}
