package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

// ChoiceMsg is emitted when the learner picks an option.
type ChoiceMsg struct {
	Index int
}

// MultiChoice is a lettered option picker. Picking does not lock the
// component: after a wrong pick the learner may choose again. The owner
// reports the verdict back through Mark.
type MultiChoice struct {
	Question string
	Options  []string
	Cursor   int

	// Chosen is the last picked option, or -1.
	Chosen  int
	correct bool
}

// NewMultiChoice creates a picker with nothing chosen.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{Question: question, Options: options, Chosen: -1}
}

// Letter returns the option label for index i: A, B, C, ...
func Letter(i int) string {
	return string(rune('A' + i))
}

// Update moves the cursor and emits ChoiceMsg on Enter or a letter key.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "left", "h", "shift+tab":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "right", "l", "tab":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
		return m, nil
	case "enter":
		return m, choose(m.Cursor)
	}

	if len(key) == 1 {
		c := strings.ToUpper(key)[0]
		if i := int(c - 'A'); c >= 'A' && i < len(m.Options) {
			m.Cursor = i
			return m, choose(i)
		}
		if i := int(c - '1'); c >= '1' && c <= '9' && i < len(m.Options) {
			m.Cursor = i
			return m, choose(i)
		}
	}
	return m, nil
}

func choose(i int) tea.Cmd {
	return func() tea.Msg { return ChoiceMsg{Index: i} }
}

// Mark records the verdict for option i.
func (m *MultiChoice) Mark(i int, correct bool) {
	m.Chosen = i
	m.correct = correct
}

// View renders the question and the options, wrapped to width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, Letter(i), opt)

		style := theme.Unselected
		switch {
		case i == m.Chosen && m.correct:
			style = theme.Correct
		case i == m.Chosen:
			style = theme.Incorrect
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Width(width).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// IsCorrect reports whether the last pick was marked correct.
func (m MultiChoice) IsCorrect() bool {
	return m.Chosen >= 0 && m.correct
}
