package lesson

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/lessons"
	"github.com/joeaphiboon/BiteSizedLearning/internal/session"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/components"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/layout"
	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

func (s *LessonScreen) View(width, height int) string {
	v := s.state.Snapshot()
	cw := components.ContentWidth(width)

	if v.Generating {
		line := fmt.Sprintf("%s Generating a %s lesson...", s.spinner.View(), strings.ToLower(s.category.Label()))
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Body.Render(line))
	}

	var sections []string
	if s.notice != "" {
		sections = append(sections, s.renderNotice(v, cw))
	}
	if v.Diagnostic != nil {
		sections = append(sections, renderDiagnostic(v.Diagnostic, cw))
	}
	if v.Lesson != nil {
		sections = append(sections, s.renderLesson(v, cw))
	}
	content := strings.Join(sections, "\n\n")

	lines := strings.Split(content, "\n")
	s.maxScroll = max(len(lines)-height, 0)
	s.scroll = min(s.scroll, s.maxScroll)
	end := min(s.scroll+height, len(lines))
	visible := strings.Join(lines[s.scroll:end], "\n")

	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Width(cw).Align(lipgloss.Left).Render(visible))
}

func (s *LessonScreen) renderNotice(v session.View, cw int) string {
	style := theme.Hint
	switch {
	case v.Feedback != nil && s.notice == v.Feedback.Message && v.Feedback.Correct:
		style = theme.Correct
	case v.Feedback != nil && s.notice == v.Feedback.Message:
		style = theme.Incorrect
	case s.notice == session.PromptAPIKey:
		style = theme.Warning
	}
	return layout.Wrap(style, s.notice, cw)
}

func renderDiagnostic(d *lessons.Diagnostic, cw int) string {
	detail := d.Detail
	if detail == "" {
		detail = "No response received"
	}
	body := theme.Incorrect.Render("Failed to generate lesson. Please try again.") + "\n\n" +
		layout.Wrap(theme.Body, d.Message, cw-6) + "\n\n" +
		theme.Hint.Render("Raw response:") + "\n" +
		layout.Wrap(lipgloss.NewStyle().Foreground(theme.TextDim), detail, cw-6)
	return components.Card(body, cw)
}

func (s *LessonScreen) renderLesson(v session.View, cw int) string {
	l := v.Lesson
	var b strings.Builder

	b.WriteString(theme.Title.Align(lipgloss.Left).Width(cw).Render(l.Title))
	b.WriteString("\n")
	meta := lessons.Category(l.Category).Label()
	if v.Topic != "" {
		meta += " · " + v.Topic
	}
	b.WriteString(theme.Hint.Render(meta))
	b.WriteString("\n\n")

	section(&b, "Core Concept", l.Concept.MainIdea, cw)
	if s.showPrior {
		section(&b, "Prior Knowledge", l.Concept.PriorKnowledge, cw)
	} else {
		b.WriteString(theme.Hint.Render("[p] show prior knowledge"))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Heading.Render("Practice Question"))
	b.WriteString("\n")
	b.WriteString(s.choices.View(cw))
	if v.Attempts > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Attempts: %d", v.Attempts)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	section(&b, "Real-World Application", l.PracticalApplication.RealWorldExample, cw)
	if s.showCase {
		section(&b, "Case Study", l.PracticalApplication.CaseStudy, cw)
	} else {
		b.WriteString(theme.Hint.Render("[s] show case study"))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Heading.Render("Challenge"))
	b.WriteString("\n")
	b.WriteString(layout.Wrap(theme.Callout, l.PracticalApplication.ChallengePrompt, cw))
	b.WriteString("\n\n")

	section(&b, "Reflection", l.Reflection.ConnectingPrompt, cw)
	switch {
	case s.editing:
		s.reflection.SetWidth(cw - 2)
		b.WriteString(s.reflection.View())
	case v.Reflection != "":
		b.WriteString(layout.Wrap(theme.Callout, v.Reflection, cw))
	default:
		b.WriteString(theme.Hint.Render("[r] write a reflection"))
	}
	b.WriteString("\n\n")

	section(&b, "Next Steps", l.Reflection.NextSteps, cw)
	b.WriteString(theme.Heading.Render("Related Topics"))
	b.WriteString("\n")
	for _, t := range l.Reflection.RelatedTopics {
		b.WriteString(theme.Body.Render("  • " + t))
		b.WriteString("\n")
	}
	return b.String()
}

func section(b *strings.Builder, heading, body string, cw int) {
	b.WriteString(theme.Heading.Render(heading))
	b.WriteString("\n")
	b.WriteString(layout.Wrap(theme.Body, body, cw))
	b.WriteString("\n\n")
}
