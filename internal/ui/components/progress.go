package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/joeaphiboon/BiteSizedLearning/internal/ui/theme"
)

// RatioBar shows Value out of Total as a filled bar followed by the count.
type RatioBar struct {
	Label string
	Value int
	Total int
	Width int
}

// Fraction returns Value/Total clamped to [0, 1]. An empty total is 0.
func (p RatioBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Value) / float64(p.Total)
	return min(max(f, 0), 1)
}

// View renders the bar.
func (p RatioBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	count := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %d/%d", p.Value, p.Total))

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(count)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Fraction())
	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	return result + count
}
