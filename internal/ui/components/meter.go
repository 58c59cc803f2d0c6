package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/sameane/physexam/internal/ui/theme"
)

// Meter is a horizontal fill bar, used for how much of the last page an
// exam occupies.
type Meter struct {
	Label   string
	Percent float64
	Width   int
}

// View renders the label, the bar and the percentage.
func (m Meter) View() string {
	var result string
	if m.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.TextDim).Render(m.Label) + "  "
	}

	barWidth := m.Width - lipgloss.Width(result) - 6
	if barWidth < 4 {
		barWidth = 4
	}

	p := min(max(m.Percent, 0), 1)
	filled := int(float64(barWidth) * p)
	color := theme.Secondary
	if p > 0.9 {
		color = theme.Accent
	}

	result += lipgloss.NewStyle().Background(color).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %3d%%", int(p*100)))
	return result
}
