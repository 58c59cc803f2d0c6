package editor

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/ui/components"
	"github.com/sameane/physexam/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (e *EditorScreen) View(width, height int) string {
	var b strings.Builder

	if e.doc.AnswerKeyStale {
		b.WriteString(theme.Warning.Render("  Answer key may be out of date.") + "\n")
	}
	if len(e.rows) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\nThe exam is empty. Press a to add a question or g to generate one."))
		return b.String()
	}

	listHeight := max(height-lipgloss.Height(b.String())-2, 3)
	lines := e.listLines(width)
	b.WriteString(strings.Join(e.visible(lines, listHeight), "\n"))
	b.WriteString("\n\n")
	b.WriteString(e.statusLine(width))
	return b.String()
}

// listLine is one rendered line and the row it belongs to, -1 for page
// markers.
type listLine struct {
	row  int
	text string
}

func (e *EditorScreen) listLines(width int) []listLine {
	var lines []listLine
	page := -1
	for i, r := range e.rows {
		if r.page != page {
			page = r.page
			lines = append(lines, listLine{row: -1, text: pageMarker(page, width)})
		}
		lines = append(lines, listLine{row: i, text: e.renderRow(i, r, width)})
	}
	return lines
}

// visible scrolls the list so the selected row stays in view.
func (e *EditorScreen) visible(lines []listLine, height int) []string {
	sel := 0
	for i, l := range lines {
		if l.row == e.selected {
			sel = i
			break
		}
	}
	// Keep the page marker above the first row in view.
	if sel > 0 && lines[sel-1].row == -1 && sel-1 < e.offset {
		e.offset = sel - 1
	}
	if sel < e.offset {
		e.offset = sel
	}
	if sel >= e.offset+height {
		e.offset = sel - height + 1
	}
	e.offset = min(e.offset, max(len(lines)-height, 0))

	end := min(e.offset+height, len(lines))
	out := make([]string, 0, end-e.offset)
	for _, l := range lines[e.offset:end] {
		out = append(out, l.text)
	}
	return out
}

func pageMarker(page, width int) string {
	label := theme.PageLabel.Render(fmt.Sprintf(" Page %d ", page+1))
	rule := max(width-lipgloss.Width(label)-6, 0)
	return "  " + theme.PageRule.Render("──") + label + theme.PageRule.Render(strings.Repeat("─", rule))
}

func (e *EditorScreen) renderRow(i int, r row, width int) string {
	prefix := "    "
	style := theme.Unselected
	if i == e.selected {
		prefix = "  ▸ "
		style = theme.Selected
	}

	tag := "TXT"
	if r.kind == exam.KindQuestion {
		tag = fmt.Sprintf("Q%d", r.number)
	}
	head := fmt.Sprintf("%s%-4s", prefix, tag)

	var flags string
	for _, f := range r.flags {
		if f == "latex" {
			flags += " " + theme.Incorrect.Render("[!latex]")
		} else {
			flags += " " + theme.Hint.Render("["+f+"]")
		}
	}

	room := width - lipgloss.Width(head) - lipgloss.Width(flags) - 4
	text := firstLine(r.text, room)
	if r.kind == exam.KindText {
		text = theme.Hint.Render(text)
	} else {
		text = style.Render(text)
	}
	return style.Render(head) + " " + text + flags
}

func (e *EditorScreen) statusLine(width int) string {
	meter := components.Meter{Label: "Last page", Percent: e.lastFill, Width: min(40, width/2)}.View()

	status := e.status
	if e.saving {
		status = spinnerFrames[e.frame%len(spinnerFrames)] + " Saving..."
	}
	style := theme.Hint
	if e.statusErr {
		style = theme.Incorrect
	}
	return "  " + meter + "   " + style.Render(status)
}

// firstLine returns the first line of s cut to n runes.
func firstLine(s string, n int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
