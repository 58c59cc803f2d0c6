package history

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	edit "github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/router"
	"github.com/sameane/physexam/internal/screen"
	"github.com/sameane/physexam/internal/ui/layout"
	"github.com/sameane/physexam/internal/ui/theme"
)

// HistoryScreen lists the undo history of the session, newest first.
type HistoryScreen struct {
	entries  []edit.Entry
	selected int
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen from a snapshot of s's history.
func New(s *edit.Session) *HistoryScreen {
	entries := s.History()
	h := &HistoryScreen{entries: make([]edit.Entry, 0, len(entries))}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Current {
			h.selected = len(h.entries)
		}
		h.entries = append(h.entries, entries[i])
	}
	return h
}

func (h *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (h *HistoryScreen) Title() string {
	return "History"
}

func (h *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (h *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q":
			return h, router.PopCmd
		case "up", "k":
			if h.selected > 0 {
				h.selected--
			}
		case "down", "j":
			if h.selected < len(h.entries)-1 {
				h.selected++
			}
		}
	}
	return h, nil
}

func (h *HistoryScreen) View(width, height int) string {
	if len(h.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No history yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	start := max(h.selected-height+3, 0)
	for i := start; i < len(h.entries) && i-start < height-2; i++ {
		e := h.entries[i]
		prefix := "  "
		if i == h.selected {
			prefix = "> "
		}
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%s#%-3d %-40s %3d questions  %3d items", prefix, e.Index, title, e.Questions, e.Items)
		if e.Current {
			line += "  ← current"
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == h.selected:
			style = style.Foreground(theme.Primary).Bold(true)
		case !e.Current && i < h.currentRow():
			// Undone snapshots, reachable with redo.
			style = style.Foreground(theme.TextDim)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (h *HistoryScreen) currentRow() int {
	for i, e := range h.entries {
		if e.Current {
			return i
		}
	}
	return 0
}
