// Package generate is the form that replaces the exam with AI-generated
// questions.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sameane/physexam/internal/config"
	edit "github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/questiongen"
	"github.com/sameane/physexam/internal/router"
	"github.com/sameane/physexam/internal/screen"
	"github.com/sameane/physexam/internal/ui/components"
	"github.com/sameane/physexam/internal/ui/layout"
	"github.com/sameane/physexam/internal/ui/theme"
)

// DoneMsg is sent to the screen below after a successful generation.
type DoneMsg struct {
	Status string
	Saved  bool
}

type generatedMsg struct {
	Questions int
	Saved     bool
	Err       error
}

type tickMsg time.Time

const (
	fieldTopic = iota
	fieldCount
	fieldDifficulty
	numFields
)

// GenerateScreen collects a topic, a count and a difficulty and runs the
// generator in the background.
type GenerateScreen struct {
	session *edit.Session
	fields  [numFields]components.TextInput
	focus   int

	busy   bool
	cancel context.CancelFunc
	frame  int
	errMsg string
}

var _ screen.Screen = (*GenerateScreen)(nil)
var _ screen.KeyHintProvider = (*GenerateScreen)(nil)

// New creates the form, prefilled with topic and the configured defaults.
func New(s *edit.Session, settings config.Settings, topic string) *GenerateScreen {
	g := &GenerateScreen{session: s}

	g.fields[fieldTopic] = components.NewTextInput("e.g. Newton's laws of motion", false, 200)
	g.fields[fieldTopic].Label = "Topic"
	g.fields[fieldTopic].SetValue(topic)

	g.fields[fieldCount] = components.NewTextInput("10", true, 3)
	g.fields[fieldCount].Label = "Number of questions"
	g.fields[fieldCount].SetValue(strconv.Itoa(settings.Generation.Count))
	g.fields[fieldCount].Blur()

	g.fields[fieldDifficulty] = components.NewTextInput("1-10", true, 2)
	g.fields[fieldDifficulty].Label = "Difficulty (1-10)"
	g.fields[fieldDifficulty].SetValue(strconv.Itoa(settings.Generation.Difficulty))
	g.fields[fieldDifficulty].Blur()
	return g
}

func (g *GenerateScreen) Init() tea.Cmd {
	return g.fields[g.focus].Focus()
}

func (g *GenerateScreen) Title() string {
	return "Generate exam"
}

func (g *GenerateScreen) KeyHints() []layout.KeyHint {
	if g.busy {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Generate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (g *GenerateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		g.busy = false
		g.cancel = nil
		if errors.Is(msg.Err, context.Canceled) {
			g.errMsg = "Cancelled."
			return g, nil
		}
		if msg.Err != nil {
			g.errMsg = msg.Err.Error()
			return g, nil
		}
		status := fmt.Sprintf("Generated %d questions", msg.Questions)
		return g, tea.Sequence(router.PopCmd, func() tea.Msg {
			return DoneMsg{Status: status, Saved: msg.Saved}
		})

	case tickMsg:
		if !g.busy {
			return g, nil
		}
		g.frame++
		return g, tick()

	case tea.KeyMsg:
		if g.busy {
			if msg.String() == "esc" && g.cancel != nil {
				g.cancel()
			}
			return g, nil
		}
		switch msg.String() {
		case "esc":
			return g, router.PopCmd
		case "tab", "down":
			return g, g.setFocus((g.focus + 1) % numFields)
		case "shift+tab", "up":
			return g, g.setFocus((g.focus + numFields - 1) % numFields)
		case "enter":
			if g.focus < numFields-1 {
				return g, g.setFocus(g.focus + 1)
			}
			return g, g.submit()
		}
	}

	var cmd tea.Cmd
	g.fields[g.focus], cmd = g.fields[g.focus].Update(msg)
	return g, cmd
}

func (g *GenerateScreen) setFocus(i int) tea.Cmd {
	g.fields[g.focus].Blur()
	g.focus = i
	return g.fields[i].Focus()
}

// request validates the form.
func (g *GenerateScreen) request() (questiongen.Request, error) {
	count, errCount := g.fields[fieldCount].NumericValue()
	difficulty, errDiff := g.fields[fieldDifficulty].NumericValue()
	req := questiongen.Request{
		Topic:      g.fields[fieldTopic].Value(),
		Count:      count,
		Difficulty: difficulty,
	}
	g.fields[fieldTopic].Submit(req.Topic != "")
	g.fields[fieldCount].Submit(errCount == nil && count > 0)
	g.fields[fieldDifficulty].Submit(errDiff == nil && difficulty >= 1 && difficulty <= 10)
	if err := errors.Join(errCount, errDiff); err != nil {
		return req, fmt.Errorf("count and difficulty must be numbers")
	}
	return req, req.Validate()
}

func (g *GenerateScreen) submit() tea.Cmd {
	req, err := g.request()
	if err != nil {
		g.errMsg = err.Error()
		return nil
	}
	g.errMsg = ""
	g.busy = true
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	s := g.session
	return tea.Batch(func() tea.Msg {
		defer cancel()
		doc, err := s.Generate(ctx, req)
		if err != nil {
			return generatedMsg{Err: err}
		}
		msg := generatedMsg{Questions: len(doc.Questions())}
		if s.ExamID() != "" {
			if err := s.Save(ctx); err != nil {
				return generatedMsg{Err: fmt.Errorf("save: %w", err)}
			}
			msg.Saved = true
		}
		return msg
	}, tick())
}

func (g *GenerateScreen) View(width, height int) string {
	var body string
	for i := range g.fields {
		body += g.fields[i].View() + "\n\n"
	}
	if g.busy {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		body += lipgloss.NewStyle().Foreground(theme.Secondary).
			Render(frames[g.frame%len(frames)]+" Generating questions... (Esc cancels)") + "\n"
	}
	if g.errMsg != "" {
		body += theme.Incorrect.Render(g.errMsg) + "\n"
	}
	body += "\n" + theme.Hint.Render("Generating replaces the current questions. Press u in the editor to undo.")
	return lipgloss.NewStyle().Padding(1, 4).Width(width).Render(body)
}

func tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
