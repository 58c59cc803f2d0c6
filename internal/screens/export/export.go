// Package export is the screen that writes the exam to a PDF, PNG or
// HTML file.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/sameane/physexam/internal/config"
	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/logger"
	"github.com/sameane/physexam/internal/render"
	"github.com/sameane/physexam/internal/router"
	"github.com/sameane/physexam/internal/screen"
	"github.com/sameane/physexam/internal/ui/components"
	"github.com/sameane/physexam/internal/ui/layout"
	"github.com/sameane/physexam/internal/ui/theme"
)

// DoneMsg is sent to the screen below after a successful export.
type DoneMsg struct {
	Status string
}

type exportedMsg struct {
	Path string
	Err  error
}

// ExportScreen picks a format and whether to print the answer key.
type ExportScreen struct {
	doc      *exam.Document
	settings config.Settings
	menu     components.Menu
	name     components.TextInput
	answers  bool
	editing  bool
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*ExportScreen)(nil)
var _ screen.KeyHintProvider = (*ExportScreen)(nil)

// New creates the export screen for doc.
func New(doc *exam.Document, settings config.Settings) *ExportScreen {
	s := &ExportScreen{
		doc:      doc,
		settings: settings,
		answers:  settings.Export.IncludeAnswers,
	}

	s.name = components.NewTextInput("file name without extension", false, 120)
	s.name.Label = "File name"
	s.name.SetValue(render.BaseName(doc.Title))
	s.name.Blur()

	item := func(f render.Format, label, hint string) components.MenuItem {
		return components.MenuItem{
			Label:  label,
			Hint:   hint,
			Action: func() tea.Cmd { return s.export(f) },
		}
	}
	s.menu = components.NewMenu([]components.MenuItem{
		item(render.FormatPDF, "PDF", "one A4 page per exam page"),
		item(render.FormatPNG, "PNG", "one tall image"),
		item(render.FormatHTML, "HTML", "printable web page"),
	})
	for i, it := range s.menu.Items {
		if strings.EqualFold(it.Label, settings.Export.Format) {
			s.menu.Selected = i
		}
	}
	return s
}

func (s *ExportScreen) Init() tea.Cmd {
	return nil
}

func (s *ExportScreen) Title() string {
	return "Export"
}

func (s *ExportScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Format"},
		{Key: "Enter", Description: "Export"},
		{Key: "Space", Description: "Answers"},
		{Key: "n", Description: "Rename"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		status := "Exported " + msg.Path
		return s, tea.Sequence(router.PopCmd, func() tea.Msg { return DoneMsg{Status: status} })

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if s.editing {
			switch msg.String() {
			case "enter", "esc":
				s.editing = false
				s.name.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.name, cmd = s.name.Update(msg)
			return s, cmd
		}
		switch msg.String() {
		case "esc":
			return s, router.PopCmd
		case "space", " ":
			s.answers = !s.answers
			return s, nil
		case "n":
			s.editing = true
			return s, s.name.Focus()
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

// export writes the file in the background.
func (s *ExportScreen) export(f render.Format) tea.Cmd {
	opts, err := s.settings.RenderOptions(string(f))
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	opts.IncludeAnswers = s.answers

	name := s.name.Value()
	if name == "" {
		s.errMsg = "file name is empty"
		return nil
	}
	path := name + "." + string(f)
	if filepath.Ext(name) == "."+string(f) {
		path = name
	}

	s.busy = true
	s.errMsg = ""
	doc := s.doc
	return func() tea.Msg {
		return exportedMsg{Path: path, Err: writeFile(context.Background(), path, doc, opts)}
	}
}

func writeFile(ctx context.Context, path string, doc *exam.Document, opts render.Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Export(ctx, file, doc, opts); err != nil {
		file.Close()
		os.Remove(path)
		logger.L().Warn("export failed", "path", path, "format", opts.Format, "err", err)
		return fmt.Errorf("export %s: %w", opts.Format, err)
	}
	return file.Close()
}

func (s *ExportScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Width(width).Render("Choose a format") + "\n\n")
	b.WriteString(s.menu.View())
	b.WriteString("\n")

	box := "[ ]"
	if s.answers {
		box = "[x]"
	}
	b.WriteString("    " + theme.Body.Render(box+" Include answer key and explanations") + "\n")
	if s.answers && s.doc.AnswerKeyStale {
		b.WriteString("    " + theme.Warning.Render("The answer key may be out of date.") + "\n")
	}
	if s.doc.HasInvalid() {
		b.WriteString("    " + theme.Warning.Render("Some questions have LaTeX errors.") + "\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Render(s.name.View()) + "\n\n")

	switch {
	case s.busy:
		b.WriteString("    " + theme.Hint.Render("Exporting..."))
	case s.errMsg != "":
		b.WriteString("    " + theme.Incorrect.Render(s.errMsg))
	}
	return b.String()
}
