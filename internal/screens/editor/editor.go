package editor

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/sameane/physexam/internal/config"
	edit "github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/logger"
	"github.com/sameane/physexam/internal/render"
	"github.com/sameane/physexam/internal/router"
	"github.com/sameane/physexam/internal/screen"
	"github.com/sameane/physexam/internal/screens/export"
	"github.com/sameane/physexam/internal/screens/generate"
	"github.com/sameane/physexam/internal/screens/history"
	"github.com/sameane/physexam/internal/ui/layout"
)

// newTextContent is the content of a text block added from the editor.
const newTextContent = "Section"

// row is one item of the list as laid out on paper.
type row struct {
	id     int
	kind   exam.Kind
	page   int
	number int
	text   string
	flags  []string
}

// EditorScreen lists the items of the exam with their pages and applies
// editing actions to the session.
type EditorScreen struct {
	session  *edit.Session
	settings config.Settings
	renderer *render.Renderer

	doc      *exam.Document
	rows     []row
	pages    int
	lastFill float64
	selected int
	offset   int

	dirty     bool
	saving    bool
	status    string
	statusErr bool
	frame     int
}

var _ screen.Screen = (*EditorScreen)(nil)
var _ screen.KeyHintProvider = (*EditorScreen)(nil)
var _ screen.StatusProvider = (*EditorScreen)(nil)

// New creates the editor for session s.
func New(s *edit.Session, settings config.Settings) (*EditorScreen, error) {
	opts, err := settings.RenderOptions("")
	if err != nil {
		return nil, err
	}
	r, err := render.New(opts)
	if err != nil {
		return nil, err
	}
	e := &EditorScreen{session: s, settings: settings, renderer: r}
	e.refresh()
	return e, nil
}

func (e *EditorScreen) Init() tea.Cmd {
	return nil
}

func (e *EditorScreen) Title() string {
	if e.doc == nil || strings.TrimSpace(e.doc.Title) == "" {
		return "Untitled exam"
	}
	return e.doc.Title
}

// Status shows the question and page counts.
func (e *EditorScreen) Status() string {
	mark := ""
	if e.dirty {
		mark = "● "
	}
	return fmt.Sprintf("%s%d Q · %d %s  ", mark, len(e.doc.Questions()), e.pages, plural(e.pages, "page"))
}

func (e *EditorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "K/J", Description: "Move"},
		{Key: "a/t", Description: "Add Q/text"},
		{Key: "y", Description: "Copy"},
		{Key: "d", Description: "Delete"},
		{Key: "u/r", Description: "Undo/Redo"},
		{Key: "g", Description: "Generate"},
		{Key: "x", Description: "Export"},
		{Key: "s", Description: "Save"},
		{Key: "h", Description: "History"},
	}
}

func (e *EditorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		e.saving = false
		if msg.Err != nil {
			e.setError(fmt.Errorf("save: %w", msg.Err))
			return e, nil
		}
		e.dirty = false
		e.setStatus("Saved")
		return e, nil

	case generate.DoneMsg:
		e.setStatus(msg.Status)
		// A generated exam is saved by the form; an unsaved session stays dirty.
		if e.refresh() {
			e.dirty = !msg.Saved
			e.selected = 0
		}
		return e, nil

	case export.DoneMsg:
		e.setStatus(msg.Status)
		return e, nil

	case spinnerTickMsg:
		if !e.saving {
			return e, nil
		}
		e.frame++
		return e, spinnerTick()

	case tea.KeyMsg:
		return e, e.handleKey(msg.String())
	}
	return e, nil
}

func (e *EditorScreen) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if e.selected > 0 {
			e.selected--
		}
	case "down", "j":
		if e.selected < len(e.rows)-1 {
			e.selected++
		}
	case "home":
		e.selected = 0
	case "end":
		e.selected = max(len(e.rows)-1, 0)
	case "K":
		e.move(-1)
	case "J":
		e.move(1)
	case "a":
		e.do("Added question", func() error {
			_, err := e.session.AddQuestions(1)
			return err
		})
		e.selected = len(e.rows) - 1
	case "t":
		e.do("Added text", func() error {
			_, err := e.session.AddText(newTextContent)
			return err
		})
		e.selected = len(e.rows) - 1
	case "d":
		if r, ok := e.current(); ok {
			e.do(fmt.Sprintf("Deleted item %d", r.id), func() error {
				_, err := e.session.Delete(r.id)
				return err
			})
		}
	case "y":
		if r, ok := e.current(); ok {
			e.do(fmt.Sprintf("Duplicated item %d", r.id), func() error {
				_, _, err := e.session.Duplicate(r.id)
				return err
			})
			e.selected = min(e.selected+1, len(e.rows)-1)
		}
	case "u":
		if _, ok := e.session.Undo(); ok {
			e.setStatus("Undone")
		} else {
			e.setStatus("Nothing to undo")
		}
		e.markIfChanged()
	case "r":
		if _, ok := e.session.Redo(); ok {
			e.setStatus("Redone")
		} else {
			e.setStatus("Nothing to redo")
		}
		e.markIfChanged()
	case "g":
		return router.PushCmd(generate.New(e.session, e.settings, e.doc.Title))
	case "x":
		return router.PushCmd(export.New(e.session.Current(), e.settings))
	case "h":
		return router.PushCmd(history.New(e.session))
	case "s":
		return e.save()
	}
	return nil
}

// move shifts the selected item by delta positions.
func (e *EditorScreen) move(delta int) {
	to := e.selected + delta
	if to < 0 || to >= len(e.rows) {
		return
	}
	from := e.selected
	e.do("Moved", func() error {
		_, err := e.session.Move(from, to)
		return err
	})
	e.selected = to
}

// do runs one editing action and refreshes the list.
func (e *EditorScreen) do(status string, action func() error) {
	if err := action(); err != nil {
		e.setError(err)
		return
	}
	e.setStatus(status)
	e.markIfChanged()
}

func (e *EditorScreen) markIfChanged() {
	if e.refresh() {
		e.dirty = true
	}
}

// save persists the history when the session is backed by a store.
func (e *EditorScreen) save() tea.Cmd {
	if e.session.ExamID() == "" {
		e.setError(edit.ErrNotPersisted)
		return nil
	}
	if e.saving {
		return nil
	}
	e.saving = true
	s := e.session
	return tea.Batch(func() tea.Msg {
		return savedMsg{Err: s.Save(context.Background())}
	}, spinnerTick())
}

func (e *EditorScreen) current() (row, bool) {
	if e.selected < 0 || e.selected >= len(e.rows) {
		return row{}, false
	}
	return e.rows[e.selected], true
}

// refresh rebuilds the rows when the session moved to another document
// and reports whether it did.
func (e *EditorScreen) refresh() bool {
	doc := e.session.Current()
	if doc == e.doc {
		return false
	}
	e.doc = doc
	e.rows = e.rows[:0]

	plan, err := e.renderer.Plan(doc)
	if err != nil {
		logger.L().Warn("layout failed", "err", err)
		e.setError(fmt.Errorf("layout: %w", err))
		e.rowsWithoutPlan(doc)
	} else {
		e.rowsFromPlan(doc, plan)
	}

	if e.selected >= len(e.rows) {
		e.selected = max(len(e.rows)-1, 0)
	}
	return true
}

func (e *EditorScreen) rowsFromPlan(doc *exam.Document, plan *render.Plan) {
	cfg := e.renderer.Options().Layout
	bottom := 0.0
	for _, b := range plan.Blocks {
		bottom = max(bottom, b.Bottom())
		if b.ItemID == 0 || b.Kind == render.BlockAnswer {
			continue
		}
		it, ok := doc.Find(b.ItemID)
		if !ok {
			continue
		}
		r := newRow(it)
		r.page = plan.PageOf(b.ID, cfg)
		r.number = b.Number
		e.rows = append(e.rows, r)
	}
	e.pages = plan.Pages
	e.lastFill = 0
	if cfg.PageHeight > 0 && plan.Pages > 0 {
		e.lastFill = (bottom - float64(plan.Pages-1)*cfg.PageHeight) / cfg.PageHeight
	}
}

func (e *EditorScreen) rowsWithoutPlan(doc *exam.Document) {
	for _, it := range doc.Items {
		r := newRow(it)
		r.number = doc.QuestionNumber(it.ItemID())
		e.rows = append(e.rows, r)
	}
	e.pages = 1
	e.lastFill = 0
}

func newRow(it exam.Item) row {
	r := row{id: it.ItemID(), kind: it.Kind()}
	switch v := it.(type) {
	case *exam.Question:
		r.text = v.Prompt
		if strings.TrimSpace(v.Prompt) == "" {
			r.text = "(empty question)"
		}
		if v.HasVisual() {
			r.flags = append(r.flags, "visual")
		}
		if !v.Valid() {
			r.flags = append(r.flags, "latex")
		}
	case *exam.TextBlock:
		r.text = v.Content
	}
	return r
}

func (e *EditorScreen) setStatus(s string) {
	e.status = s
	e.statusErr = false
}

func (e *EditorScreen) setError(err error) {
	e.status = err.Error()
	e.statusErr = true
}

func spinnerTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
