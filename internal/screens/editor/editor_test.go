package editor

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameane/physexam/internal/config"
	edit "github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/router"
	"github.com/sameane/physexam/internal/screens/export"
	"github.com/sameane/physexam/internal/screens/generate"
	"github.com/sameane/physexam/internal/screens/history"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func sampleDoc() *exam.Document {
	d := exam.New("Forces")
	return d.AppendItems(
		&exam.TextBlock{Content: "Part A"},
		exam.NewQuestion("Unit of force?", [exam.OptionCount]string{"N", "J", "W", "Pa"}, 0, "newton"),
		exam.NewQuestion("Unit of work?", [exam.OptionCount]string{"N", "J", "W", "Pa"}, 1, "joule"),
	)
}

func newScreen(t *testing.T, doc *exam.Document) (*EditorScreen, *edit.Session) {
	t.Helper()
	s := edit.New(doc)
	e, err := New(s, config.Default())
	require.NoError(t, err)
	return e, s
}

func press(e *EditorScreen, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = e.Update(m)
	}
	return cmd
}

func TestRowsFollowDocument(t *testing.T) {
	e, _ := newScreen(t, sampleDoc())

	require.Len(t, e.rows, 3)
	assert.Equal(t, exam.KindText, e.rows[0].kind)
	assert.Equal(t, 1, e.rows[1].number)
	assert.Equal(t, 2, e.rows[2].number)
	assert.Equal(t, 1, e.pages)
	assert.Equal(t, "Forces", e.Title())
	assert.Contains(t, e.Status(), "2 Q · 1 page")
	assert.False(t, e.dirty)

	view := e.View(100, 30)
	assert.Contains(t, view, "Page 1")
	assert.Contains(t, view, "Unit of force?")
}

func TestAddAndUndo(t *testing.T) {
	e, s := newScreen(t, sampleDoc())

	press(e, keyPress('a'))
	assert.Len(t, e.rows, 4)
	assert.Equal(t, 3, e.selected)
	assert.True(t, e.dirty)
	assert.Contains(t, e.Status(), "●")

	press(e, keyPress('t'))
	assert.Len(t, e.rows, 5)
	assert.Equal(t, exam.KindText, e.rows[4].kind)

	press(e, keyPress('u'), keyPress('u'))
	assert.Len(t, e.rows, 3)
	assert.False(t, s.CanUndo())

	press(e, keyPress('u'))
	assert.Equal(t, "Nothing to undo", e.status)

	press(e, keyPress('r'))
	assert.Len(t, e.rows, 4)
}

func TestMoveFollowsSelection(t *testing.T) {
	e, s := newScreen(t, sampleDoc())

	press(e, specialKey(tea.KeyDown), specialKey(tea.KeyDown))
	require.Equal(t, 2, e.selected)

	press(e, keyPress('K'))
	assert.Equal(t, 1, e.selected)
	doc := s.Current()
	q, ok := doc.Items[1].(*exam.Question)
	require.True(t, ok)
	assert.Equal(t, "Unit of work?", q.Prompt)
	assert.Equal(t, 1, e.rows[1].number)

	// Moving past either end is a no-op.
	press(e, keyPress('K'), keyPress('K'))
	assert.Equal(t, 0, e.selected)
	assert.Len(t, s.History(), 3)
}

func TestDeleteAndDuplicate(t *testing.T) {
	e, s := newScreen(t, sampleDoc())

	press(e, specialKey(tea.KeyDown), keyPress('y'))
	assert.Len(t, e.rows, 4)
	assert.Equal(t, 2, e.selected)
	assert.Len(t, s.Current().Questions(), 3)

	press(e, keyPress('d'))
	assert.Len(t, e.rows, 3)
	assert.Len(t, s.Current().Questions(), 2)

	press(e, specialKey(tea.KeyEnd), keyPress('d'))
	assert.Equal(t, 1, e.selected)
}

func TestSaveWithoutStore(t *testing.T) {
	e, _ := newScreen(t, sampleDoc())

	cmd := press(e, keyPress('s'))
	assert.Nil(t, cmd)
	assert.True(t, e.statusErr)
	assert.Equal(t, edit.ErrNotPersisted.Error(), e.status)
}

func TestSavedMsg(t *testing.T) {
	e, _ := newScreen(t, sampleDoc())
	press(e, keyPress('a'))
	e.saving = true

	press(e, savedMsg{})
	assert.False(t, e.dirty)
	assert.False(t, e.saving)
	assert.Equal(t, "Saved", e.status)
}

func TestNavigationKeysPushScreens(t *testing.T) {
	e, _ := newScreen(t, sampleDoc())

	for key, want := range map[rune]any{
		'g': &generate.GenerateScreen{},
		'x': &export.ExportScreen{},
		'h': &history.HistoryScreen{},
	} {
		cmd := press(e, keyPress(key))
		require.NotNil(t, cmd, string(key))
		msg, ok := cmd().(router.PushScreenMsg)
		require.True(t, ok, string(key))
		assert.IsType(t, want, msg.Screen)
	}
}

func TestGeneratedDocumentRefreshes(t *testing.T) {
	e, s := newScreen(t, sampleDoc())
	press(e, specialKey(tea.KeyDown))

	_, err := s.AddQuestions(2)
	require.NoError(t, err)

	press(e, generate.DoneMsg{Status: "Generated 4 questions", Saved: true})
	assert.Len(t, e.rows, 5)
	assert.Equal(t, 0, e.selected)
	assert.False(t, e.dirty)
	assert.Equal(t, "Generated 4 questions", e.status)
}

func TestEmptyView(t *testing.T) {
	e, _ := newScreen(t, exam.New(""))
	assert.Equal(t, "Untitled exam", e.Title())
	assert.Contains(t, e.View(100, 30), "The exam is empty")
}
