package export

import (
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameane/physexam/internal/config"
	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/router"
)

func sampleDoc() *exam.Document {
	return exam.New("Forces").AppendItems(
		exam.NewQuestion("Unit of force?", [exam.OptionCount]string{"N", "J", "W", "Pa"}, 0, "newton"),
	)
}

func TestDefaultsFromSettings(t *testing.T) {
	settings := config.Default()
	settings.Export.Format = "html"
	settings.Export.IncludeAnswers = true

	s := New(sampleDoc(), settings)
	assert.Equal(t, "HTML", s.menu.Items[s.menu.Selected].Label)
	assert.True(t, s.answers)
	assert.Equal(t, "Forces", s.name.Value())
}

func TestDefaultNameStaysInWorkingDir(t *testing.T) {
	for title, want := range map[string]string{
		"../../notes/Forces": "notes-Forces",
		"":                   "exam",
		"..":                 "exam",
	} {
		s := New(exam.New(title), config.Default())
		assert.Equal(t, want, s.name.Value(), title)
		assert.Equal(t, want, filepath.Base(s.name.Value()), title)
	}
}

func TestToggleAnswers(t *testing.T) {
	s := New(sampleDoc(), config.Default())
	before := s.answers
	s.Update(tea.KeyPressMsg{Code: tea.KeySpace})
	assert.Equal(t, !before, s.answers)
	assert.Contains(t, s.View(80, 20), "Include answer key")
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	s := New(sampleDoc(), config.Default())
	s.name.SetValue(filepath.Join(dir, "forces"))
	s.menu.Selected = 2 // HTML

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, s.busy)

	msg, ok := cmd().(exportedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, filepath.Join(dir, "forces.html"), msg.Path)

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Unit of force?")

	_, cmd = s.Update(msg)
	assert.False(t, s.busy)
	assert.NotNil(t, cmd)
}

func TestExportErrorStays(t *testing.T) {
	s := New(sampleDoc(), config.Default())
	s.name.SetValue(filepath.Join(t.TempDir(), "missing", "forces"))

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd().(exportedMsg)
	require.Error(t, msg.Err)

	_, cmd = s.Update(msg)
	assert.Nil(t, cmd)
	assert.NotEmpty(t, s.errMsg)
}

func TestRenameAndBack(t *testing.T) {
	s := New(sampleDoc(), config.Default())

	s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	require.True(t, s.editing)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.False(t, s.editing)

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}
