package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
	"github.com/sameane/physexam/internal/render"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.NoError(t, Default().Validate())
}

func TestLoadKeepsUnsetDefaults(t *testing.T) {
	path := writeConfig(t, `
language: ar
layout:
  page_height: 1000
watermark:
  placement: grid
  grid_size: 2x2
design:
  page_border: frame
`)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ar", s.Language)
	assert.Equal(t, 1000.0, s.Layout.PageHeight)
	assert.Equal(t, float64(layout.DefaultPagePadding), s.Layout.PagePadding)
	assert.Equal(t, exam.PlacementGrid, s.Watermark.Placement)
	assert.Equal(t, 0.1, s.Watermark.Opacity)
	assert.Equal(t, exam.BorderFrame, s.Design.PageBorder)
	assert.Equal(t, exam.DefaultDesignSettings().QuestionBorder, s.Design.QuestionBorder)
	assert.Equal(t, 10, s.Generation.Count)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":    "language: [",
		"language":  "language: fr",
		"layout":    "layout:\n  page_height: 0",
		"border":    "design:\n  header_border: wavy",
		"opacity":   "watermark:\n  opacity: 3",
		"format":    "export:\n  format: docx",
		"generated": "generation:\n  difficulty: 11",
	} {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := Default()
	s.FontPath = "/fonts/Amiri.ttf"
	s.Export.IncludeAnswers = true
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "physexam", "config.yaml"), p)

	t.Setenv(EnvPath, "/etc/physexam.yaml")
	p, err = Path()
	require.NoError(t, err)
	assert.Equal(t, "/etc/physexam.yaml", p)
}

func TestNewDocumentAndRenderOptions(t *testing.T) {
	s := Default()
	s.Language = "ar"
	s.Design.PageBorder = exam.BorderDashed
	s.Colors.Title = "#ff0000"

	doc := s.NewDocument("Optics")
	assert.Equal(t, "Optics", doc.Title)
	assert.Equal(t, exam.BorderDashed, doc.Design.PageBorder)

	opts, err := s.RenderOptions("")
	require.NoError(t, err)
	assert.Equal(t, render.FormatPDF, opts.Format)
	assert.Equal(t, "rtl", opts.Labels.Dir)
	assert.Equal(t, "#ff0000", opts.TitleColor)

	opts, err = s.RenderOptions("html")
	require.NoError(t, err)
	assert.Equal(t, render.FormatHTML, opts.Format)

	_, err = s.RenderOptions("gif")
	assert.Error(t, err)
}
