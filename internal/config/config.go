// Package config loads the user settings file
// ($XDG_CONFIG_HOME/physexam/config.yaml). Missing keys keep their
// defaults, so an empty or absent file is valid.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
	"github.com/sameane/physexam/internal/render"
)

// EnvPath overrides the settings file location.
const EnvPath = "PHYSEXAM_CONFIG"

// Settings are the application-wide preferences.
type Settings struct {
	// Language of the printed labels: "en" or "ar".
	Language string `yaml:"language"`

	// FontPath is a TrueType font for raster exports. Arabic labels
	// need a font with Arabic glyphs.
	FontPath string `yaml:"font_path"`

	Colors Colors        `yaml:"colors"`
	Layout layout.Config `yaml:"layout"`
	Export Export        `yaml:"export"`

	Generation Generation `yaml:"generation"`

	// Watermark and Design seed every new exam.
	Watermark exam.WatermarkSettings `yaml:"watermark"`
	Design    exam.DesignSettings    `yaml:"design"`
}

// Colors of printed text, as CSS colour strings.
type Colors struct {
	Title    string `yaml:"title"`
	Question string `yaml:"question"`
	Option   string `yaml:"option"`
}

type Export struct {
	Format         string  `yaml:"format"`
	IncludeAnswers bool    `yaml:"include_answers"`
	Scale          float64 `yaml:"scale"`
}

// Generation holds defaults for AI generation requests.
type Generation struct {
	Count      int `yaml:"count"`
	Difficulty int `yaml:"difficulty"`
}

// Default returns the built-in settings.
func Default() Settings {
	opts := render.DefaultOptions()
	return Settings{
		Language: "en",
		Colors: Colors{
			Title:    opts.TitleColor,
			Question: opts.QuestionColor,
			Option:   opts.OptionColor,
		},
		Layout: layout.DefaultConfig(),
		Export: Export{
			Format: string(render.FormatPDF),
			Scale:  1,
		},
		Generation: Generation{Count: 10, Difficulty: 5},
		Watermark:  exam.DefaultWatermarkSettings(),
		Design:     exam.DefaultDesignSettings(),
	}
}

// Validate checks every section.
func (s Settings) Validate() error {
	if _, err := render.LabelsFor(s.Language); err != nil {
		return err
	}
	if _, err := render.ParseFormat(s.Export.Format); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := s.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if s.Generation.Count < 1 {
		return fmt.Errorf("generation: count must be positive, got %d", s.Generation.Count)
	}
	if s.Generation.Difficulty < 1 || s.Generation.Difficulty > 10 {
		return fmt.Errorf("generation: difficulty must be 1-10, got %d", s.Generation.Difficulty)
	}
	if err := s.Watermark.Validate(); err != nil {
		return fmt.Errorf("watermark: %w", err)
	}
	if err := s.Design.Validate(); err != nil {
		return fmt.Errorf("design: %w", err)
	}
	return nil
}

// Path resolves the settings file: PHYSEXAM_CONFIG, then
// $XDG_CONFIG_HOME/physexam/config.yaml, then ~/.config/physexam/config.yaml.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p, nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "physexam", "config.yaml"), nil
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

// LoadDefault loads the file at Path().
func LoadDefault() (Settings, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return Load(p)
}

// Save writes s to path, creating the directory.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NewDocument returns an empty exam styled with the configured defaults.
func (s Settings) NewDocument(title string) *exam.Document {
	doc := exam.New(title)
	doc.WatermarkSettings = s.Watermark
	doc.Design = s.Design
	return doc
}

// RenderOptions builds export options. An empty format uses the
// configured default.
func (s Settings) RenderOptions(format string) (render.Options, error) {
	if format == "" {
		format = s.Export.Format
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return render.Options{}, err
	}
	labels, err := render.LabelsFor(s.Language)
	if err != nil {
		return render.Options{}, err
	}
	opts := render.DefaultOptions()
	opts.Format = f
	opts.IncludeAnswers = s.Export.IncludeAnswers
	opts.Scale = s.Export.Scale
	opts.Layout = s.Layout
	opts.Labels = labels
	opts.FontPath = s.FontPath
	opts.TitleColor = s.Colors.Title
	opts.QuestionColor = s.Colors.Question
	opts.OptionColor = s.Colors.Option
	return opts, nil
}
