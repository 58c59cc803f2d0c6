package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/config"
	"github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/questiongen"
	"github.com/sameane/physexam/internal/store"
)

// errNoActiveExam is returned when a command needs an exam and none is
// selected.
var errNoActiveExam = errors.New("no active exam: run 'physexam new', 'physexam open' or 'physexam use' first")

// workspace bundles what exam commands share: the store, the settings
// and, when configured, the question generator.
type workspace struct {
	store    *store.Store
	settings config.Settings
	gen      questiongen.Generator
}

// openWorkspace opens the database and settings. withAI also builds the
// LLM provider and fails when none is configured.
func openWorkspace(cmd *cobra.Command, withAI bool) (*workspace, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	w := &workspace{store: st, settings: settings}
	if withAI {
		provider, err := llm.NewProviderFromEnv(cmd.Context(), st.EventRepo())
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("LLM provider: %w", err)
		}
		w.gen = questiongen.New(provider, questiongen.DefaultConfig())
	}
	return w, nil
}

func (w *workspace) Close() error {
	return w.store.Close()
}

// loadSettings reads --config, or the default settings path.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return config.Load(p)
	}
	return config.LoadDefault()
}

// examID returns --exam, or the active exam.
func (w *workspace) examID(cmd *cobra.Command) (string, error) {
	if id, _ := cmd.Flags().GetString("exam"); id != "" {
		return id, nil
	}
	id, err := w.store.ExamRepo().Active(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("active exam: %w", err)
	}
	if id == "" {
		return "", errNoActiveExam
	}
	return id, nil
}

func (w *workspace) options() []editor.Option {
	if w.gen == nil {
		return nil
	}
	return []editor.Option{editor.WithGenerator(w.gen)}
}

// session opens the selected exam with its stored history.
func (w *workspace) session(cmd *cobra.Command) (*editor.Session, error) {
	id, err := w.examID(cmd)
	if err != nil {
		return nil, err
	}
	return editor.Open(cmd.Context(), w.store.ExamRepo(), id, w.options()...)
}

// create registers a new exam, selects it and returns an unsaved session
// seeded with the configured defaults.
func (w *workspace) create(cmd *cobra.Command, title string) (*editor.Session, error) {
	repo := w.store.ExamRepo()
	e, err := repo.Create(cmd.Context(), title)
	if err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	if err := repo.SetActive(cmd.Context(), e.ID); err != nil {
		return nil, err
	}
	opts := append(w.options(), editor.WithStore(repo, e.ID))
	return editor.New(w.settings.NewDocument(title), opts...), nil
}

// edit runs one editing action on the selected exam and persists the
// resulting history.
func (w *workspace) edit(cmd *cobra.Command, action func(s *editor.Session) error) (*editor.Session, error) {
	s, err := w.session(cmd)
	if err != nil {
		return nil, err
	}
	if err := action(s); err != nil {
		return nil, err
	}
	if err := s.Save(cmd.Context()); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return s, nil
}

// withWorkspace opens a workspace for the duration of fn.
func withWorkspace(cmd *cobra.Command, withAI bool, fn func(w *workspace) error) error {
	w, err := openWorkspace(cmd, withAI)
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(w)
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
