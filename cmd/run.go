package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/app"
	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/logger"
	"github.com/sameane/physexam/internal/questiongen"
)

// runApp opens the selected exam, creating one when none exists, and
// launches the TUI.
func runApp(cmd *cobra.Command) error {
	w, err := openWorkspace(cmd, false)
	if err != nil {
		return err
	}
	defer w.Close()

	provider, err := llm.NewProviderFromEnv(cmd.Context(), w.store.EventRepo())
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	} else {
		w.gen = questiongen.New(provider, questiongen.DefaultConfig())
	}

	s, err := w.session(cmd)
	if errors.Is(err, errNoActiveExam) {
		// Store the first snapshot so the exam survives a quit before the
		// first save.
		if s, err = w.create(cmd, ""); err == nil {
			err = s.Save(cmd.Context())
		}
	}
	if err != nil {
		return err
	}

	// Warnings on stderr would draw over the TUI.
	if os.Getenv("PHYSEXAM_LOG_LEVEL") == "" {
		logger.SetDefault(logger.Nop())
	}
	return app.Run(app.Options{Session: s, Settings: w.settings})
}
