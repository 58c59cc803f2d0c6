package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/logger"
	"github.com/sameane/physexam/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "physexam",
	Short: "Physics exam builder",
	Long: "physexam builds multiple-choice physics exams with AI help, keeps an undo history " +
		"per exam and exports print-ready PDF, PNG and HTML papers.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.FromEnv()
		if err != nil {
			return err
		}
		logger.SetDefault(l)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PHYSEXAM_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to settings file (overrides PHYSEXAM_CONFIG env var)")
	rootCmd.PersistentFlags().String("exam", "", "Exam id to act on instead of the active exam")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(previewCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then PHYSEXAM_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
