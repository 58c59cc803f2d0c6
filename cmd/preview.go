package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/questiongen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate questions for a topic and answer them in the terminal (no database)",
	Long: `Generate and interactively answer questions for a topic.

This is a stateless tool: nothing is stored and no exam is created.
Useful for judging question quality before building an exam.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "", "Lesson title (required)")
	previewCmd.Flags().Int("count", 3, "Number of questions to generate")
	previewCmd.Flags().Int("difficulty", 0, "Difficulty 1-10 (default from settings)")
	previewCmd.Flags().String("instructions", "", "Extra instructions for the generator")
	previewCmd.Flags().String("image", "", "Reference image (path or data URL)")
	_ = previewCmd.MarkFlagRequired("topic")
}

func runPreview(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	req, err := generateRequest(cmd, &workspace{settings: settings})
	if err != nil {
		return err
	}

	// No event repo: calls are only logged.
	ctx := cmd.Context()
	provider, err := llm.NewProviderFromEnv(ctx, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	gen := questiongen.New(provider, questiongen.DefaultConfig())

	fmt.Printf("Topic: %s (difficulty %d)\n", req.Topic, req.Difficulty)
	fmt.Printf("Generating %d questions...\n\n", req.Count)

	qs, err := gen.GenerateExam(ctx, req)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	var correct int
	for i, q := range qs {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(qs))
		fmt.Println(q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("  %c) %s\n", 'A'+j, opt)
		}
		if q.VisualDescription != "" {
			fmt.Printf("  [figure: %s]\n", q.VisualDescription)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Println("(skipped)")
			fmt.Println()
			continue
		}

		if idx, err := optionIndex(answer); err == nil && idx == q.Correct {
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", q.CorrectOption())
		}

		if q.Explanation != "" {
			fmt.Printf("Explanation: %s\n", q.Explanation)
		}
		fmt.Println()
	}

	fmt.Printf("── Summary: %d/%d correct ──\n", correct, len(qs))
	return nil
}
