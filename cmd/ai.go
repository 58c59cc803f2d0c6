package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/questiongen"
)

var aiEditCmd = &cobra.Command{
	Use:   "ai-edit <id>",
	Short: "Rewrite a question with AI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		instructions, _ := cmd.Flags().GetString("instructions")
		imagePath, _ := cmd.Flags().GetString("image")
		difficulty, _ := cmd.Flags().GetInt("difficulty")
		diagram, _ := cmd.Flags().GetBool("diagram")

		req := questiongen.EditRequest{
			Instructions: instructions,
			Difficulty:   difficulty,
			WithDiagram:  diagram,
		}
		if imagePath != "" {
			img, err := loadImageArg(imagePath)
			if err != nil {
				return err
			}
			req.Image = img
		}
		if err := req.Validate(); err != nil {
			return err
		}
		return editItems(cmd, true, func(s *editor.Session) error {
			_, err := s.AIEdit(cmd.Context(), id, req)
			return err
		})
	},
}

var ocrCmd = &cobra.Command{
	Use:   "ocr <id|new> <image>",
	Short: "Read a photographed question into question <id>, or append it with 'new'",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := 0
		if args[0] != "new" {
			n, err := parseID(args[0])
			if err != nil {
				return err
			}
			id = n
		}
		return editItems(cmd, true, func(s *editor.Session) error {
			_, err := s.ExtractFromImage(cmd.Context(), id, args[1])
			return err
		})
	},
}

var diagramCmd = &cobra.Command{
	Use:   "diagram <id>",
	Short: "Change the SVG diagram of a question with AI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		instruction, _ := cmd.Flags().GetString("instruction")
		return editItems(cmd, true, func(s *editor.Session) error {
			_, err := s.ModifyDiagram(cmd.Context(), id, instruction)
			return err
		})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <id>",
	Short: "Generate a description of a question's diagram or image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, true, func(w *workspace) error {
			s, err := w.edit(cmd, func(s *editor.Session) error {
				_, err := s.DescribeVisual(cmd.Context(), id)
				return err
			})
			if err != nil {
				return err
			}
			q, err := s.Current().FindQuestion(id)
			if err != nil {
				return err
			}
			fmt.Println(q.VisualDescription)
			return nil
		})
	},
}

var answerKeyCmd = &cobra.Command{
	Use:   "answer-key",
	Short: "Re-solve every question and update answers and explanations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return editItems(cmd, true, func(s *editor.Session) error {
			_, err := s.RegenerateAnswerKey(cmd.Context())
			return err
		})
	},
}

var variantCmd = &cobra.Command{
	Use:   "variant",
	Short: "Rewrite the active exam as a parallel form (undo restores the original)",
	RunE: func(cmd *cobra.Command, args []string) error {
		instructions, _ := cmd.Flags().GetString("instructions")
		return editItems(cmd, true, func(s *editor.Session) error {
			_, err := s.GenerateVariant(cmd.Context(), instructions)
			return err
		})
	},
}

// loadImageArg reads an image flag (path or data URL).
func loadImageArg(src string) (*llm.Image, error) {
	img, err := llm.LoadImage(src)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", src, err)
	}
	return &img, nil
}

func init() {
	aiEditCmd.Flags().String("instructions", "", "What to change")
	aiEditCmd.Flags().String("image", "", "Image to base the question on (path or data URL)")
	aiEditCmd.Flags().Int("difficulty", 0, "Target difficulty 1-10 (0 keeps it)")
	aiEditCmd.Flags().Bool("diagram", false, "Ask for an SVG diagram")

	diagramCmd.Flags().String("instruction", "", "How to change the diagram")
	_ = diagramCmd.MarkFlagRequired("instruction")

	variantCmd.Flags().String("instructions", "", "Extra instructions for the variant")

	rootCmd.AddCommand(aiEditCmd, ocrCmd, diagramCmd, describeCmd, answerKeyCmd, variantCmd)
}
