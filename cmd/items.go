package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/exam"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append questions or text to the active exam",
}

var addQuestionCmd = &cobra.Command{
	Use:   "question",
	Short: "Append blank questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		return editItems(cmd, false, func(s *editor.Session) error {
			_, err := s.AddQuestions(n)
			return err
		})
	},
}

var addTextCmd = &cobra.Command{
	Use:   "text <content>",
	Short: "Append a text block (section heading or instructions)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editItems(cmd, false, func(s *editor.Session) error {
			_, err := s.AddText(strings.Join(args, " "))
			return err
		})
	},
}

var addAICmd = &cobra.Command{
	Use:   "ai",
	Short: "Append AI-generated questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		topic, _ := cmd.Flags().GetString("topic")
		return editItems(cmd, true, func(s *editor.Session) error {
			_, err := s.AddAIQuestions(cmd.Context(), n, topic)
			return err
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the prompt, options, answer or explanation of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		change, err := questionChange(cmd)
		if err != nil {
			return err
		}
		return editItems(cmd, false, func(s *editor.Session) error {
			_, err := s.UpdateQuestion(id, change)
			return err
		})
	},
}

// questionChange turns the edit flags into an update function. Only the
// flags given are applied.
func questionChange(cmd *cobra.Command) (func(q *exam.Question), error) {
	flags := cmd.Flags()
	prompt, _ := flags.GetString("prompt")
	explanation, _ := flags.GetString("explanation")
	correct, _ := flags.GetString("correct")
	options, _ := flags.GetStringArray("option")
	imageSrc, _ := flags.GetString("image")
	width, _ := flags.GetInt("image-width")
	height, _ := flags.GetInt("image-height")
	clearVisual, _ := flags.GetBool("clear-visual")

	opts := map[int]string{}
	for _, o := range options {
		k, v, ok := strings.Cut(o, "=")
		if !ok {
			return nil, fmt.Errorf("option %q: want LETTER=text, e.g. B=2 m/s", o)
		}
		i, err := optionIndex(k)
		if err != nil {
			return nil, err
		}
		opts[i] = v
	}
	correctIdx := -1
	if correct != "" {
		i, err := optionIndex(correct)
		if err != nil {
			return nil, err
		}
		correctIdx = i
	}
	if imageSrc != "" {
		img, err := loadImageArg(imageSrc)
		if err != nil {
			return nil, err
		}
		imageSrc = img.DataURL()
	}

	if !flags.Changed("prompt") && !flags.Changed("explanation") && len(opts) == 0 &&
		correctIdx < 0 && imageSrc == "" && !clearVisual &&
		!flags.Changed("image-width") && !flags.Changed("image-height") {
		return nil, fmt.Errorf("nothing to change: pass --prompt, --option, --correct, --explanation or an image flag")
	}

	return func(q *exam.Question) {
		if flags.Changed("prompt") {
			q.Prompt = prompt
		}
		if flags.Changed("explanation") {
			q.Explanation = explanation
		}
		for i, v := range opts {
			q.Options[i] = v
		}
		if correctIdx >= 0 {
			q.Correct = correctIdx
		}
		if clearVisual {
			q.Image, q.Diagram, q.VisualDescription = nil, "", ""
		}
		if imageSrc != "" {
			q.Image = &exam.ImageRef{Source: imageSrc}
		}
		if q.Image != nil {
			if flags.Changed("image-width") {
				q.Image.Width = width
			}
			if flags.Changed("image-height") {
				q.Image.Height = height
			}
		}
	}, nil
}

// optionIndex accepts A-D (any case) or 1-4.
func optionIndex(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= 'A' && s[0] < 'A'+exam.OptionCount {
		return int(s[0] - 'A'), nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= exam.OptionCount {
		return n - 1, nil
	}
	return 0, fmt.Errorf("option %q: want A-D or 1-4", s)
}

var textCmd = &cobra.Command{
	Use:   "text <id> <content>",
	Short: "Replace the content of a text block",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return editItems(cmd, false, func(s *editor.Session) error {
			_, err := s.UpdateText(id, strings.Join(args[1:], " "))
			return err
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move the item at position <from> to position <to> (1-based, as in 'show')",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseID(args[0])
		if err != nil {
			return err
		}
		to, err := parseID(args[1])
		if err != nil {
			return err
		}
		return editItems(cmd, false, func(s *editor.Session) error {
			_, err := s.Move(from-1, to-1)
			return err
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return editItems(cmd, false, func(s *editor.Session) error {
			_, err := s.Delete(id)
			return err
		})
	},
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate <id>",
	Short: "Copy an item directly after itself",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return editItems(cmd, false, func(s *editor.Session) error {
			_, newID, err := s.Duplicate(id)
			if err == nil {
				fmt.Printf("Duplicated %d as %d\n", id, newID)
			}
			return err
		})
	},
}

// editItems runs one action on the active exam, saves and prints it.
func editItems(cmd *cobra.Command, withAI bool, action func(s *editor.Session) error) error {
	return withWorkspace(cmd, withAI, func(w *workspace) error {
		s, err := w.edit(cmd, action)
		if err != nil {
			return err
		}
		return printDocument(w, s.Current())
	})
}

func parseID(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid id %q: want a positive number", s)
	}
	return n, nil
}

func init() {
	addQuestionCmd.Flags().IntP("count", "n", 1, "Number of blank questions")
	addAICmd.Flags().IntP("count", "n", 5, "Number of questions to generate")
	addAICmd.Flags().String("topic", "", "Topic (defaults to the exam title)")
	addCmd.AddCommand(addQuestionCmd, addTextCmd, addAICmd)

	editCmd.Flags().String("prompt", "", "New question text")
	editCmd.Flags().StringArray("option", nil, "Option as LETTER=text (repeatable)")
	editCmd.Flags().String("correct", "", "Correct option (A-D or 1-4)")
	editCmd.Flags().String("explanation", "", "New explanation")
	editCmd.Flags().String("image", "", "Attach an image (path or data URL)")
	editCmd.Flags().Int("image-width", 0, "Printed image width in pixels (0 = natural)")
	editCmd.Flags().Int("image-height", 0, "Printed image height in pixels (0 = keep aspect)")
	editCmd.Flags().Bool("clear-visual", false, "Remove the image, diagram and description")

	rootCmd.AddCommand(addCmd, editCmd, textCmd, moveCmd, deleteCmd, duplicateCmd)
}
