package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/questiongen"
	"github.com/sameane/physexam/internal/render"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new exam with AI (or an empty one with --empty)",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		empty, _ := cmd.Flags().GetBool("empty")
		return withWorkspace(cmd, !empty, func(w *workspace) error {
			if empty {
				s, err := w.create(cmd, topic)
				if err != nil {
					return err
				}
				if err := s.Save(cmd.Context()); err != nil {
					return err
				}
				fmt.Printf("Created empty exam %s\n", s.ExamID())
				return nil
			}

			req, err := generateRequest(cmd, w)
			if err != nil {
				return err
			}
			fmt.Printf("Generating %d questions on %q...\n", req.Count, req.Topic)
			s, err := w.create(cmd, topic)
			if err != nil {
				return err
			}
			if _, err := s.Generate(cmd.Context(), req); err != nil {
				return fmt.Errorf("generate exam: %w", err)
			}
			if err := s.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Created exam %s\n\n", s.ExamID())
			return printDocument(w, s.Current())
		})
	},
}

// generateRequest reads the generation flags shared by new and preview.
func generateRequest(cmd *cobra.Command, w *workspace) (questiongen.Request, error) {
	topic, _ := cmd.Flags().GetString("topic")
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetInt("difficulty")
	instructions, _ := cmd.Flags().GetString("instructions")
	imagePath, _ := cmd.Flags().GetString("image")

	if count == 0 {
		count = w.settings.Generation.Count
	}
	if difficulty == 0 {
		difficulty = w.settings.Generation.Difficulty
	}
	req := questiongen.Request{
		Topic:        strings.TrimSpace(topic),
		Count:        count,
		Difficulty:   difficulty,
		Instructions: instructions,
	}
	if imagePath != "" {
		img, err := loadImageArg(imagePath)
		if err != nil {
			return req, err
		}
		req.ReferenceImage = img
	}
	return req, req.Validate()
}

var openCmd = &cobra.Command{
	Use:   "open <file.phq>",
	Short: "Import an exam file as a new exam and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := exam.LoadFile(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, false, func(w *workspace) error {
			title := doc.Title
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			s, err := w.create(cmd, title)
			if err != nil {
				return err
			}
			if _, err := s.ReplaceDocument(doc); err != nil {
				return err
			}
			if err := s.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Opened %s as exam %s (%d questions)\n", args[0], s.ExamID(), len(doc.Questions()))
			return nil
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file.phq>",
	Short: "Replace the active exam's content with a file (undoable)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			_, err := w.edit(cmd, func(s *editor.Session) error {
				_, err := s.Load(args[0])
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %s\n", args[0])
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <file.phq>",
	Short: "Write the active exam to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			s, err := w.session(cmd)
			if err != nil {
				return err
			}
			path := args[0]
			if filepath.Ext(path) == "" {
				path += ".phq"
			}
			if err := s.SaveFile(path); err != nil {
				return err
			}
			fmt.Printf("Saved %s\n", path)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored exams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			repo := w.store.ExamRepo()
			exams, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(exams) == 0 {
				fmt.Println("No exams yet.")
				return nil
			}
			active, err := repo.Active(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("   %-36s  %-32s  %-7s  %s\n", "ID", "Title", "History", "Updated")
			fmt.Println(strings.Repeat("─", 100))
			for _, e := range exams {
				mark := " "
				if e.ID == active {
					mark = "*"
				}
				fmt.Printf(" %s %-36s  %-32s  %3d/%-3d  %s\n",
					mark, e.ID, truncate(e.Title, 32), e.Cursor+1, e.Entries,
					e.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var useCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Select the exam other commands act on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			repo := w.store.ExamRepo()
			e, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := repo.SetActive(cmd.Context(), e.ID); err != nil {
				return err
			}
			fmt.Printf("Active exam: %s (%s)\n", e.ID, e.Title)
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a stored exam and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			if err := w.store.ExamRepo().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted exam %s\n", args[0])
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active exam with its page layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			s, err := w.session(cmd)
			if err != nil {
				return err
			}
			return printDocument(w, s.Current())
		})
	},
}

var titleCmd = &cobra.Command{
	Use:   "title <text>",
	Short: "Rename the active exam",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			_, err := w.edit(cmd, func(s *editor.Session) error {
				_, err := s.SetTitle(strings.Join(args, " "))
				return err
			})
			return err
		})
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Step back one change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stepHistory(cmd, (*editor.Session).Undo, "Nothing to undo.")
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Step forward one change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stepHistory(cmd, (*editor.Session).Redo, "Nothing to redo.")
	},
}

func stepHistory(cmd *cobra.Command, step func(*editor.Session) (*exam.Document, bool), none string) error {
	return withWorkspace(cmd, false, func(w *workspace) error {
		moved := false
		_, err := w.edit(cmd, func(s *editor.Session) error {
			_, moved = step(s)
			return nil
		})
		if err != nil {
			return err
		}
		if !moved {
			fmt.Println(none)
			return nil
		}
		return historyTable(cmd, w)
	})
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the undo history of the active exam",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, false, func(w *workspace) error {
			return historyTable(cmd, w)
		})
	},
}

func historyTable(cmd *cobra.Command, w *workspace) error {
	s, err := w.session(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("   %-4s  %-40s  %9s  %5s\n", "#", "Title", "Questions", "Items")
	fmt.Println(strings.Repeat("─", 66))
	for _, e := range s.History() {
		mark := " "
		if e.Current {
			mark = ">"
		}
		fmt.Printf(" %s %-4d  %-40s  %9d  %5d\n", mark, e.Index+1, truncate(e.Title, 40), e.Questions, e.Items)
	}
	return nil
}

// printDocument lists the items of doc with their number, id and page.
func printDocument(w *workspace, doc *exam.Document) error {
	opts, err := w.settings.RenderOptions("")
	if err != nil {
		return err
	}
	r, err := render.New(opts)
	if err != nil {
		return err
	}
	plan, err := r.Plan(doc)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	cfg := r.Options().Layout

	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Printf("%s — %d questions, %d pages\n", title, len(doc.Questions()), plan.Pages)
	if doc.AnswerKeyStale {
		fmt.Println("Answer key may be out of date: run 'physexam answer-key'.")
	}
	fmt.Println(strings.Repeat("─", 80))

	pos := 0
	for _, b := range plan.Blocks {
		if b.ItemID == 0 || b.Kind == render.BlockAnswer {
			continue
		}
		pos++
		it, _ := doc.Find(b.ItemID)
		page := plan.PageOf(b.ID, cfg) + 1
		switch v := it.(type) {
		case *exam.Question:
			flags := ""
			if v.HasVisual() {
				flags += " [visual]"
			}
			if !v.Valid() {
				flags += " [!latex]"
			}
			fmt.Printf("%3d. p%-2d id=%-4d Q%-3d %s%s\n", pos, page, v.ID, b.Number, snippet(v.Prompt, 50), flags)
			for i, opt := range v.Options {
				mark := " "
				if i == v.Correct {
					mark = "✓"
				}
				fmt.Printf("                  %s %c) %s\n", mark, 'A'+i, snippet(opt, 50))
			}
		case *exam.TextBlock:
			fmt.Printf("%3d. p%-2d id=%-4d TXT  %s\n", pos, page, v.ID, snippet(v.Content, 50))
		}
	}
	if len(plan.Shifts) > 0 {
		fmt.Printf("\n%d block(s) pushed to a new page.\n", len(plan.Shifts))
	}
	return nil
}

// snippet returns the first line of s cut to n runes.
func snippet(s string, n int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if s == "" {
		return "(empty)"
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func init() {
	newCmd.Flags().String("topic", "", "Lesson title the questions are about")
	newCmd.Flags().Int("count", 0, "Number of questions (default from settings)")
	newCmd.Flags().Int("difficulty", 0, "Difficulty 1-10 (default from settings)")
	newCmd.Flags().String("instructions", "", "Extra instructions for the generator")
	newCmd.Flags().String("image", "", "Reference image (path or data URL)")
	newCmd.Flags().Bool("empty", false, "Create an empty exam without calling the AI")

	rootCmd.AddCommand(newCmd, openCmd, loadCmd, saveCmd, listCmd, useCmd, removeCmd,
		showCmd, titleCmd, undoCmd, redoCmd, historyCmd)
}
