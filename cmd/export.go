package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sameane/physexam/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the active exam as PDF, PNG or HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		format, _ := f.GetString("format")
		out, _ := f.GetString("output")

		return withWorkspace(cmd, false, func(w *workspace) error {
			s, err := w.session(cmd)
			if err != nil {
				return err
			}
			doc := s.Current()

			// The output extension picks the format when --format is absent.
			if format == "" && out != "" {
				format = filepath.Ext(out)
			}
			opts, err := w.settings.RenderOptions(format)
			if err != nil {
				return err
			}
			if f.Changed("answers") {
				opts.IncludeAnswers, _ = f.GetBool("answers")
			}
			if f.Changed("scale") {
				opts.Scale, _ = f.GetFloat64("scale")
			}
			if f.Changed("lang") {
				lang, _ := f.GetString("lang")
				if opts.Labels, err = render.LabelsFor(lang); err != nil {
					return err
				}
			}
			if f.Changed("font") {
				opts.FontPath, _ = f.GetString("font")
			}

			if out == "" {
				out = render.FileName(doc.Title, opts.Format)
			}
			if doc.AnswerKeyStale && opts.IncludeAnswers {
				warn("warning: answer key may be out of date; run 'physexam answer-key' first")
			}
			if doc.HasInvalid() {
				warn("warning: some questions have LaTeX errors; run 'physexam show' to find them")
			}

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := render.Export(cmd.Context(), file, doc, opts); err != nil {
				file.Close()
				os.Remove(out)
				return fmt.Errorf("export %s: %w", opts.Format, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Printf("Exported %s\n", out)
			return nil
		})
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringP("format", "f", "", "pdf, png or html (default from output extension or settings)")
	f.StringP("output", "o", "", "Output file (default <title>.<format>)")
	f.Bool("answers", false, "Include the answer key and explanations")
	f.Float64("scale", 1, "Raster resolution multiplier (1-4)")
	f.String("lang", "", "Label language: en or ar")
	f.String("font", "", "TrueType font for PNG/PDF text")

	rootCmd.AddCommand(exportCmd)
}
