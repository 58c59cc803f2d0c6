package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sameane/physexam/internal/editor"
	"github.com/sameane/physexam/internal/exam"
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark",
	Short: "Set, clear or tune the watermark of the active exam",
}

var watermarkSetCmd = &cobra.Command{
	Use:   "set <image>",
	Short: "Use an image (path or data URL) as the watermark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := loadImageArg(args[0])
		if err != nil {
			return err
		}
		return styleEdit(cmd, func(s *editor.Session) error {
			_, err := s.SetWatermark(img.DataURL())
			return err
		})
	},
}

var watermarkClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the watermark",
	RunE: func(cmd *cobra.Command, args []string) error {
		return styleEdit(cmd, func(s *editor.Session) error {
			_, err := s.ClearWatermark()
			return err
		})
	},
}

var watermarkSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change opacity, rotation, scale and placement",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		return styleEdit(cmd, func(s *editor.Session) error {
			ws := s.Current().WatermarkSettings
			setFloat(f, "opacity", &ws.Opacity)
			setFloat(f, "rotation", &ws.Rotation)
			setFloat(f, "scale", &ws.Scale)
			setString(f, "grid", &ws.GridSize)
			setInt(f, "per-question", &ws.PerQuestion)
			setBool(f, "overlay", &ws.Overlay)
			if f.Changed("placement") {
				p, _ := f.GetString("placement")
				ws.Placement = exam.Placement(p)
			}
			_, err := s.SetWatermarkSettings(ws)
			return err
		})
	},
}

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Change borders, colours and spacing of the page, header and questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		reset, _ := f.GetBool("reset")
		return styleEdit(cmd, func(s *editor.Session) error {
			d := s.Current().Design
			if reset {
				d = exam.DefaultDesignSettings()
			}
			for _, b := range []struct {
				flag string
				dst  *exam.BorderStyle
			}{
				{"page-border", &d.PageBorder},
				{"header-border", &d.HeaderBorder},
				{"question-border", &d.QuestionBorder},
			} {
				if f.Changed(b.flag) {
					v, _ := f.GetString(b.flag)
					style, err := exam.ParseBorderStyle(v)
					if err != nil {
						return fmt.Errorf("--%s: %w", b.flag, err)
					}
					*b.dst = style
				}
			}
			setString(f, "page-border-color", &d.PageBorderColor)
			setFloat(f, "page-border-width", &d.PageBorderWidth)
			setFloat(f, "page-padding", &d.PagePadding)
			setFloat(f, "page-margin", &d.PageMargin)
			setString(f, "page-bg", &d.PageBgColor)
			setString(f, "header-bg", &d.HeaderBgColor)
			setString(f, "header-border-color", &d.HeaderBorderColor)
			setFloat(f, "header-border-width", &d.HeaderBorderWidth)
			setFloat(f, "header-padding", &d.HeaderPadding)
			setFloat(f, "header-margin", &d.HeaderMargin)
			setString(f, "question-bg", &d.QuestionBgColor)
			setString(f, "question-border-color", &d.QuestionBorderColor)
			setFloat(f, "question-border-width", &d.QuestionBorderWidth)
			setFloat(f, "question-padding", &d.QuestionPadding)
			setFloat(f, "question-margin", &d.QuestionMargin)
			setFloat(f, "question-radius", &d.QuestionBorderRadius)
			if err := setImage(f, "page-bg-image", &d.PageBgImage); err != nil {
				return err
			}
			if err := setImage(f, "logo-left", &d.HeaderImageLeft); err != nil {
				return err
			}
			if err := setImage(f, "logo-right", &d.HeaderImageRight); err != nil {
				return err
			}
			setFloat(f, "logo-left-width", &d.HeaderImageLeftWidth)
			setFloat(f, "logo-right-width", &d.HeaderImageRightWidth)
			_, err := s.SetDesign(d)
			return err
		})
	},
}

// styleEdit applies a settings change and reports the result.
func styleEdit(cmd *cobra.Command, action func(s *editor.Session) error) error {
	return withWorkspace(cmd, false, func(w *workspace) error {
		s, err := w.edit(cmd, action)
		if err != nil {
			return err
		}
		doc := s.Current()
		ws := doc.WatermarkSettings
		wm := "none"
		if doc.Watermark != "" {
			wm = "set"
		}
		fmt.Printf("Watermark: %s (placement %s, opacity %.2f, rotation %.0f°, scale %.2f, overlay %v)\n",
			wm, ws.Placement, ws.Opacity, ws.Rotation, ws.Scale, ws.Overlay)
		fmt.Printf("Borders:   page %s, header %s, question %s\n",
			doc.Design.PageBorder, doc.Design.HeaderBorder, doc.Design.QuestionBorder)
		return nil
	})
}

func setFloat(f *pflag.FlagSet, name string, dst *float64) {
	if f.Changed(name) {
		*dst, _ = f.GetFloat64(name)
	}
}

func setInt(f *pflag.FlagSet, name string, dst *int) {
	if f.Changed(name) {
		*dst, _ = f.GetInt(name)
	}
}

func setString(f *pflag.FlagSet, name string, dst *string) {
	if f.Changed(name) {
		*dst, _ = f.GetString(name)
	}
}

func setBool(f *pflag.FlagSet, name string, dst *bool) {
	if f.Changed(name) {
		*dst, _ = f.GetBool(name)
	}
}

// setImage stores an image flag as a data URL; an empty value clears it.
func setImage(f *pflag.FlagSet, name string, dst *string) error {
	if !f.Changed(name) {
		return nil
	}
	src, _ := f.GetString(name)
	if src == "" {
		*dst = ""
		return nil
	}
	img, err := loadImageArg(src)
	if err != nil {
		return fmt.Errorf("--%s: %w", name, err)
	}
	*dst = img.DataURL()
	return nil
}

func init() {
	wf := watermarkSettingsCmd.Flags()
	wf.Float64("opacity", 0, "Opacity 0-1")
	wf.Float64("rotation", 0, "Rotation in degrees")
	wf.Float64("scale", 0, "Size multiplier")
	wf.String("placement", "", "center, grid or question")
	wf.String("grid", "", "Grid size as COLSxROWS, e.g. 3x4")
	wf.Int("per-question", 0, "Copies inside each question box")
	wf.Bool("overlay", false, "Draw over the content instead of under it")
	watermarkCmd.AddCommand(watermarkSetCmd, watermarkClearCmd, watermarkSettingsCmd)

	df := designCmd.Flags()
	df.Bool("reset", false, "Start from the default design")
	for _, name := range []string{"page-border", "header-border", "question-border"} {
		df.String(name, "", "none, simple, double, dashed, frame, modern_right or modern_bottom")
	}
	for _, name := range []string{
		"page-border-color", "page-bg", "header-bg", "header-border-color",
		"question-bg", "question-border-color",
	} {
		df.String(name, "", "CSS colour (#rgb, #rrggbb, rgb(), rgba(), transparent)")
	}
	for _, name := range []string{
		"page-border-width", "page-padding", "page-margin",
		"header-border-width", "header-padding", "header-margin",
		"question-border-width", "question-padding", "question-margin", "question-radius",
		"logo-left-width", "logo-right-width",
	} {
		df.Float64(name, 0, "Size in pixels")
	}
	df.String("page-bg-image", "", "Page background image (empty clears)")
	df.String("logo-left", "", "Left header logo (empty clears)")
	df.String("logo-right", "", "Right header logo (empty clears)")

	rootCmd.AddCommand(watermarkCmd, designCmd)
}
