// Package render exports an exam document as a paginated PNG, PDF or
// standalone HTML file.
//
// Raster exports lay the paper out as one vertical flow at a fixed width,
// run the layout engine over it so no block straddles a page boundary and
// then draw the result with gg. PDF pages are slices of that raster.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
)

// PaperWidth is the A4 width in document pixels at 96 dpi.
const PaperWidth = 794

// Format selects the export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatPNG, FormatPDF, FormatHTML:
		return f, nil
	case "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want png, pdf or html)", s)
}

// BaseName turns an exam title into a file name without extension. Path
// separators become dashes and dots or dashes at either end are dropped, so
// the name never leaves the current directory. An empty result is "exam".
func BaseName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, title)
	name = strings.Trim(name, " .-")
	if name == "" {
		return "exam"
	}
	return name
}

// FileName is BaseName(title) with the extension of f.
func FileName(title string, f Format) string {
	return BaseName(title) + "." + string(f)
}

// Options controls an export.
type Options struct {
	Format Format

	// IncludeAnswers appends the answer key and explanations.
	IncludeAnswers bool

	Layout layout.Config

	// Scale multiplies the raster resolution. 0 means 1.
	Scale float64

	Labels Labels

	// FontPath is a TrueType font used for all text. Empty selects the
	// bundled Go fonts, which have no Arabic glyphs.
	FontPath string

	// Colours of question, option and title text (CSS colour strings).
	TitleColor    string
	QuestionColor string
	OptionColor   string
}

// DefaultOptions returns PNG export options with English labels.
func DefaultOptions() Options {
	return Options{
		Format:        FormatPNG,
		Layout:        layout.DefaultConfig(),
		Scale:         1,
		Labels:        EnglishLabels(),
		TitleColor:    "#1e3a8a",
		QuestionColor: "#111827",
		OptionColor:   "#1f2937",
	}
}

func (o Options) validate() error {
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > 4 {
		return fmt.Errorf("scale %v out of range (0, 4]", o.Scale)
	}
	return nil
}

func (o Options) scale() float64 {
	if o.Scale == 0 {
		return 1
	}
	return o.Scale
}

// Labels are the fixed strings printed on the paper.
type Labels struct {
	// Dir is the HTML text direction, "ltr" or "rtl".
	Dir string

	Name        string
	Group       string
	Date        string
	Score       string
	Instruction string
	AnswerKey   string
	Closing     string
	Question    string

	// Options label the four choices.
	Options [exam.OptionCount]string
}

func EnglishLabels() Labels {
	return Labels{
		Dir:         "ltr",
		Name:        "Name",
		Group:       "Group",
		Date:        "Date",
		Score:       "Score",
		Instruction: "Choose the correct answer:",
		AnswerKey:   "Answer key and explanations",
		Closing:     "Best wishes for success",
		Question:    "Q",
		Options:     [exam.OptionCount]string{"A", "B", "C", "D"},
	}
}

func ArabicLabels() Labels {
	return Labels{
		Dir:         "rtl",
		Name:        "اسم الطالب",
		Group:       "المجموعة",
		Date:        "التاريخ",
		Score:       "الدرجة",
		Instruction: "اختر الإجابة الصحيحة:",
		AnswerKey:   "نموذج الإجابة والتفسيرات",
		Closing:     "مع تمنياتي لكم بالتوفيق والنجاح",
		Question:    "س",
		Options:     [exam.OptionCount]string{"A", "B", "C", "D"},
	}
}

// LabelsFor returns the labels of a language code ("en" or "ar").
func LabelsFor(lang string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "en", "english":
		return EnglishLabels(), nil
	case "ar", "arabic":
		return ArabicLabels(), nil
	}
	return Labels{}, fmt.Errorf("unknown label language %q", lang)
}

// Export renders doc in opts.Format.
func Export(ctx context.Context, w io.Writer, doc *exam.Document, opts Options) error {
	r, err := New(opts)
	if err != nil {
		return err
	}
	switch opts.Format {
	case FormatPNG, "":
		return r.PNG(w, doc)
	case FormatPDF:
		return r.PDF(ctx, w, doc)
	case FormatHTML:
		return r.HTML(w, doc)
	}
	return fmt.Errorf("unknown export format %q", opts.Format)
}
