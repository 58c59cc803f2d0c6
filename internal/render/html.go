package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/logger"
)

//go:embed exam.html.tmpl
var examTemplateText string

var examTemplate = template.Must(template.New("exam").Parse(examTemplateText))

// answerTableSize is the number of questions per answer key table row.
const answerTableSize = 10

type htmlOption struct {
	Label string
	Text  string
}

type htmlItem struct {
	ID          int
	Text        bool
	Number      int
	Prompt      string
	Options     []htmlOption
	Image       template.URL
	ImageWidth  int
	ImageHeight int
	Diagram     template.HTML
	Description string
	Watermarks  []int
}

type htmlAnswer struct {
	Number      int
	Label       string
	Explanation string
}

type htmlColors struct {
	Title, Question, Option, PageBg, HeaderBg, QuestionBg template.CSS
}

type htmlBorders struct {
	Page, Header, Question template.CSS
}

type htmlPage struct {
	Lang          string
	Title         string
	Labels        Labels
	Design        exam.DesignSettings
	Colors        htmlColors
	Borders       htmlBorders
	QuestionCount int

	Watermark  template.URL
	WM         exam.WatermarkSettings
	GlobalWM   bool
	GridCells  []int
	GridCols   int
	GridRows   int
	LogoLeft   template.URL
	LogoRight  template.URL

	Items        []htmlItem
	ShowAnswers  bool
	Answers      []htmlAnswer
	AnswerTables [][]htmlAnswer
}

// HTML writes a standalone page. Math is typeset in the browser by
// MathJax; diagrams are embedded as sanitised inline SVG.
func (r *Renderer) HTML(w io.Writer, doc *exam.Document) error {
	page := r.htmlPage(doc)
	if err := examTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func (r *Renderer) htmlPage(doc *exam.Document) htmlPage {
	d := doc.Design
	l := r.opts.Labels
	page := htmlPage{
		Lang:          "en",
		Title:         doc.Title,
		Labels:        l,
		Design:        d,
		QuestionCount: len(doc.Questions()),
		WM:            doc.WatermarkSettings,
		ShowAnswers:   r.opts.IncludeAnswers,
		Colors: htmlColors{
			Title:      template.CSS(cssColor(r.opts.TitleColor, "#1e3a8a")),
			Question:   template.CSS(cssColor(r.opts.QuestionColor, "#111827")),
			Option:     template.CSS(cssColor(r.opts.OptionColor, "#1f2937")),
			PageBg:     template.CSS(cssColor(d.PageBgColor, "#ffffff")),
			HeaderBg:   template.CSS(cssColor(d.HeaderBgColor, "transparent")),
			QuestionBg: template.CSS(cssColor(d.QuestionBgColor, "#ffffff")),
		},
		Borders: htmlBorders{
			Page:     borderCSS(d.PageBorder, d.PageBorderColor, d.PageBorderWidth, 0),
			Header:   borderCSS(d.HeaderBorder, d.HeaderBorderColor, d.HeaderBorderWidth, 0),
			Question: borderCSS(d.QuestionBorder, d.QuestionBorderColor, d.QuestionBorderWidth, d.QuestionBorderRadius),
		},
		LogoLeft:  template.URL(d.HeaderImageLeft),
		LogoRight: template.URL(d.HeaderImageRight),
	}
	if l.Dir == "rtl" {
		page.Lang = "ar"
	}

	ws := doc.WatermarkSettings
	if doc.Watermark != "" {
		page.Watermark = template.URL(doc.Watermark)
		switch ws.Placement {
		case exam.PlacementCenter:
			page.GlobalWM = true
			page.GridCells = make([]int, 1)
		case exam.PlacementGrid:
			page.GlobalWM = true
			page.GridCols, page.GridRows = ws.GridDims()
			page.GridCells = make([]int, page.GridCols*page.GridRows)
		}
	}

	n := 0
	for _, it := range doc.Items {
		switch v := it.(type) {
		case *exam.TextBlock:
			page.Items = append(page.Items, htmlItem{ID: v.ID, Text: true, Prompt: v.Content})
		case *exam.Question:
			n++
			item := htmlItem{ID: v.ID, Number: n, Prompt: v.Prompt, Description: v.VisualDescription}
			for i, opt := range v.Options {
				item.Options = append(item.Options, htmlOption{Label: l.Options[i], Text: opt})
			}
			if v.Image != nil && v.Image.Source != "" {
				item.Image = template.URL(v.Image.Source)
				item.ImageWidth, item.ImageHeight = v.Image.Width, v.Image.Height
			}
			if v.Diagram != "" {
				svg, err := sanitizeSVG(v.Diagram)
				if err != nil {
					logger.L().Warn("dropping diagram", "question", v.ID, "error", err)
				}
				item.Diagram = svg
			}
			if doc.Watermark != "" && ws.Placement == exam.PlacementQuestion {
				item.Watermarks = make([]int, max(ws.PerQuestion, 1))
			}
			page.Items = append(page.Items, item)
			page.Answers = append(page.Answers, htmlAnswer{
				Number:      n,
				Label:       l.Options[v.Correct],
				Explanation: v.Explanation,
			})
		}
	}
	for i := 0; i < len(page.Answers); i += answerTableSize {
		page.AnswerTables = append(page.AnswerTables, page.Answers[i:min(i+answerTableSize, len(page.Answers))])
	}
	return page
}

// borderCSS renders one of the shared border styles as CSS declarations.
func borderCSS(style exam.BorderStyle, colour string, width, radius float64) template.CSS {
	c := cssColor(colour, "#000000")
	w := math.Max(width, 1)
	var b strings.Builder
	switch style {
	case exam.BorderSimple:
		fmt.Fprintf(&b, "border: %gpx solid %s;", w, c)
	case exam.BorderDashed:
		fmt.Fprintf(&b, "border: %gpx dashed %s;", w, c)
	case exam.BorderDouble:
		fmt.Fprintf(&b, "border: %gpx double %s;", math.Max(w*2, 3), c)
	case exam.BorderFrame:
		fmt.Fprintf(&b, "border: %gpx solid %s; outline: 1px solid %s; outline-offset: -%gpx;", w*2, c, c, w*3)
	case exam.BorderModernRight:
		fmt.Fprintf(&b, "border: 1px solid #e5e7eb; border-right: %gpx solid %s;", w*2, c)
	case exam.BorderModernBottom:
		fmt.Fprintf(&b, "border-bottom: %gpx solid %s;", w, c)
	default:
		b.WriteString("border: none;")
	}
	if radius > 0 {
		fmt.Fprintf(&b, " border-radius: %gpx;", radius)
	}
	return template.CSS(b.String())
}
