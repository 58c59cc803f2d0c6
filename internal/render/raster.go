package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
)

var (
	optionFill   = color.NRGBA{R: 0xf9, G: 0xfa, B: 0xfb, A: 0xff}
	optionBorder = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	answerColor  = color.NRGBA{R: 0xb9, G: 0x1c, B: 0x1c, A: 0xff}
	mutedColor   = color.NRGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
)

// Renderer exports documents with one set of options. It caches fonts
// and decoded images and is not safe for concurrent use.
type Renderer struct {
	opts   Options
	ts     *typesetter
	images *imageCache
}

// New validates opts and loads the fonts.
func New(opts Options) (*Renderer, error) {
	if opts.Layout == (layout.Config{}) {
		opts.Layout = layout.DefaultConfig()
	}
	if opts.Labels.Options == ([exam.OptionCount]string{}) {
		opts.Labels = EnglishLabels()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	fs, err := loadFonts(opts.FontPath)
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, ts: newTypesetter(fs), images: newImageCache()}, nil
}

// Options returns the effective options.
func (r *Renderer) Options() Options { return r.opts }

// PNG writes the whole paper as one tall image.
func (r *Renderer) PNG(w io.Writer, doc *exam.Document) error {
	im, _, err := r.Rasterize(doc)
	if err != nil {
		return err
	}
	if err := png.Encode(w, im); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Rasterize lays doc out and draws every page stacked vertically.
func (r *Renderer) Rasterize(doc *exam.Document) (image.Image, *Plan, error) {
	plan, err := r.Plan(doc)
	if err != nil {
		return nil, nil, err
	}
	k := r.opts.scale()
	dc := gg.NewContext(int(math.Ceil(plan.Width*k)), int(math.Ceil(plan.Height*k)))
	dc.Scale(k, k)

	p := &painter{
		r:    r,
		dc:   dc,
		doc:  doc,
		plan: plan,
		g:    newGeometry(doc.Design),
	}
	p.background()

	wm, hasWM := r.images.get(doc.Watermark)
	overlay := doc.WatermarkSettings.Overlay
	if hasWM && !overlay {
		p.watermarks(wm)
	}
	for _, b := range plan.Blocks {
		p.block(b)
	}
	if hasWM && overlay {
		p.watermarks(wm)
	}
	return dc.Image(), plan, nil
}

type painter struct {
	r    *Renderer
	dc   *gg.Context
	doc  *exam.Document
	plan *Plan
	g    geometry
}

func (p *painter) color(s string, fallback color.Color) color.Color {
	return parseColor(s, fallback)
}

func (p *painter) background() {
	d := p.doc.Design
	cfg := p.r.opts.Layout
	p.dc.SetColor(p.color(d.PageBgColor, color.White))
	p.dc.DrawRectangle(0, 0, p.plan.Width, p.plan.Height)
	p.dc.Fill()

	bg, hasBG := p.r.images.get(d.PageBgImage)
	var scaled *image.RGBA
	if hasBG {
		scaled = scaleImage(bg, int(p.plan.Width), int(cfg.PageHeight))
	}
	m := d.PageMargin
	for page := 0; page < p.plan.Pages; page++ {
		top := float64(page) * cfg.PageHeight
		if scaled != nil {
			p.dc.DrawImage(scaled, 0, int(top))
		}
		drawBorder(p.dc, rect{m, top + m, p.plan.Width - 2*m, cfg.PageHeight - 2*m},
			d.PageBorder, p.color(d.PageBorderColor, color.Black), d.PageBorderWidth, 0)
	}
}

func (p *painter) block(b Block) {
	switch b.Kind {
	case BlockHeader:
		p.header(b)
	case BlockInstruction:
		p.text(p.r.ts.st.heading, p.r.opts.Labels.Instruction, p.g.left, b.Top, p.g.inner, color.Black, false)
	case BlockQuestion:
		if q, err := p.doc.FindQuestion(b.ItemID); err == nil {
			p.question(b, q)
		}
	case BlockText:
		if it, ok := p.doc.Find(b.ItemID); ok {
			tb := it.(*exam.TextBlock)
			p.text(p.r.ts.st.heading, tb.Content, p.g.left+textBlockPad, b.Top+textBlockPad,
				p.g.inner-2*textBlockPad, p.color(p.r.opts.QuestionColor, color.Black), true)
		}
	case BlockAnswerTitle:
		p.text(p.r.ts.st.title, p.r.opts.Labels.AnswerKey, p.g.left, b.Top, p.g.inner, answerColor, false)
		p.dc.SetColor(answerColor)
		p.dc.SetLineWidth(2)
		p.dc.DrawLine(p.g.left, b.Bottom()-2, p.g.left+p.g.inner, b.Bottom()-2)
		p.dc.Stroke()
	case BlockAnswer:
		if q, err := p.doc.FindQuestion(b.ItemID); err == nil {
			p.answer(b, q)
		}
	case BlockClosing:
		p.closing(b)
	}
}

// text draws s wrapped to width starting at y and returns the y below it.
func (p *painter) text(st style, s string, x, y, width float64, c color.Color, center bool) float64 {
	lines := p.r.ts.wrap(st, s, width)
	p.dc.SetFontFace(st.face)
	p.dc.SetColor(c)
	glyph := st.lineHeight / lineSpacing
	for i, line := range lines {
		ly := y + float64(i)*st.lineHeight + (st.lineHeight-glyph)/2
		if center {
			p.dc.DrawStringAnchored(line, x+width/2, ly, 0.5, 1)
		} else {
			p.dc.DrawStringAnchored(line, x, ly, 0, 1)
		}
	}
	return y + float64(len(lines))*st.lineHeight
}

func (p *painter) header(b Block) {
	d := p.doc.Design
	st := p.r.ts.st
	box := rect{p.g.left, b.Top, p.g.inner, b.Height}
	fillRect(p.dc, box, p.color(d.HeaderBgColor, color.Transparent), 0)
	drawBorder(p.dc, box, d.HeaderBorder, p.color(d.HeaderBorderColor, color.Black), d.HeaderBorderWidth, 0)

	pad := d.HeaderPadding
	y := b.Top + pad
	var logo float64
	if im, ok := p.r.images.get(d.HeaderImageLeft); ok {
		w, h := fit(float64(im.Bounds().Dx()), float64(im.Bounds().Dy()), d.HeaderImageLeftWidth, 120)
		p.dc.DrawImage(scaleImage(im, int(w), int(h)), int(box.x+pad), int(y))
		logo = math.Max(logo, h)
	}
	if im, ok := p.r.images.get(d.HeaderImageRight); ok {
		w, h := fit(float64(im.Bounds().Dx()), float64(im.Bounds().Dy()), d.HeaderImageRightWidth, 120)
		p.dc.DrawImage(scaleImage(im, int(w), int(h)), int(box.x+box.w-pad-w), int(y))
		logo = math.Max(logo, h)
	}
	y += logo

	y = p.text(st.title, p.doc.Title, box.x+pad, y, box.w-2*pad, p.color(p.r.opts.TitleColor, color.Black), true)
	y += 12

	info := rect{box.x + pad, y, box.w - 2*pad, st.small.lineHeight + 2*optionPadding}
	fillRect(p.dc, info, color.White, 4)
	drawBorder(p.dc, info, exam.BorderSimple, optionBorder, 1, 4)

	l := p.r.opts.Labels
	fields := []string{
		l.Name + ": ....................",
		l.Group + ": ..........",
		l.Date + ": ..........",
		fmt.Sprintf("%s: ..... / %d", l.Score, len(p.doc.Questions())),
	}
	cell := (info.w - 2*optionPadding) / float64(len(fields))
	for i, f := range fields {
		p.text(st.small, f, info.x+optionPadding+float64(i)*cell, info.y+optionPadding, cell, color.Black, false)
	}
}

func (p *painter) question(b Block, q *exam.Question) {
	d := p.doc.Design
	st := p.r.ts.st
	box := rect{p.g.left, b.Top, p.g.inner, b.Height}
	fillRect(p.dc, box, p.color(d.QuestionBgColor, color.White), d.QuestionBorderRadius)
	drawBorder(p.dc, box, d.QuestionBorder, p.color(d.QuestionBorderColor, optionBorder), d.QuestionBorderWidth, d.QuestionBorderRadius)

	f := p.r.questionFrame(p.g, d)
	pad := d.QuestionPadding
	p.text(st.heading, fmt.Sprintf("%d.", b.Number), box.x+pad, box.y+pad, optionLetter, p.color(p.r.opts.TitleColor, color.Black), false)

	y := p.text(st.body, q.Prompt, f.x, box.y+pad, f.width, p.color(p.r.opts.QuestionColor, color.Black), false)

	optColor := p.color(p.r.opts.OptionColor, color.Black)
	textW := f.optionW - 2*optionPadding - optionLetter
	for row := 0; row < exam.OptionCount/2; row++ {
		y += optionGap
		a := p.r.ts.height(st.option, q.Options[2*row], textW)
		c := p.r.ts.height(st.option, q.Options[2*row+1], textW)
		rowH := math.Max(math.Max(a, c), st.option.lineHeight) + 2*optionPadding
		for col := 0; col < 2; col++ {
			i := 2*row + col
			cell := rect{f.x + float64(col)*(f.optionW+optionGap), y, f.optionW, rowH}
			fillRect(p.dc, cell, optionFill, 6)
			drawBorder(p.dc, cell, exam.BorderSimple, optionBorder, 1, 6)
			p.text(st.optionBold, "["+p.r.opts.Labels.Options[i]+"]", cell.x+optionPadding, y+optionPadding, optionLetter, p.color(p.r.opts.TitleColor, color.Black), false)
			p.text(st.option, q.Options[i], cell.x+optionPadding+optionLetter, y+optionPadding, textW, optColor, false)
		}
		y += rowH
	}

	if p.r.visualHeight(q, f.width) == 0 {
		return
	}
	y += visualGap
	if w, h := p.r.visualSize(q, f.width); h > 0 {
		im, _ := p.r.images.get(q.Image.Source)
		p.dc.DrawImage(scaleImage(im, int(w), int(h)), int(f.x), int(y))
		y += h + visualGap
	}
	if q.Diagram != "" {
		p.diagram(rect{f.x, y, math.Min(f.width, 360), diagramHeight}, q)
	}
}

// diagram draws a labelled frame in place of SVG markup, which the raster
// backend cannot draw. The HTML export embeds the SVG itself.
func (p *painter) diagram(box rect, q *exam.Question) {
	fillRect(p.dc, box, optionFill, 8)
	drawBorder(p.dc, box, exam.BorderDashed, optionBorder, 1, 8)
	desc := q.VisualDescription
	if desc == "" {
		desc = "diagram"
	}
	p.text(p.r.ts.st.small, desc, box.x+12, box.y+12, box.w-24, mutedColor, true)
}

func (p *painter) answer(b Block, q *exam.Question) {
	st := p.r.ts.st
	l := p.r.opts.Labels
	head := fmt.Sprintf("%s%d: [%s]", l.Question, b.Number, l.Options[q.Correct])
	y := p.text(st.heading, head, p.g.left, b.Top, p.g.inner, answerColor, false)
	p.text(st.body, q.Explanation, p.g.left+optionLetter, y, p.g.inner-2*optionLetter, color.Black, false)
}

func (p *painter) closing(b Block) {
	st := p.r.ts.st.closing
	c := p.color(p.doc.Design.PageBorderColor, color.Black)
	msg := p.r.opts.Labels.Closing
	p.text(st, msg, p.g.left, b.Top, p.g.inner, c, true)

	w := p.r.ts.width(st, plainText(msg))
	mid := b.Top + st.lineHeight/2
	cx := p.g.left + p.g.inner/2
	p.dc.SetColor(c)
	p.dc.SetLineWidth(1)
	p.dc.DrawLine(cx-w/2-60, mid, cx-w/2-12, mid)
	p.dc.DrawLine(cx+w/2+12, mid, cx+w/2+60, mid)
	p.dc.Stroke()
}
