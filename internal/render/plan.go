package render

import (
	"math"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
)

// BlockKind identifies what a laid-out block draws.
type BlockKind int

const (
	BlockHeader BlockKind = iota
	BlockInstruction
	BlockQuestion
	BlockText
	BlockAnswerTitle
	BlockAnswer
	BlockClosing
)

// Fixed blocks use negative layout ids so they never collide with item ids.
const (
	headerID      = -1
	instructionID = -2
	answerTitleID = -3
	closingID     = -4
	answerIDBase  = -1000
)

// Spacing between fixed blocks in document pixels.
const (
	instructionGap = 12
	answerGap      = 48
	answerRowGap   = 6
	closingGap     = 48
	optionGap      = 10
	optionPadding  = 6
	visualGap      = 12
	diagramHeight  = 180
	defaultVisualW = 200
	maxVisualH     = 400
	textBlockPad   = 16
)

// Block is one vertically placed element of the paper.
type Block struct {
	ID   int
	Kind BlockKind

	// ItemID is the document item drawn by the block, 0 for fixed blocks.
	ItemID int

	// Number is the printed question number, 0 for unnumbered blocks.
	Number int

	// Top and Height are in document pixels after pagination. Margin is
	// the page-break shift applied above the block.
	Top    float64
	Height float64
	Margin float64
}

// Bottom returns Top+Height.
func (b Block) Bottom() float64 { return b.Top + b.Height }

// Plan is the paginated layout of one exam.
type Plan struct {
	Width  float64
	Height float64
	Pages  int
	Blocks []Block
	Shifts []layout.Shift
}

// PageOf returns the 0-based page of block id, or -1.
func (p *Plan) PageOf(id int, cfg layout.Config) int {
	for _, b := range p.Blocks {
		if b.ID == id {
			return layout.PageOf(b.Top, cfg)
		}
	}
	return -1
}

// geometry is the horizontal frame shared by every block.
type geometry struct {
	width float64
	left  float64
	inner float64
	top   float64
}

func newGeometry(d exam.DesignSettings) geometry {
	inset := d.PageMargin + d.PageBorderWidth + d.PagePadding
	return geometry{
		width: PaperWidth,
		left:  inset,
		inner: PaperWidth - 2*inset,
		top:   inset,
	}
}

// questionFrame is the text column inside a question box.
type questionFrame struct {
	x, width, optionW float64
}

func (r *Renderer) questionFrame(g geometry, d exam.DesignSettings) questionFrame {
	pad := d.QuestionPadding
	x := g.left + pad + optionLetter
	w := g.inner - 2*pad - optionLetter
	return questionFrame{x: x, width: w, optionW: (w - optionGap) / 2}
}

// Plan lays doc out and paginates it.
func (r *Renderer) Plan(doc *exam.Document) (*Plan, error) {
	g := newGeometry(doc.Design)
	flow := layout.NewFlow(g.top)
	var blocks []Block

	add := func(b Block, gap float64) error {
		if err := flow.Add(b.ID, gap, b.Height); err != nil {
			return err
		}
		blocks = append(blocks, b)
		return nil
	}

	if err := add(Block{ID: headerID, Kind: BlockHeader, Height: r.headerHeight(doc, g)}, 0); err != nil {
		return nil, err
	}
	if err := add(Block{
		ID:     instructionID,
		Kind:   BlockInstruction,
		Height: r.ts.height(r.ts.st.heading, r.opts.Labels.Instruction, g.inner),
	}, doc.Design.HeaderMargin); err != nil {
		return nil, err
	}

	gap := float64(instructionGap)
	n := 0
	for _, it := range doc.Items {
		b := Block{ID: it.ItemID(), ItemID: it.ItemID()}
		switch v := it.(type) {
		case *exam.Question:
			n++
			b.Kind, b.Number = BlockQuestion, n
			b.Height = r.questionHeight(v, g, doc.Design)
		case *exam.TextBlock:
			b.Kind = BlockText
			b.Height = r.ts.height(r.ts.st.heading, v.Content, g.inner-2*textBlockPad) + 2*textBlockPad
		}
		if err := add(b, gap); err != nil {
			return nil, err
		}
		gap = doc.Design.QuestionMargin
	}

	if r.opts.IncludeAnswers {
		if err := add(Block{
			ID:     answerTitleID,
			Kind:   BlockAnswerTitle,
			Height: r.ts.st.title.lineHeight + 8,
		}, answerGap); err != nil {
			return nil, err
		}
		n := 0
		for _, q := range doc.Questions() {
			n++
			if err := add(Block{
				ID:     answerIDBase - q.ID,
				Kind:   BlockAnswer,
				ItemID: q.ID,
				Number: n,
				Height: r.answerHeight(q, g),
			}, answerRowGap); err != nil {
				return nil, err
			}
		}
	}

	if err := add(Block{ID: closingID, Kind: BlockClosing, Height: r.ts.st.closing.lineHeight}, closingGap); err != nil {
		return nil, err
	}

	shifts, err := flow.Paginate(r.opts.Layout)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		ext, err := flow.Measure(blocks[i].ID)
		if err != nil {
			return nil, err
		}
		blocks[i].Top = ext.Top
		blocks[i].Margin = flow.Margin(blocks[i].ID)
	}

	closing := blocks[len(blocks)-1]
	pages, height := layout.FlowHeight(closing.Bottom(), r.opts.Layout)
	return &Plan{
		Width:  g.width,
		Height: height,
		Pages:  pages,
		Blocks: blocks,
		Shifts: shifts,
	}, nil
}

func (r *Renderer) headerHeight(doc *exam.Document, g geometry) float64 {
	d := doc.Design
	h := 2*d.HeaderPadding + r.ts.height(r.ts.st.title, doc.Title, g.inner-2*d.HeaderPadding)
	h += 12 + r.ts.st.small.lineHeight + 2*optionPadding

	var logo float64
	for _, side := range []struct {
		src string
		w   float64
	}{
		{d.HeaderImageLeft, d.HeaderImageLeftWidth},
		{d.HeaderImageRight, d.HeaderImageRightWidth},
	} {
		if im, ok := r.images.get(side.src); ok {
			_, ih := fit(float64(im.Bounds().Dx()), float64(im.Bounds().Dy()), side.w, 120)
			logo = math.Max(logo, ih)
		}
	}
	return h + logo
}

func (r *Renderer) questionHeight(q *exam.Question, g geometry, d exam.DesignSettings) float64 {
	f := r.questionFrame(g, d)
	st := r.ts.st
	h := 2*d.QuestionPadding + r.ts.height(st.body, q.Prompt, f.width)

	textW := f.optionW - 2*optionPadding - optionLetter
	for row := 0; row < exam.OptionCount/2; row++ {
		a := r.ts.height(st.option, q.Options[2*row], textW)
		b := r.ts.height(st.option, q.Options[2*row+1], textW)
		h += optionGap + math.Max(math.Max(a, b), st.option.lineHeight) + 2*optionPadding
	}
	if v := r.visualHeight(q, f.width); v > 0 {
		h += visualGap + v
	}
	return h
}

// visualSize returns the drawn size of the question image, or zeros.
func (r *Renderer) visualSize(q *exam.Question, maxW float64) (float64, float64) {
	if q.Image == nil {
		return 0, 0
	}
	im, ok := r.images.get(q.Image.Source)
	if !ok {
		return 0, 0
	}
	iw, ih := float64(im.Bounds().Dx()), float64(im.Bounds().Dy())
	w := float64(q.Image.Width)
	if w <= 0 {
		w = defaultVisualW
	}
	w = math.Min(w, maxW)
	h := float64(q.Image.Height)
	if h <= 0 {
		h = math.Min(w*ih/iw, maxVisualH)
	}
	return fit(iw, ih, w, h)
}

func (r *Renderer) visualHeight(q *exam.Question, maxW float64) float64 {
	_, h := r.visualSize(q, maxW)
	if q.Diagram != "" {
		if h > 0 {
			h += visualGap
		}
		h += diagramHeight
	}
	return h
}

func (r *Renderer) answerHeight(q *exam.Question, g geometry) float64 {
	st := r.ts.st
	h := r.ts.height(st.body, q.Explanation, g.inner-optionLetter*2)
	return st.heading.lineHeight + h
}
