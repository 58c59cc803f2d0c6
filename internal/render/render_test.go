package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
)

func sampleExam(t *testing.T, questions int) *exam.Document {
	t.Helper()
	doc := exam.New("Newton's laws")
	doc = doc.AddTextBlock("Part one")
	items := make([]exam.Item, 0, questions)
	for i := 0; i < questions; i++ {
		items = append(items, exam.NewQuestion(
			fmt.Sprintf("A %d kg cart is pushed with a constant force. Find the acceleration \\(a = \\frac{F}{m}\\) when the force doubles and friction is ignored.", i+1),
			[exam.OptionCount]string{"1 m/s^2", "2 m/s^2", "3 m/s^2", "4 m/s^2"},
			i%exam.OptionCount,
			"\\(F = ma\\)",
		))
	}
	return doc.AppendItems(items...)
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	im := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		im.Set(x, 0, color.NRGBA{R: 0xff, A: 0xff})
		im.Set(x, 1, color.NRGBA{B: 0xff, A: 0xff})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, im))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newRenderer(t *testing.T, answers bool) *Renderer {
	t.Helper()
	opts := DefaultOptions()
	opts.IncludeAnswers = answers
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\(F = ma\)`, "F = ma"},
		{`\(\frac{1}{2} m v^{2}\)`, "(1)/(2) m v^2"},
		{`<b>Speed</b> in \(\text{m/s}\)`, "Speed in m/s"},
		{`\(\alpha \times 2\)`, "α × 2"},
		{`\(\Delta x \leq 3\)`, "Δ x ≤ 3"},
		{`\(v_{0}\)`, "v_0"},
		{"  plain   text ", "plain text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, plainText(tt.in), tt.in)
	}
}

func TestParseColor(t *testing.T) {
	fallback := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	rgba := func(c color.Color) [4]uint32 {
		r, g, b, a := c.RGBA()
		return [4]uint32{r, g, b, a}
	}

	assert.Equal(t, rgba(color.NRGBA{R: 0xff, A: 0xff}), rgba(parseColor("#ff0000", fallback)))
	assert.Equal(t, rgba(color.NRGBA{R: 0xff, A: 0xff}), rgba(parseColor("#F00", fallback)))
	assert.Equal(t, rgba(color.NRGBA{G: 128, B: 255, A: 255}), rgba(parseColor("rgb(0, 128, 255)", fallback)))
	assert.Equal(t, rgba(color.NRGBA{R: 255, A: 0}), rgba(parseColor("rgba(255,0,0,0)", fallback)))
	assert.Equal(t, rgba(color.Transparent), rgba(parseColor("transparent", fallback)))

	for _, bad := range []string{"", "red", "#12", "#gggggg", "rgb(1,2)", "rgb(300,0,0)", "rgba(0,0,0,2)"} {
		assert.Equal(t, rgba(fallback), rgba(parseColor(bad, fallback)), bad)
	}

	assert.Equal(t, "#abc", cssColor(" #abc ", "#000000"))
	assert.Equal(t, "#000000", cssColor("url(x)", "#000000"))
}

func TestFit(t *testing.T) {
	w, h := fit(400, 200, 200, 0)
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 100.0, h)

	w, h = fit(100, 50, 400, 100)
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 100.0, h)

	w, h = fit(30, 40, 0, 0)
	assert.Equal(t, 30.0, w)
	assert.Equal(t, 40.0, h)

	w, h = fit(0, 40, 100, 100)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"png": FormatPNG, ".PDF": FormatPDF, "html": FormatHTML, "htm": FormatHTML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Forces", "Forces.pdf"},
		{"  Waves and Optics ", "Waves and Optics.pdf"},
		{"", "exam.pdf"},
		{"..", "exam.pdf"},
		{"../../etc/passwd", "etc-passwd.pdf"},
		{"/tmp/out", "tmp-out.pdf"},
		{`Unit 3\Kinematics`, "Unit 3-Kinematics.pdf"},
		{"C:evil", "C-evil.pdf"},
		{"line\nbreak", "linebreak.pdf"},
		{"الحركة", "الحركة.pdf"},
	}
	for _, tt := range tests {
		got := FileName(tt.title, FormatPDF)
		assert.Equal(t, tt.want, got, tt.title)
		assert.Equal(t, got, filepath.Base(got), tt.title)
	}
}

func TestLabelsFor(t *testing.T) {
	l, err := LabelsFor("ar")
	require.NoError(t, err)
	assert.Equal(t, "rtl", l.Dir)
	assert.Equal(t, "اختر الإجابة الصحيحة:", l.Instruction)

	l, err = LabelsFor("")
	require.NoError(t, err)
	assert.Equal(t, "ltr", l.Dir)

	_, err = LabelsFor("fr")
	assert.Error(t, err)
}

func TestNewRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Scale = 5
	_, err := New(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Layout.PageHeight = -1
	_, err = New(opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.FontPath = "/does/not/exist.ttf"
	_, err = New(opts)
	assert.Error(t, err)
}

func TestPlanKeepsBlocksOnOnePage(t *testing.T) {
	r := newRenderer(t, true)
	doc := sampleExam(t, 24)
	cfg := r.Options().Layout

	plan, err := r.Plan(doc)
	require.NoError(t, err)

	assert.Greater(t, plan.Pages, 1)
	assert.Equal(t, float64(plan.Pages)*cfg.PageHeight, plan.Height)

	last := plan.Blocks[len(plan.Blocks)-1]
	assert.Equal(t, BlockClosing, last.Kind)
	assert.LessOrEqual(t, last.Bottom()+cfg.ClosingPadding, plan.Height)

	answers := 0
	prev := 0.0
	for _, b := range plan.Blocks {
		assert.GreaterOrEqual(t, b.Top, prev, "block %d overlaps its predecessor", b.ID)
		prev = b.Bottom()
		if b.Height+cfg.PagePadding < cfg.PageHeight {
			assert.Equal(t, layout.PageOf(b.Top, cfg), layout.PageOf(b.Bottom(), cfg),
				"block %d straddles a page break", b.ID)
		}
		if b.Kind == BlockAnswer {
			answers++
		}
	}
	assert.Equal(t, 24, answers)
}

func TestPlanNumbersQuestionsOnly(t *testing.T) {
	r := newRenderer(t, false)
	plan, err := r.Plan(sampleExam(t, 3))
	require.NoError(t, err)

	var numbers []int
	for _, b := range plan.Blocks {
		switch b.Kind {
		case BlockQuestion:
			numbers = append(numbers, b.Number)
		case BlockText:
			assert.Zero(t, b.Number)
		case BlockAnswer, BlockAnswerTitle:
			t.Fatalf("answer block %d without IncludeAnswers", b.ID)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, numbers)
	assert.Equal(t, 0, plan.PageOf(headerID, r.Options().Layout))
	assert.Equal(t, -1, plan.PageOf(12345, r.Options().Layout))
}

func TestWatermarkSpots(t *testing.T) {
	r := newRenderer(t, false)
	doc := sampleExam(t, 12)
	cfg := r.Options().Layout
	plan, err := r.Plan(doc)
	require.NoError(t, err)
	g := newGeometry(doc.Design)

	ws := exam.DefaultWatermarkSettings()
	ws.Placement = exam.PlacementCenter
	assert.Len(t, watermarkSpots(plan, ws, g, cfg), plan.Pages)

	ws.Placement = exam.PlacementGrid
	ws.GridSize = "2x3"
	spots := watermarkSpots(plan, ws, g, cfg)
	assert.Len(t, spots, 6*plan.Pages)
	for _, s := range spots {
		assert.LessOrEqual(t, s.maxH, float64(gridMaxH))
	}

	ws.Placement = exam.PlacementQuestion
	ws.PerQuestion = 4
	spots = watermarkSpots(plan, ws, g, cfg)
	assert.Len(t, spots, 4*12)
	for _, s := range spots {
		assert.LessOrEqual(t, s.maxW, float64(questionWMMaxW))
		assert.LessOrEqual(t, s.maxH, float64(questionWMMaxH))
	}
}

func TestPNG(t *testing.T) {
	r := newRenderer(t, true)
	doc := sampleExam(t, 6)
	doc.Watermark = pngDataURL(t)
	doc.Design.PageBorder = exam.BorderDouble
	doc.Design.QuestionBorder = exam.BorderModernRight
	doc, err := doc.UpdateQuestion(doc.Questions()[0].ID, func(q *exam.Question) {
		q.Image = &exam.ImageRef{Source: pngDataURL(t), Width: 120}
		q.Diagram = `<svg viewBox="0 0 10 10"><circle r="4"/></svg>`
		q.VisualDescription = "a cart on a track"
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.PNG(&buf, doc))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, PaperWidth, cfg.Width)
	assert.Zero(t, cfg.Height%int(r.Options().Layout.PageHeight))
}

func TestRasterizeScale(t *testing.T) {
	opts := DefaultOptions()
	opts.Scale = 2
	r, err := New(opts)
	require.NoError(t, err)

	im, plan, err := r.Rasterize(sampleExam(t, 1))
	require.NoError(t, err)
	assert.Equal(t, 2*PaperWidth, im.Bounds().Dx())
	assert.Equal(t, int(2*plan.Height), im.Bounds().Dy())
}

func TestPDF(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = FormatPDF
	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, sampleExam(t, 20), opts))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := newRenderer(t, false)
	err := r.PDF(ctx, &bytes.Buffer{}, sampleExam(t, 2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTML(t *testing.T) {
	r := newRenderer(t, true)
	doc := sampleExam(t, 12)
	doc.Title = "Forces & motion"
	doc.Watermark = pngDataURL(t)
	doc.WatermarkSettings.Placement = exam.PlacementGrid
	doc.WatermarkSettings.GridSize = "2x2"
	doc, err := doc.UpdateQuestion(doc.Questions()[0].ID, func(q *exam.Question) {
		q.Diagram = `<svg onload="alert(1)"><script>alert(2)</script><circle r="5" onclick="x()"/></svg>`
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.HTML(&buf, doc))
	out := buf.String()

	assert.Contains(t, out, "<h1>Forces &amp; motion</h1>")
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "<circle")
	assert.NotContains(t, out, "alert(")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.Contains(t, out, "Answer key and explanations")
	assert.Equal(t, 2, strings.Count(out, "<table>"))
	assert.Contains(t, out, `<div class="wm grid">`)
	assert.Equal(t, 4, strings.Count(out, `<img src="data:image/png`))
	assert.Contains(t, out, "/ 12")
}

func TestHTMLArabic(t *testing.T) {
	opts := DefaultOptions()
	opts.Labels = ArabicLabels()
	opts.Format = FormatHTML
	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), &buf, sampleExam(t, 1), opts))
	assert.Contains(t, buf.String(), `<html lang="ar" dir="rtl">`)
	assert.Contains(t, buf.String(), "مع تمنياتي لكم بالتوفيق والنجاح")
	assert.NotContains(t, buf.String(), `class="answers"`)
}

func TestSanitizeSVG(t *testing.T) {
	out, err := sanitizeSVG(`<svg><a href="javascript:alert(1)"><text>hi</text></a><foreignObject><div>x</div></foreignObject></svg>`)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "javascript")
	assert.NotContains(t, strings.ToLower(string(out)), "foreignobject")
	assert.Contains(t, string(out), "hi")

	_, err = sanitizeSVG(`<div>no diagram</div>`)
	assert.Error(t, err)
	_, err = sanitizeSVG("")
	assert.Error(t, err)
}

func TestBorderCSS(t *testing.T) {
	assert.Equal(t, "border: none;", string(borderCSS(exam.BorderNone, "#000", 2, 0)))
	assert.Equal(t, "border: 2px dashed #123456; border-radius: 8px;",
		string(borderCSS(exam.BorderDashed, "#123456", 2, 8)))
	assert.Contains(t, string(borderCSS(exam.BorderSimple, "expression(1)", 1, 0)), "#000000")
}
