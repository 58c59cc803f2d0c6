package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/sameane/physexam/internal/exam"
	"github.com/sameane/physexam/internal/layout"
)

// spot is where one watermark copy goes: its centre and the box it must
// fit in before WatermarkSettings.Scale is applied.
type spot struct {
	cx, cy     float64
	maxW, maxH float64
}

// Size caps of a single copy in grid and per-question placement.
const (
	gridCellPad    = 32
	gridMaxH       = 150
	questionWMMaxW = 150
	questionWMMaxH = 120
	maxPerQuestion = 3
)

func watermarkSpots(plan *Plan, ws exam.WatermarkSettings, g geometry, cfg layout.Config) []spot {
	var out []spot
	pageInnerH := cfg.PageHeight - 2*g.top

	switch ws.Placement {
	case exam.PlacementCenter:
		for page := 0; page < plan.Pages; page++ {
			out = append(out, spot{
				cx:   g.width / 2,
				cy:   float64(page)*cfg.PageHeight + cfg.PageHeight/2,
				maxW: g.inner * 0.8,
				maxH: pageInnerH * 0.8,
			})
		}

	case exam.PlacementGrid:
		cols, rows := ws.GridDims()
		for page := 0; page < plan.Pages; page++ {
			area := rect{g.left, float64(page)*cfg.PageHeight + g.top, g.inner, pageInnerH}.inset(gridCellPad)
			out = append(out, cells(area, cols, rows, area.w/float64(cols)-gridCellPad,
				math.Min(area.h/float64(rows)-gridCellPad, gridMaxH))...)
		}

	case exam.PlacementQuestion:
		n := max(ws.PerQuestion, 1)
		cols := min(n, maxPerQuestion)
		rows := (n + cols - 1) / cols
		for _, b := range plan.Blocks {
			if b.Kind != BlockQuestion {
				continue
			}
			area := rect{g.left, b.Top, g.inner, b.Height}
			cw, ch := area.w/float64(cols), area.h/float64(rows)
			all := cells(area, cols, rows, math.Min(cw-8, questionWMMaxW), math.Min(ch-8, questionWMMaxH))
			out = append(out, all[:n]...)
		}
	}
	return out
}

// cells splits area into a cols x rows grid and returns the cell centres.
func cells(area rect, cols, rows int, maxW, maxH float64) []spot {
	cw, ch := area.w/float64(cols), area.h/float64(rows)
	out := make([]spot, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, spot{
				cx:   area.x + cw*(float64(c)+0.5),
				cy:   area.y + ch*(float64(r)+0.5),
				maxW: math.Max(maxW, 1),
				maxH: math.Max(maxH, 1),
			})
		}
	}
	return out
}

func (p *painter) watermarks(src image.Image) {
	ws := p.doc.WatermarkSettings
	faded := fade(src, ws.Opacity)
	iw, ih := float64(faded.Bounds().Dx()), float64(faded.Bounds().Dy())

	scaled := map[[2]int]*image.RGBA{}
	for _, s := range watermarkSpots(p.plan, ws, p.g, p.r.opts.Layout) {
		w, h := fit(iw, ih, s.maxW, s.maxH)
		key := [2]int{int(w * ws.Scale), int(h * ws.Scale)}
		if key[0] < 1 || key[1] < 1 {
			continue
		}
		im, ok := scaled[key]
		if !ok {
			im = scaleImage(faded, key[0], key[1])
			scaled[key] = im
		}
		p.dc.Push()
		p.dc.RotateAbout(gg.Radians(ws.Rotation), s.cx, s.cy)
		p.dc.DrawImageAnchored(im, int(s.cx), int(s.cy), 0.5, 0.5)
		p.dc.Pop()
	}
}
