package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/sameane/physexam/internal/exam"
)

type rect struct{ x, y, w, h float64 }

func (r rect) inset(d float64) rect {
	return rect{r.x + d, r.y + d, math.Max(r.w-2*d, 0), math.Max(r.h-2*d, 0)}
}

func path(dc *gg.Context, r rect, radius float64) {
	if radius > 0 {
		dc.DrawRoundedRectangle(r.x, r.y, r.w, r.h, radius)
		return
	}
	dc.DrawRectangle(r.x, r.y, r.w, r.h)
}

func fillRect(dc *gg.Context, r rect, c color.Color, radius float64) {
	if _, _, _, a := c.RGBA(); a == 0 {
		return
	}
	dc.SetColor(c)
	path(dc, r, radius)
	dc.Fill()
}

func strokeRect(dc *gg.Context, r rect, c color.Color, width, radius float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	path(dc, r, radius)
	dc.Stroke()
}

// drawBorder strokes r in one of the shared border styles.
func drawBorder(dc *gg.Context, r rect, style exam.BorderStyle, c color.Color, width, radius float64) {
	if width <= 0 {
		width = 1
	}
	switch style {
	case exam.BorderSimple:
		strokeRect(dc, r, c, width, radius)
	case exam.BorderDashed:
		dc.SetDash(3*width+3, 2*width+2)
		strokeRect(dc, r, c, width, radius)
		dc.SetDash()
	case exam.BorderDouble:
		w := math.Max(width/2, 1)
		strokeRect(dc, r, c, w, radius)
		strokeRect(dc, r.inset(width*2), c, w, math.Max(radius-width*2, 0))
	case exam.BorderFrame:
		strokeRect(dc, r, c, width*2, radius)
		strokeRect(dc, r.inset(width*3), c, 1, math.Max(radius-width*3, 0))
	case exam.BorderModernRight:
		strokeRect(dc, r, optionBorder, 1, radius)
		dc.SetColor(c)
		dc.DrawRectangle(r.x+r.w-width*2, r.y, width*2, r.h)
		dc.Fill()
	case exam.BorderModernBottom:
		dc.SetColor(c)
		dc.DrawRectangle(r.x, r.y+r.h-width, r.w, width)
		dc.Fill()
	}
}
