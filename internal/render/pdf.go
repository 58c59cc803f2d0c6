package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"runtime"

	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"

	"github.com/sameane/physexam/internal/exam"
)

// A4 in millimetres.
const (
	a4Width  = 210.0
	a4Height = 297.0
)

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// PDF rasterizes doc and writes one A4 page per layout page.
func (r *Renderer) PDF(ctx context.Context, w io.Writer, doc *exam.Document) error {
	im, plan, err := r.Rasterize(doc)
	if err != nil {
		return err
	}
	pages, err := r.encodePages(ctx, im, plan.Pages)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("physexam", true)

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	for i, data := range pages {
		name := fmt.Sprintf("page-%d", i+1)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, a4Width, 0, false, opt, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(w)
}

// encodePages cuts the raster into page slices and PNG-encodes them in
// parallel. The result is in page order.
func (r *Renderer) encodePages(ctx context.Context, im image.Image, n int) ([][]byte, error) {
	sub, ok := im.(subImager)
	if !ok {
		return nil, fmt.Errorf("raster %T cannot be sliced", im)
	}
	b := im.Bounds()
	pageH := b.Dy() / max(n, 1)

	out := make([][]byte, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rect := image.Rect(b.Min.X, b.Min.Y+i*pageH, b.Max.X, b.Min.Y+(i+1)*pageH)
			var buf bytes.Buffer
			if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
				return fmt.Errorf("encode page %d: %w", i+1, err)
			}
			out[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
