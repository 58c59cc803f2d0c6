package render

import (
	"bytes"
	"image"
	"image/color"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/sameane/physexam/internal/llm"
	"github.com/sameane/physexam/internal/logger"
)

// imageCache decodes each image source once per export. Sources that fail
// to load are logged once and skipped.
type imageCache struct {
	decoded map[string]image.Image
	failed  map[string]bool
}

func newImageCache() *imageCache {
	return &imageCache{decoded: map[string]image.Image{}, failed: map[string]bool{}}
}

func (c *imageCache) get(src string) (image.Image, bool) {
	if src == "" || c.failed[src] {
		return nil, false
	}
	if im, ok := c.decoded[src]; ok {
		return im, true
	}
	raw, err := llm.LoadImage(src)
	var im image.Image
	if err == nil {
		im, _, err = image.Decode(bytes.NewReader(raw.Data))
	}
	if err != nil {
		logger.L().Warn("skipping image", "source", src, "error", err)
		c.failed[src] = true
		return nil, false
	}
	c.decoded[src] = im
	return im, true
}

// fit scales w x h to the largest size inside maxW x maxH, keeping the
// aspect ratio. A non-positive bound is ignored; with no bound the size is
// returned unchanged.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	k := math.Inf(1)
	if maxW > 0 {
		k = math.Min(k, maxW/w)
	}
	if maxH > 0 {
		k = math.Min(k, maxH/h)
	}
	if math.IsInf(k, 1) {
		return w, h
	}
	return w * k, h * k
}

func scaleImage(src image.Image, w, h int) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// fade returns a copy of src with its alpha multiplied by opacity.
func fade(src image.Image, opacity float64) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	a := uint8(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
	draw.DrawMask(dst, dst.Bounds(), src, b.Min, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
	return dst
}
