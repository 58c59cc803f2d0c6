package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Text sizes in points at 72 dpi, i.e. document pixels.
const (
	sizeTitle    = 24
	sizeBody     = 16
	sizeOption   = 15
	sizeSmall    = 13
	lineSpacing  = 1.5
	optionLetter = 30
)

type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
	italic  *truetype.Font
}

func loadFonts(path string) (*fontSet, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", path, err)
		}
		return &fontSet{regular: f, bold: f, italic: f}, nil
	}

	var fs fontSet
	for _, s := range []struct {
		dst **truetype.Font
		ttf []byte
	}{
		{&fs.regular, goregular.TTF},
		{&fs.bold, gobold.TTF},
		{&fs.italic, goitalic.TTF},
	} {
		f, err := truetype.Parse(s.ttf)
		if err != nil {
			return nil, fmt.Errorf("parse bundled font: %w", err)
		}
		*s.dst = f
	}
	return &fs, nil
}

type weight int

const (
	regular weight = iota
	bold
	italic
)

// style is a face together with its line height.
type style struct {
	face       font.Face
	lineHeight float64
}

func (fs *fontSet) style(w weight, size float64) style {
	f := fs.regular
	switch w {
	case bold:
		f = fs.bold
	case italic:
		f = fs.italic
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	h := float64(face.Metrics().Height) / 64
	return style{face: face, lineHeight: h * lineSpacing}
}

// styles are the faces of one export. Faces are not safe for concurrent
// use, so every Renderer owns its own set.
type styles struct {
	title, heading, body, option, optionBold, small, closing style
}

func newStyles(fs *fontSet) styles {
	return styles{
		title:      fs.style(bold, sizeTitle),
		heading:    fs.style(bold, sizeBody),
		body:       fs.style(regular, sizeBody),
		option:     fs.style(regular, sizeOption),
		optionBold: fs.style(bold, sizeOption),
		small:      fs.style(regular, sizeSmall),
		closing:    fs.style(italic, sizeBody+2),
	}
}
