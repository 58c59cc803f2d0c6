package exam

import (
	"fmt"
	"strconv"
	"strings"
)

// Placement selects how the watermark image is tiled on the paper.
type Placement string

const (
	PlacementCenter   Placement = "center"
	PlacementGrid     Placement = "grid"
	PlacementQuestion Placement = "question"
)

// Valid reports whether p is a known placement.
func (p Placement) Valid() bool {
	switch p {
	case PlacementCenter, PlacementGrid, PlacementQuestion:
		return true
	}
	return false
}

// WatermarkSettings controls how the watermark image is drawn.
type WatermarkSettings struct {
	Opacity   float64   `json:"opacity" yaml:"opacity"`
	Rotation  float64   `json:"rotation" yaml:"rotation"`
	Scale     float64   `json:"scale" yaml:"scale"`
	Placement Placement `json:"placement" yaml:"placement"`

	// GridSize is "<cols>x<rows>", used by PlacementGrid.
	GridSize string `json:"gridSize,omitempty" yaml:"grid_size"`

	// PerQuestion is the number of copies inside each question box,
	// used by PlacementQuestion.
	PerQuestion int `json:"questionWmarkCount,omitempty" yaml:"per_question"`

	// Overlay draws the watermark over the content instead of under it.
	Overlay bool `json:"isOverlay" yaml:"overlay"`
}

// DefaultWatermarkSettings returns the settings new exams start with.
func DefaultWatermarkSettings() WatermarkSettings {
	return WatermarkSettings{
		Opacity:     0.1,
		Rotation:    -15,
		Scale:       1,
		Placement:   PlacementQuestion,
		GridSize:    "3x4",
		PerQuestion: 6,
		Overlay:     false,
	}
}

// GridDims parses GridSize into columns and rows. Malformed or
// non-positive values fall back to 3x4.
func (s WatermarkSettings) GridDims() (cols, rows int) {
	c, r, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s.GridSize)), "x")
	if !ok {
		return 3, 4
	}
	cols, err1 := strconv.Atoi(strings.TrimSpace(c))
	rows, err2 := strconv.Atoi(strings.TrimSpace(r))
	if err1 != nil || err2 != nil || cols <= 0 || rows <= 0 {
		return 3, 4
	}
	return cols, rows
}

// Validate checks ranges the renderer depends on.
func (s WatermarkSettings) Validate() error {
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("watermark opacity %v out of range [0,1]", s.Opacity)
	}
	if s.Scale <= 0 {
		return fmt.Errorf("watermark scale must be positive, got %v", s.Scale)
	}
	if !s.Placement.Valid() {
		return fmt.Errorf("unknown watermark placement %q", s.Placement)
	}
	if s.PerQuestion < 0 {
		return fmt.Errorf("watermark copies per question must not be negative")
	}
	return nil
}

// BorderStyle is shared by the page, header and question boxes.
type BorderStyle string

const (
	BorderNone         BorderStyle = "none"
	BorderSimple       BorderStyle = "simple"
	BorderDouble       BorderStyle = "double"
	BorderDashed       BorderStyle = "dashed"
	BorderFrame        BorderStyle = "frame"
	BorderModernRight  BorderStyle = "modern_right"
	BorderModernBottom BorderStyle = "modern_bottom"
)

// BorderStyles lists every style in menu order.
var BorderStyles = []BorderStyle{
	BorderNone, BorderSimple, BorderDouble, BorderDashed,
	BorderFrame, BorderModernRight, BorderModernBottom,
}

// ParseBorderStyle maps a name to a BorderStyle.
func ParseBorderStyle(s string) (BorderStyle, error) {
	for _, b := range BorderStyles {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown border style %q", s)
}

// DesignSettings styles the page, the header and each question box.
// Colours are CSS colour strings (#rgb, #rrggbb, rgb(), rgba(), transparent).
type DesignSettings struct {
	PageBorder      BorderStyle `json:"pageBorder" yaml:"page_border"`
	PageBorderColor string      `json:"pageBorderColor" yaml:"page_border_color"`
	PageBorderWidth float64     `json:"pageBorderWidth" yaml:"page_border_width"`
	PagePadding     float64     `json:"pagePadding" yaml:"page_padding"`
	PageMargin      float64     `json:"pageMargin" yaml:"page_margin"`
	PageBgColor     string      `json:"pageBgColor" yaml:"page_bg_color"`
	PageBgImage     string      `json:"pageBgImage,omitempty" yaml:"page_bg_image"`

	HeaderBorder          BorderStyle `json:"headerBorder" yaml:"header_border"`
	HeaderBgColor         string      `json:"headerBgColor" yaml:"header_bg_color"`
	HeaderBorderColor     string      `json:"headerBorderColor" yaml:"header_border_color"`
	HeaderBorderWidth     float64     `json:"headerBorderWidth" yaml:"header_border_width"`
	HeaderPadding         float64     `json:"headerPadding" yaml:"header_padding"`
	HeaderMargin          float64     `json:"headerMargin" yaml:"header_margin"`
	HeaderImageRight      string      `json:"headerImageRight,omitempty" yaml:"header_image_right"`
	HeaderImageLeft       string      `json:"headerImageLeft,omitempty" yaml:"header_image_left"`
	HeaderImageRightWidth float64     `json:"headerImageRightWidth,omitempty" yaml:"header_image_right_width"`
	HeaderImageLeftWidth  float64     `json:"headerImageLeftWidth,omitempty" yaml:"header_image_left_width"`

	QuestionBorder       BorderStyle `json:"questionBorder" yaml:"question_border"`
	QuestionBgColor      string      `json:"questionBgColor" yaml:"question_bg_color"`
	QuestionBorderColor  string      `json:"questionBorderColor" yaml:"question_border_color"`
	QuestionBorderWidth  float64     `json:"questionBorderWidth" yaml:"question_border_width"`
	QuestionPadding      float64     `json:"questionPadding" yaml:"question_padding"`
	QuestionMargin       float64     `json:"questionMargin" yaml:"question_margin"`
	QuestionBorderRadius float64     `json:"questionBorderRadius" yaml:"question_border_radius"`
}

// DefaultDesignSettings returns the design new exams start with.
func DefaultDesignSettings() DesignSettings {
	return DesignSettings{
		PageBorder:      BorderModernRight,
		PageBorderColor: "#1e3a8a",
		PageBorderWidth: 3,
		PagePadding:     20,
		PageMargin:      20,
		PageBgColor:     "#ffffff",

		HeaderBorder:          BorderModernBottom,
		HeaderBgColor:         "transparent",
		HeaderBorderColor:     "#1e3a8a",
		HeaderBorderWidth:     3,
		HeaderPadding:         16,
		HeaderMargin:          20,
		HeaderImageRightWidth: 120,
		HeaderImageLeftWidth:  200,

		QuestionBorder:       BorderSimple,
		QuestionBgColor:      "rgba(255, 255, 255, 0.95)",
		QuestionBorderColor:  "#e5e7eb",
		QuestionBorderWidth:  1,
		QuestionPadding:      16,
		QuestionMargin:       16,
		QuestionBorderRadius: 8,
	}
}

// Validate rejects unknown border styles and negative sizes.
func (d DesignSettings) Validate() error {
	for name, b := range map[string]BorderStyle{
		"page":     d.PageBorder,
		"header":   d.HeaderBorder,
		"question": d.QuestionBorder,
	} {
		if _, err := ParseBorderStyle(string(b)); err != nil {
			return fmt.Errorf("%s border: %w", name, err)
		}
	}
	sizes := []float64{
		d.PageBorderWidth, d.PagePadding, d.PageMargin,
		d.HeaderBorderWidth, d.HeaderPadding, d.HeaderMargin,
		d.QuestionBorderWidth, d.QuestionPadding, d.QuestionMargin, d.QuestionBorderRadius,
	}
	for _, v := range sizes {
		if v < 0 {
			return fmt.Errorf("design sizes must not be negative, got %v", v)
		}
	}
	return nil
}
