package render

import (
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
)

// parseColor reads the CSS colour forms used by design settings: #rgb,
// #rrggbb, rgb(), rgba() and transparent. Anything else yields fallback.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return fallback
	case s == "transparent":
		return color.Transparent
	case strings.HasPrefix(s, "#"):
		if len(s) != 4 && len(s) != 7 {
			return fallback
		}
		if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
			return fallback
		}
		if len(s) == 4 {
			s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
		}
		return lipgloss.Color(s)
	case strings.HasPrefix(s, "rgb"):
		return parseRGB(s, fallback)
	}
	return fallback
}

func parseRGB(s string, fallback color.Color) color.Color {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return fallback
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return fallback
	}
	var c [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return fallback
		}
		c[i] = uint8(v)
	}
	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return fallback
		}
		alpha = a
	}
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: uint8(alpha*255 + 0.5)}
}

// cssColor is parseColor for templates: valid colours pass through,
// anything else becomes fallback.
func cssColor(s, fallback string) string {
	if parseColor(s, nil) == nil {
		return fallback
	}
	return strings.TrimSpace(s)
}
