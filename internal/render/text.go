package render

import (
	"regexp"
	"strings"

	"github.com/fogleman/gg"
)

// Raster output has no math typesetter: LaTeX is flattened to readable
// Unicode text.
var (
	reTag     = regexp.MustCompile(`<[^>]+>`)
	reTextCmd = regexp.MustCompile(`\\(?:text|mathrm|mathbf|mathit|operatorname)\{([^{}]*)\}`)
	reFrac    = regexp.MustCompile(`\\[dt]?frac\{([^{}]*)\}\{([^{}]*)\}`)
	reSup     = regexp.MustCompile(`\^\{([^{}]*)\}`)
	reSub     = regexp.MustCompile(`_\{([^{}]*)\}`)
	reCommand = regexp.MustCompile(`\\([a-zA-Z]+)`)
	reSpaces  = regexp.MustCompile(`[ \t]+`)
)

var latexSymbols = strings.NewReplacer(
	`\(`, "", `\)`, "", `\[`, "", `\]`, "",
	`\,`, " ", `\;`, " ", `\!`, "", `\quad`, "  ",
	`\rightarrow`, "→", `\leftarrow`, "←", `\to`, "→",
	`\left`, "", `\right`, "",
	`\times`, "×", `\cdot`, "·", `\div`, "÷",
	`\circ`, "°", `\degree`, "°",
	`\approx`, "≈", `\leq`, "≤", `\geq`, "≥", `\le`, "≤", `\ge`, "≥",
	`\neq`, "≠", `\pm`, "±", `\infty`, "∞", `\propto`, "∝", `\sqrt`, "√",
	`\alpha`, "α", `\beta`, "β", `\gamma`, "γ", `\Delta`, "Δ", `\delta`, "δ",
	`\epsilon`, "ε", `\varepsilon`, "ε", `\theta`, "θ", `\lambda`, "λ",
	`\mu`, "μ", `\pi`, "π", `\rho`, "ρ", `\sigma`, "σ", `\tau`, "τ",
	`\phi`, "φ", `\omega`, "ω", `\Omega`, "Ω",
	`\%`, "%", `\{`, "(", `\}`, ")",
)

// plainText flattens markup and inline LaTeX for raster drawing.
func plainText(s string) string {
	s = reTag.ReplaceAllString(s, "")
	s = reTextCmd.ReplaceAllString(s, "$1")
	s = reFrac.ReplaceAllString(s, "($1)/($2)")
	s = reSup.ReplaceAllString(s, "^$1")
	s = reSub.ReplaceAllString(s, "_$1")
	s = latexSymbols.Replace(s)
	s = reCommand.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// typesetter measures text with the faces of one export.
type typesetter struct {
	dc *gg.Context
	st styles
}

func newTypesetter(fs *fontSet) *typesetter {
	return &typesetter{dc: gg.NewContext(1, 1), st: newStyles(fs)}
}

// wrap breaks s into lines no wider than width. Blank input yields no
// lines; explicit newlines are kept.
func (t *typesetter) wrap(st style, s string, width float64) []string {
	s = plainText(s)
	if s == "" {
		return nil
	}
	t.dc.SetFontFace(st.face)
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, t.dc.WordWrap(para, width)...)
	}
	return lines
}

func (t *typesetter) height(st style, s string, width float64) float64 {
	return float64(len(t.wrap(st, s, width))) * st.lineHeight
}

func (t *typesetter) width(st style, s string) float64 {
	t.dc.SetFontFace(st.face)
	w, _ := t.dc.MeasureString(s)
	return w
}
