package questiongen

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/sameane/physexam/internal/exam"
)

// DiagramValidator checks that diagram markup, when present, is a
// well-formed SVG document.
type DiagramValidator struct{}

func (v *DiagramValidator) Name() string { return "diagram" }

func (v *DiagramValidator) Validate(q *exam.Question) *ValidationError {
	if q.Diagram == "" {
		return nil
	}
	if err := checkSVG(q.Diagram); err != nil {
		return &ValidationError{Validator: v.Name(), Message: err.Error()}
	}
	return nil
}

// checkSVG parses markup as XML and requires an <svg> root.
func checkSVG(markup string) error {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true
	root := ""
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.New("malformed SVG: " + err.Error())
		}
		if se, ok := tok.(xml.StartElement); ok && root == "" {
			root = se.Name.Local
		}
	}
	if root != "svg" {
		return errors.New("diagram root element is not <svg>")
	}
	return nil
}

// cleanSVG strips markdown fences and any chatter around the <svg> element.
func cleanSVG(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "<svg")
	end := strings.LastIndex(s, "</svg>")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+len("</svg>")]
}
