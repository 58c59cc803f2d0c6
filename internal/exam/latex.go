package exam

import (
	"fmt"
	"strings"
)

// ValidateLatex reports unbalanced inline math delimiters in text.
// It returns "" when the text is fine.
func ValidateLatex(text string) string {
	if text == "" {
		return ""
	}
	open := strings.Count(text, `\(`)
	closing := strings.Count(text, `\)`)
	if open != closing {
		return fmt.Sprintf("unbalanced math delimiters: %d \\( vs %d \\)", open, closing)
	}
	return ""
}

// Validate re-runs LaTeX validation over the prompt and options and
// records the first problem in ValidationError.
func (q *Question) Validate() {
	q.ValidationError = ValidateLatex(q.Prompt)
	if q.ValidationError != "" {
		return
	}
	for i, opt := range q.Options {
		if msg := ValidateLatex(opt); msg != "" {
			q.ValidationError = fmt.Sprintf("option %c: %s", 'A'+i, msg)
			return
		}
	}
}

// Valid reports whether the last validation found no problems.
func (q *Question) Valid() bool { return q.ValidationError == "" }
