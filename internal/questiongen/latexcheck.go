package questiongen

import (
	"github.com/sameane/physexam/internal/exam"
)

// LatexValidator rejects unbalanced \( \) delimiters in the prompt,
// options and explanation.
type LatexValidator struct{}

func (v *LatexValidator) Name() string { return "latex" }

func (v *LatexValidator) Validate(q *exam.Question) *ValidationError {
	c := *q
	c.Validate()
	if !c.Valid() {
		return &ValidationError{Validator: v.Name(), Message: c.ValidationError}
	}
	if msg := exam.ValidateLatex(q.Explanation); msg != "" {
		return &ValidationError{Validator: v.Name(), Message: "explanation: " + msg}
	}
	return nil
}
