package questiongen

import (
	"fmt"

	"github.com/sameane/physexam/internal/exam"
)

// Validator checks a generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural" or "latex".
	Name() string

	// Validate returns nil when q passes.
	Validate(q *exam.Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Index     int    // Position of the question in the response, -1 for single
	Message   string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("question %d: validator %q: %s", e.Index+1, e.Validator, e.Message)
	}
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

func runValidators(vs []Validator, q *exam.Question, index int) error {
	for _, v := range vs {
		if verr := v.Validate(q); verr != nil {
			verr.Index = index
			return verr
		}
	}
	return nil
}
