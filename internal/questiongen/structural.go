package questiongen

import (
	"fmt"
	"strings"

	"github.com/sameane/physexam/internal/exam"
)

const (
	maxPromptLen      = 2000
	maxOptionLen      = 300
	maxExplanationLen = 2000
)

// StructuralValidator checks that the prompt, all four options and the
// answer index are present and within limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *exam.Question) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(q.Prompt) == "" {
		return fail("text is empty")
	}
	if len(q.Prompt) > maxPromptLen {
		return fail("text exceeds %d characters", maxPromptLen)
	}
	seen := make(map[string]int, exam.OptionCount)
	for i, opt := range q.Options {
		norm := strings.TrimSpace(opt)
		if norm == "" {
			return fail("option %c is empty", 'A'+i)
		}
		if len(opt) > maxOptionLen {
			return fail("option %c exceeds %d characters", 'A'+i, maxOptionLen)
		}
		if j, dup := seen[norm]; dup {
			return fail("options %c and %c are identical", 'A'+j, 'A'+i)
		}
		seen[norm] = i
	}
	if q.Correct < 0 || q.Correct >= exam.OptionCount {
		return fail("correctAnswerIndex %d is out of range", q.Correct)
	}
	if len(q.Explanation) > maxExplanationLen {
		return fail("explanation exceeds %d characters", maxExplanationLen)
	}
	return nil
}
