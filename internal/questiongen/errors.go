package questiongen

import (
	"errors"
	"fmt"

	"github.com/sameane/physexam/internal/llm"
)

// RequestError reports an invalid request field. No provider call is made.
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// ErrEmptyResponse is returned when the model answers with no usable content.
var ErrEmptyResponse = errors.New("model returned no content")

// IsRateLimited reports whether err came from provider throttling. Hosts
// use it to tell the user to wait before retrying.
func IsRateLimited(err error) bool {
	var rl *llm.ErrRateLimit
	return errors.As(err, &rl)
}
