package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// stopMaxTokens is the normalised StopReason for a reply cut off at
// Request.MaxTokens.
const stopMaxTokens = "max_tokens"

// ErrRateLimit is returned when the provider answers 429. RetryAfter is
// the provider's hint, or zero when it gave none; WithRetry then backs
// off from RetryConfig.RateLimitWait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	msg := "provider rate limit reached"
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the reply was complete but did not match the
// requested schema, e.g. a question with three options. Content holds the
// raw reply for the event log.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("malformed reply from model: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable wraps 5xx answers and transport failures.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "AI provider unreachable"
	}
	return "AI provider unreachable: " + e.Err.Error()
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the reply stopped at Request.MaxTokens before
// its JSON was complete. WithRetry does not retry it.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("reply truncated at the token limit after %d bytes", len(e.Content))
}
