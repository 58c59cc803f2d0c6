package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when an operation names an id that is not
	// in the document.
	ErrItemNotFound = errors.New("item not found")

	// ErrIndexOutOfRange is returned by MoveItem for a bad position.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotQuestion is returned when a question-only operation targets a
	// text block.
	ErrNotQuestion = errors.New("item is not a question")
)

// ParseError reports a malformed exam file. No document is produced when
// it is returned.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parse exam"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func notFound(id int) error {
	return fmt.Errorf("item %d: %w", id, ErrItemNotFound)
}
