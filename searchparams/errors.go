package searchparams

import (
	"errors"
	"fmt"
)

// ErrQueryTooLong is matched by every ValidationError via errors.Is.
var ErrQueryTooLong = errors.New("search query too long")

// ValidationError reports a free-text field whose trimmed length exceeds
// its limit. Callers show it to the user; the text is never truncated.
type ValidationError struct {
	Field  string
	Limit  int
	Length int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be at most %d characters (got %d)", e.Field, e.Limit, e.Length)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrQueryTooLong
}
