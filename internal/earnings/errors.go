package earnings

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload matches every error returned by Parse.
	ErrMalformedPayload = errors.New("earnings: malformed payload")
	// ErrMissingHeader indicates the payload has no parsable header row.
	ErrMissingHeader = &missingHeaderError{}
)

type missingHeaderError struct{}

func (e *missingHeaderError) Error() string { return "earnings: missing header row" }

func (e *missingHeaderError) Is(target error) bool { return target == ErrMalformedPayload }

// MissingFieldError reports a required column label absent from the header.
type MissingFieldError struct {
	Label string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("earnings: missing column %q", e.Label)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMalformedPayload }

// DuplicateFieldError reports a required column label that appears more than once.
type DuplicateFieldError struct {
	Label string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("earnings: duplicate column %q", e.Label)
}

func (e *DuplicateFieldError) Is(target error) bool { return target == ErrMalformedPayload }

// MalformedRowError reports a data row whose shape does not match the header.
// Row is 1-based among data rows.
type MalformedRowError struct {
	Row int
	Err error
}

func (e *MalformedRowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("earnings: malformed row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("earnings: malformed row %d", e.Row)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedPayload }

// InvalidIntegerError reports a share count that is not an unsigned decimal integer.
type InvalidIntegerError struct {
	Row   int
	Value string
	Err   error
}

func (e *InvalidIntegerError) Error() string {
	return fmt.Sprintf("earnings: row %d: invalid %s %q", e.Row, ColumnShareCount, e.Value)
}

func (e *InvalidIntegerError) Unwrap() error { return e.Err }

func (e *InvalidIntegerError) Is(target error) bool { return target == ErrMalformedPayload }

// InvalidFloatError reports a monetary column that is not a decimal number.
type InvalidFloatError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *InvalidFloatError) Error() string {
	return fmt.Sprintf("earnings: row %d: invalid %s %q", e.Row, e.Field, e.Value)
}

func (e *InvalidFloatError) Unwrap() error { return e.Err }

func (e *InvalidFloatError) Is(target error) bool { return target == ErrMalformedPayload }
