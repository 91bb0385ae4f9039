package command

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrUnknownOperation is returned when the first line of a block is not an operation.
	ErrUnknownOperation = errors.New("expected '+', '-', '#', '^' or '@' optionally followed by an alias")
	// ErrLineCount is returned when a block has the wrong number of lines for its operation.
	ErrLineCount = errors.New("wrong number of lines")
	// ErrMalformedReference is returned when a reference line is empty or has whitespace or brackets.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrUnexpectedAlias is returned when an alias follows an operation that takes none.
	ErrUnexpectedAlias = errors.New("unexpected alias")
	// ErrMissingAlias is returned when '@' is not followed by an alias.
	ErrMissingAlias = errors.New("missing alias")
)

// ParseError locates a parse failure. Block and Line are 1-based, Line is
// relative to the start of the block.
type ParseError struct {
	Block int
	Line  int
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v in block %d line %d %q: %v", ErrParse, e.Block, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
