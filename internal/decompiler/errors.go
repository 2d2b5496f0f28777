package decompiler

import (
	"errors"
	"fmt"

	"github.com/roach88/inkdc/internal/story"
)

// ErrUnsupported is the sentinel every UnsupportedError unwraps to.
var ErrUnsupported = errors.New("unsupported construct")

// UnsupportedError reports a construct the decompiler cannot express as
// source. Decompilation stops at the first one.
type UnsupportedError struct {
	// Instruction is the offending instruction, nil at end of content.
	Instruction story.Instruction

	// Reason describes what was expected.
	Reason string

	// Path is the container the instruction lives in.
	Path story.Path
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	where := string(e.Path)
	if where == "" {
		where = "<root>"
	}
	return fmt.Sprintf("unsupported: %s: %s (in %s)", e.Reason, story.Describe(e.Instruction), where)
}

// Unwrap exposes ErrUnsupported to errors.Is.
func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// IsUnsupported returns true if the error is an unsupported-construct error.
// Uses errors.As to handle wrapped errors.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

func unsupported(c *story.Container, in story.Instruction, format string, args ...any) *UnsupportedError {
	e := &UnsupportedError{Instruction: in, Reason: fmt.Sprintf(format, args...)}
	if c != nil {
		e.Path = c.Path
	}
	return e
}
