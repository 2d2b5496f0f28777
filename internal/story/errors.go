package story

import (
	"errors"
	"fmt"
)

// Load error codes.
const (
	ErrCodeSyntax     = "E001" // document is not well-formed JSON
	ErrCodeHeader     = "E002" // header fails schema validation
	ErrCodeVersion    = "E003" // unsupported inkVersion
	ErrCodeToken      = "E004" // unknown instruction token
	ErrCodeObject     = "E005" // unknown instruction object
	ErrCodeUnresolved = "E006" // path does not resolve
	ErrCodeStructure  = "E007" // malformed container
)

// LoadError represents an error that occurred while loading a compiled story.
type LoadError struct {
	Code    string
	Message string
	Path    Path // container being loaded, if known
	Err     error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
