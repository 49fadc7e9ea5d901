package models

import "fmt"

// FormatError means the export could not be structurally parsed.
type FormatError struct {
	Stage string
	Msg   string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error at %s: %s: %v", e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("format error at %s: %s", e.Stage, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ValidationError means the data parsed but cannot be analyzed.
type ValidationError struct {
	Stage string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error at %s: %s", e.Stage, e.Msg)
}
