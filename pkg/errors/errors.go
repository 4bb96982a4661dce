// Package errors provides structured error handling for clockface.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindParsing indicates a snapshot or input parsing failure.
	KindParsing
	// KindConfig indicates an invalid or unreadable configuration.
	KindConfig
	// KindRender indicates a rendering or encoding error.
	KindRender
	// KindIO indicates a file or network error.
	KindIO
	// KindLifecycle indicates a lifecycle transition error.
	KindLifecycle
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindParsing:
		return "parsing"
	case KindConfig:
		return "config"
	case KindRender:
		return "render"
	case KindIO:
		return "io"
	case KindLifecycle:
		return "lifecycle"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ClockError represents a structured error raised by a clockface component.
type ClockError struct {
	// Op is the operation that failed (e.g., "config.Resolve").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ClockError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a ClockError for op, or nil when err is nil.
func Wrap(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &ClockError{Op: op, Kind: kind, Err: err}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.frame").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to parse a textual value, such as a saved
// date or time-of-day.
type ParseError struct {
	// DataType is the expected type name.
	DataType string
	// Input is the text that failed to parse.
	Input string
	// Err is the underlying parser error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s from %q: %v", e.DataType, e.Input, e.Err)
	}
	return fmt.Sprintf("failed to parse %s from %q", e.DataType, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
