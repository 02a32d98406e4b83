package omefiles

import (
	"errors"
	"fmt"
)

// Error classes. Every LogicError matches ErrLogic and every FormatError
// matches ErrFormat when tested with errors.Is.
var (
	ErrLogic  = errors.New("omefiles: logic error")
	ErrFormat = errors.New("omefiles: format error")
)

// LogicError reports a violated precondition, such as an invalid dimension
// order or an out-of-sequence plane. It is never retried.
type LogicError struct {
	Op  string // operation that failed, e.g. "PlaneIndex"
	Msg string
	Err error // optional underlying cause
}

func (e *LogicError) Error() string {
	s := e.Msg
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the class sentinel and the underlying cause.
func (e *LogicError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLogic, e.Err}
	}
	return []error{ErrLogic}
}

// FormatError reports input data or writer state that cannot be used for
// the requested operation.
type FormatError struct {
	Op   string
	Path string // file involved, if any
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	s := e.Msg
	if e.Path != "" {
		s = e.Path + ": " + s
	}
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the class sentinel and the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFormat, e.Err}
	}
	return []error{ErrFormat}
}

// Logicf returns a LogicError with a formatted message.
func Logicf(op, format string, args ...any) error {
	return &LogicError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Formatf returns a FormatError with a formatted message.
func Formatf(op, format string, args ...any) error {
	return &FormatError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsLogic reports whether err is, or wraps, a logic error.
func IsLogic(err error) bool {
	return errors.Is(err, ErrLogic)
}

// IsFormat reports whether err is, or wraps, a format error.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}
