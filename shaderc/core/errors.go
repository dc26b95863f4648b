package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMagic indicates a pipeline metadata buffer whose magic number does
	// not match the expected constant.
	ErrMagic = errors.New("bad magic number")
	// ErrSize indicates a pipeline metadata buffer shorter than its
	// declared structure.
	ErrSize = errors.New("buffer too small")
)

// ParseError reports a malformed technique directive. Line is 1-based.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// CompilationError carries the external compiler's diagnostic verbatim.
type CompilationError struct {
	Technique  string
	EntryPoint string
	Diagnostic string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("technique %q entry point %q: %s", e.Technique, e.EntryPoint, e.Diagnostic)
}

// LayoutConflictError reports the same (set, binding) slot observed with
// two incompatible descriptor types across stages.
type LayoutConflictError struct {
	Set      uint32
	Binding  uint32
	Existing string
	Incoming string
}

func (e *LayoutConflictError) Error() string {
	return fmt.Sprintf("descriptor type conflict at set %d binding %d: %s vs %s",
		e.Set, e.Binding, e.Existing, e.Incoming)
}

// FormatError reports a structurally invalid pipeline metadata buffer on
// the read path. It wraps ErrMagic or ErrSize.
type FormatError struct {
	Cause  error
	Offset int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pipeline metadata at offset %d: %v", e.Offset, e.Cause)
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}
