// Package binerr defines the error kinds used across binsize's core:
// I/O and process failures that abort the run, and lookup misses that
// callers treat as "this data point matches nothing we know" and recover
// from locally.
package binerr

import (
	"errors"
	"fmt"
)

var (
	// ErrFatalIO marks an unreadable binary, an unwritable output file, or a
	// broken demangler pipe. The process exits non-zero on this error.
	ErrFatalIO = errors.New("fatal I/O error")

	// ErrMissingEntryPoint marks a reachability or weight pass invoked
	// without SetEntryPoint having been called.
	ErrMissingEntryPoint = errors.New("missing entry point")

	// ErrCorruptInput marks the vtable scanner reading fewer bytes than a
	// data object's declared size, indicating parser/binary disagreement.
	ErrCorruptInput = errors.New("corrupt input")
)

// FatalIO wraps cause (which may be nil) as an ErrFatalIO with msg context.
func FatalIO(msg string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%s: %w: %w", msg, ErrFatalIO, cause)
	}
	return fmt.Errorf("%s: %w", msg, ErrFatalIO)
}

// MissingEntryPoint wraps ErrMissingEntryPoint with msg context.
func MissingEntryPoint(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrMissingEntryPoint)
}

// CorruptInput wraps ErrCorruptInput with msg context.
func CorruptInput(msg string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%s: %w: %w", msg, ErrCorruptInput, cause)
	}
	return fmt.Errorf("%s: %w", msg, ErrCorruptInput)
}
