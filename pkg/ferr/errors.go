// Package ferr carries the three-tier error model of the terminal: fatal
// at startup, silently absorbed at runtime, or terminal-but-clean at
// shutdown. It is modeled directly on the teacher's SessionError type
// (pkg/session/errors.go in the original vibetunnel host): a typed code
// plus an optional wrapped cause, formatted for a human reading stderr.
package ferr

import "fmt"

// Code classifies which of the three error tiers an error belongs to.
type Code string

const (
	// Fatal at startup (§7 tier 1): report to stderr, exit non-zero.
	ErrFatalDevice Code = "FATAL_DEVICE"  // framebuffer open/ioctl/mmap
	ErrFatalFont   Code = "FATAL_FONT"    // primary font failed to load
	ErrFatalFork   Code = "FATAL_FORK"    // forkpty failed
	ErrFatalArgs   Code = "FATAL_ARGS"    // startup argument validation

	// Recoverable / silently absorbed at runtime (§7 tier 2). These are
	// not returned as errors in the hot path — they're documented here
	// so callers that do choose to report them (e.g. diag.Debugf) use a
	// consistent code.
	ErrRuntimeParse Code = "RUNTIME_PARSE" // malformed escape sequence / UTF-8
	ErrRuntimeGlyph Code = "RUNTIME_GLYPH" // glyph rasterization failure (face build, missing glyph)

	// Terminal but clean at runtime (§7 tier 3): causes orderly shutdown.
	ErrShutdownEOF   Code = "SHUTDOWN_EOF"
	ErrShutdownChild Code = "SHUTDOWN_CHILD"
	ErrShutdownQuit  Code = "SHUTDOWN_QUIT"
)

// Error is the typed error fbterm returns for anything worth
// distinguishing by tier or origin.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// IsFatal reports whether code belongs to the fatal-at-startup tier.
func IsFatal(code Code) bool {
	switch code {
	case ErrFatalDevice, ErrFatalFont, ErrFatalFork, ErrFatalArgs:
		return true
	}
	return false
}
