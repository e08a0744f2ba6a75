// Package diag provides the gated debug-trace logging shared by every
// package in fbterm. It follows the same pattern the teacher codebase
// uses for its own debugLog helper: silent unless an environment
// variable opts in, so hot paths (per-byte parsing, per-frame paint)
// don't pay for formatting when nobody asked for the trace.
//
// Every trace line is tagged with a process-scoped correlation ID
// (github.com/google/uuid) rather than a PID: PIDs recycle across a
// single debugging session once a child shell restarts, which is
// exactly the kind of event this log exists to diagnose.
package diag

import (
	"log"
	"os"

	"github.com/google/uuid"
)

const debugEnvVar = "FBTERM_DEBUG"

var (
	enabled = os.Getenv(debugEnvVar) != ""
	runID   = uuid.NewString()
)

// Debugf logs a trace line if FBTERM_DEBUG is set in the environment.
func Debugf(format string, args ...interface{}) {
	if enabled {
		log.Printf("[%s] "+format, append([]interface{}{runID}, args...)...)
	}
}

// Enabled reports whether debug tracing is active.
func Enabled() bool {
	return enabled
}

// RunID returns this process's log-correlation ID.
func RunID() string {
	return runID
}
