package errors

import (
	"fmt"
	"io"
	"strings"
)

// EngineError is the interface implemented by host-level errors: failures
// of the embedding around the object model rather than script exceptions.
type EngineError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Config", "Resource", "Internal"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// ConfigError reports an unreadable or invalid configuration file.
type ConfigError struct {
	Position
	Path  string
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *ConfigError) Error() string {
	if e.IsKnown() {
		return fmt.Sprintf("Config Error in %s at %d:%d: %s", e.Path, e.Line, e.Column, e.Msg)
	}
	if e.Path != "" {
		return fmt.Sprintf("Config Error in %s: %s", e.Path, e.Msg)
	}
	return "Config Error: " + e.Msg
}
func (e *ConfigError) Pos() Position   { return e.Position }
func (e *ConfigError) Kind() string    { return "Config" }
func (e *ConfigError) Message() string { return e.Msg }
func (e *ConfigError) Unwrap() error   { return e.Cause }
func (e *ConfigError) CausedBy(cause error) *ConfigError {
	e.Cause = cause
	return e
}

// ResourceError reports exhaustion of a bounded resource. The heap raises it
// as a panic value; it is not recoverable inside the realm.
type ResourceError struct {
	Resource string
	Limit    int
	Msg      string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("Resource Error (%s): %s", e.Resource, e.Msg)
}
func (e *ResourceError) Pos() Position   { return Position{} }
func (e *ResourceError) Kind() string    { return "Resource" }
func (e *ResourceError) Message() string { return e.Msg }
func (e *ResourceError) Unwrap() error   { return nil }

// InternalError reports a broken invariant of the engine itself.
type InternalError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *InternalError) Error() string {
	return "Internal Error: " + e.Msg
}
func (e *InternalError) Pos() Position   { return Position{} }
func (e *InternalError) Kind() string    { return "Internal" }
func (e *InternalError) Message() string { return e.Msg }
func (e *InternalError) Unwrap() error   { return e.Cause }
func (e *InternalError) CausedBy(cause error) *InternalError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// Display writes errs to w in a user-friendly format, including the source
// line and a position marker when the error carries one.
func Display(w io.Writer, errs []EngineError) {
	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		if !pos.IsKnown() || pos.Source == nil {
			fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
			continue
		}

		sourceLine := strings.TrimRight(pos.Source.Line(pos.Line), "\r\n\t ")
		fmt.Fprintf(w, "%s Error at %s:%d:%d: %s\n", kind, pos.Source.DisplayPath(), pos.Line, pos.Column, msg)
		fmt.Fprintf(w, "  %s\n", sourceLine)
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", max(pos.Column-1, 0)))
		fmt.Fprintln(w) // Add a blank line between errors
	}
}
