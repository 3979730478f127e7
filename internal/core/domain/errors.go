package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrTypeNotFound is returned by strict type lookups when no type has the requested name.
	ErrTypeNotFound = zerr.New("type not found")

	// ErrRootTypeMissing is returned by a registry refresh when the root supertype anchor is not declared.
	ErrRootTypeMissing = zerr.New("root type missing")

	// ErrInvalidTypeExpression is returned when a type expression cannot be parsed.
	ErrInvalidTypeExpression = zerr.New("invalid type expression")

	// ErrCompilationFailed is the single opaque signal for a permutation compile that did not succeed.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrCancelled is returned when a compile observes cooperative cancellation.
	ErrCancelled = zerr.New("compilation cancelled")

	// ErrProgramConsumed is returned by a single-use program cache on its second checkout.
	ErrProgramConsumed = zerr.New("program already consumed and no byte cache token exists")

	// ErrInvalidModule is returned when a module descriptor fails validation.
	ErrInvalidModule = zerr.New("invalid module descriptor")

	// ErrInvalidOptions is returned when compile options fail validation.
	ErrInvalidOptions = zerr.New("invalid compile options")

	// ErrCacheMiss is returned by the byte cache when a token is unknown.
	ErrCacheMiss = zerr.New("byte cache token not found")

	// ErrArtifactMismatch is returned when an output directory does not match its manifest.
	ErrArtifactMismatch = zerr.New("artifacts do not match manifest")

	// ErrInvalidProgram is returned when a serialized program cannot be decoded.
	ErrInvalidProgram = zerr.New("invalid program")
)

// Diagnostic is one itemized, location-annotated compile problem.
type Diagnostic struct {
	File    string `yaml:"file,omitempty"`
	Line    int    `yaml:"line,omitempty"`
	Message string `yaml:"message"`
}

// String renders the diagnostic as file:line: message.
func (d Diagnostic) String() string {
	switch {
	case d.File == "":
		return d.Message
	case d.Line <= 0:
		return d.File + ": " + d.Message
	default:
		return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
	}
}

// CompileError is a fatal compile failure carrying every collected diagnostic.
type CompileError struct {
	Diagnostics []Diagnostic
}

// Error implements error.
func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return ErrCompilationFailed.Error()
	}
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, d.String())
	}
	return fmt.Sprintf("%s: %s", ErrCompilationFailed.Error(), strings.Join(lines, "; "))
}

// Unwrap lets errors.Is match ErrCompilationFailed.
func (e *CompileError) Unwrap() error {
	return ErrCompilationFailed
}

// InternalCompilerError is a defect inside a compiler pass. Trail holds the node provenance
// chain, outermost first, that was active when the failure happened.
type InternalCompilerError struct {
	Cause error
	Trail []string
}

// Error implements error.
func (e *InternalCompilerError) Error() string {
	if len(e.Trail) == 0 {
		return "internal compiler error: " + e.Cause.Error()
	}
	return fmt.Sprintf("internal compiler error at %s: %s", strings.Join(e.Trail, " > "), e.Cause.Error())
}

// Unwrap returns the cause.
func (e *InternalCompilerError) Unwrap() error {
	return e.Cause
}

// ResourceExhaustedError reports that a bounded resource ran out. It is never folded into
// ErrCompilationFailed.
type ResourceExhaustedError struct {
	Resource string
	Limit    int64
	Used     int64
}

// Error implements error.
func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("resource exhausted: %s (limit %d, requested %d)", e.Resource, e.Limit, e.Used)
}
