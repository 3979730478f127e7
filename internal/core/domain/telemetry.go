package domain

import "strings"

// PermutationStatus is the lifecycle state of one permutation compile.
type PermutationStatus string

const (
	// PermutationStatusPending means the permutation has not started.
	PermutationStatusPending PermutationStatus = "pending"
	// PermutationStatusRunning means the pipeline is executing.
	PermutationStatusRunning PermutationStatus = "running"
	// PermutationStatusCompleted means a result was produced.
	PermutationStatusCompleted PermutationStatus = "completed"
	// PermutationStatusFailed means the compile failed.
	PermutationStatusFailed PermutationStatus = "failed"
	// PermutationStatusCancelled means the compile was aborted by cancellation.
	PermutationStatusCancelled PermutationStatus = "cancelled"
)

// IsTerminal reports whether no further transitions can happen.
func (s PermutationStatus) IsTerminal() bool {
	switch s {
	case PermutationStatusCompleted, PermutationStatusFailed, PermutationStatusCancelled:
		return true
	default:
		return false
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLogLevel converts a configured level name, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}
