// Package detector decides whether compile progress is drawn as a terminal view.
package detector

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode represents how compile progress is shown.
type Mode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto Mode = iota
	// ModeTUI draws the interactive progress view.
	ModeTUI
	// ModeLog only writes log lines.
	ModeLog
)

// DetectEnvironment returns the recommended mode for the current process.
// It checks if stdout is a TTY and if CI environment variables are set.
func DetectEnvironment() Mode {
	return detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv("CI"))
}

func detect(isTTY bool, ci string) Mode {
	isCI := ci == "true" || ci == "1"
	if !isTTY || isCI {
		return ModeLog
	}
	return ModeTUI
}

// ResolveMode applies the --progress flag to the detected mode.
// userFlag should be one of: "auto", "on", "off", or empty.
func ResolveMode(autoDetected Mode, userFlag string) Mode {
	switch strings.ToLower(userFlag) {
	case "on", "tui", "true":
		return ModeTUI
	case "off", "log", "false":
		return ModeLog
	default:
		return autoDetected
	}
}
