package contracts

import (
	"fmt"
	"strings"
)

// Verbosity is the emission threshold attached to a report. A report passes
// the verbosity gate when its verbosity is less than or equal to the
// configured threshold. Values between the named levels are legal.
type Verbosity int

const (
	VerbosityNone   Verbosity = 0
	VerbosityLow    Verbosity = 100
	VerbosityMedium Verbosity = 200
	VerbosityHigh   Verbosity = 300
	VerbosityFull   Verbosity = 400
	VerbosityDebug  Verbosity = 500
)

// String returns the level name for the named thresholds and the numeric
// value for everything in between.
func (v Verbosity) String() string {
	switch v {
	case VerbosityNone:
		return "NONE"
	case VerbosityLow:
		return "LOW"
	case VerbosityMedium:
		return "MEDIUM"
	case VerbosityHigh:
		return "HIGH"
	case VerbosityFull:
		return "FULL"
	case VerbosityDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("%d", int(v))
	}
}

// ParseVerbosity converts a level name or a bare integer to a Verbosity.
func ParseVerbosity(name string) (Verbosity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NONE":
		return VerbosityNone, nil
	case "LOW":
		return VerbosityLow, nil
	case "MEDIUM":
		return VerbosityMedium, nil
	case "HIGH":
		return VerbosityHigh, nil
	case "FULL":
		return VerbosityFull, nil
	case "DEBUG":
		return VerbosityDebug, nil
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(name), "%d", &n); err != nil {
		return VerbosityMedium, fmt.Errorf("%w %q", ErrUnknownVerbosity, name)
	}
	return Verbosity(n), nil
}
