package contracts

import (
	"fmt"
	"strings"
)

// Severity classifies a report. The ordering is total: SeverityFatal is the
// most severe and SeverityInfo the least, so severities compare with the
// ordinary < and > operators.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the canonical upper-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// Valid reports whether s is one of the four defined severities.
func (s Severity) Valid() bool {
	return s >= SeverityInfo && s <= SeverityFatal
}

// ParseSeverity converts a severity name to its value. Matching is
// case-insensitive.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INFO":
		return SeverityInfo, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	case "FATAL":
		return SeverityFatal, nil
	default:
		return SeverityInfo, fmt.Errorf("%w %q", ErrUnknownSeverity, name)
	}
}

// Severities lists the defined severities from least to most severe.
func Severities() []Severity {
	return []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityFatal}
}
