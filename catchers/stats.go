package catchers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/accellera-official/uvm-core/contracts"
)

// StatsSnapshot is a point-in-time copy of the six catcher counters.
type StatsSnapshot struct {
	DemotedFatal   uint64
	DemotedError   uint64
	DemotedWarning uint64
	CaughtFatal    uint64
	CaughtError    uint64
	CaughtWarning  uint64
}

// Total returns the sum of all six counters.
func (s StatsSnapshot) Total() uint64 {
	return s.DemotedFatal + s.DemotedError + s.DemotedWarning +
		s.CaughtFatal + s.CaughtError + s.CaughtWarning
}

// Stats accumulates the demoted/caught counters the executor maintains.
// Counters are keyed by the severity a report carried when it entered the
// chain; info-severity reports are not tracked. Counters only grow until
// Reset is called.
type Stats struct {
	mu   sync.Mutex
	snap StatsSnapshot
}

// NewStats creates a zeroed counter set.
func NewStats() *Stats {
	return &Stats{}
}

// RecordCaught increments the caught counter for the given original
// severity.
func (s *Stats) RecordCaught(original contracts.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch original {
	case contracts.SeverityFatal:
		s.snap.CaughtFatal++
	case contracts.SeverityError:
		s.snap.CaughtError++
	case contracts.SeverityWarning:
		s.snap.CaughtWarning++
	}
}

// RecordDemoted increments the demoted counter for the given original
// severity.
func (s *Stats) RecordDemoted(original contracts.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch original {
	case contracts.SeverityFatal:
		s.snap.DemotedFatal++
	case contracts.SeverityError:
		s.snap.DemotedError++
	case contracts.SeverityWarning:
		s.snap.DemotedWarning++
	}
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Reset zeroes all counters. Intended for test harnesses that run repeated
// scenarios against one pipeline.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = StatsSnapshot{}
}

// Summarize renders the counters as the fixed six-line block consumed by
// downstream tooling. Field order and labels are stable; do not reorder.
func (s *Stats) Summarize() string {
	snap := s.Snapshot()

	var b strings.Builder
	b.WriteString("--- catcher summary ---\n")
	fmt.Fprintf(&b, "demoted-fatal   :%5d\n", snap.DemotedFatal)
	fmt.Fprintf(&b, "demoted-error   :%5d\n", snap.DemotedError)
	fmt.Fprintf(&b, "demoted-warning :%5d\n", snap.DemotedWarning)
	fmt.Fprintf(&b, "caught-fatal    :%5d\n", snap.CaughtFatal)
	fmt.Fprintf(&b, "caught-error    :%5d\n", snap.CaughtError)
	fmt.Fprintf(&b, "caught-warning  :%5d\n", snap.CaughtWarning)
	return b.String()
}

var _ StatsRecorder = (*Stats)(nil)
