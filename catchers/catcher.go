package catchers

import (
	"github.com/accellera-official/uvm-core/contracts"
)

// Decision is a catcher's verdict on the report it was shown.
type Decision int

const (
	// Unknown is the zero value. Returning it (or anything else outside
	// Throw/Caught) from a catcher is a contract violation; the executor
	// reports it and continues as if the catcher had thrown.
	Unknown Decision = iota
	// Throw passes the report, with any mutations applied, to the next
	// catcher in the chain.
	Throw
	// Caught suppresses the report: the chain stops and the emission engine
	// never acts on it.
	Caught
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Throw:
		return "THROW"
	case Caught:
		return "CAUGHT"
	default:
		return "UNKNOWN"
	}
}

// Catcher inspects one report per invocation and decides its fate. A catcher
// must not keep per-report state across invocations and must not block; the
// pass it receives is valid only for the duration of the call.
type Catcher interface {
	// Catch examines and optionally mutates the in-flight report.
	Catch(p *Pass) Decision
	// Name identifies the catcher in lookups and diagnostics. Names need not
	// be unique.
	Name() string
}

// CatcherFunc adapts a plain function to the Catcher interface.
type CatcherFunc struct {
	name string
	fn   func(p *Pass) Decision
}

// NewCatcherFunc creates a named function catcher.
func NewCatcherFunc(name string, fn func(p *Pass) Decision) *CatcherFunc {
	return &CatcherFunc{name: name, fn: fn}
}

// Catch implements Catcher.
func (c *CatcherFunc) Catch(p *Pass) Decision {
	return c.fn(p)
}

// Name implements Catcher.
func (c *CatcherFunc) Name() string {
	return c.name
}

// CategoryID is the reserved id the executor passes to
// ActionResolver.DefaultAction when it needs the category-wide default for a
// severity rather than a specific id's resolution. Resolvers must keep it
// distinct from every real report id.
const CategoryID = "__severity-category__"

// BadDecisionID is the fixed id of the diagnostic emitted when a catcher
// returns an out-of-range decision.
const BadDecisionID = "CATCHER/BADRETURN"

// ActionResolver supplies the configured action for a severity and id.
// reporting.Handler is the standard implementation.
type ActionResolver interface {
	DefaultAction(severity contracts.Severity, id string) contracts.Action
}

// Emitter is the direct emission path the executor uses for its own
// diagnostics. Implementations must not route the report back through the
// catcher chain.
type Emitter interface {
	EmitDirect(severity contracts.Severity, id, text string)
}

// StatsRecorder receives the executor's demoted/caught accounting. Severity
// is always the report's severity as it entered the chain.
type StatsRecorder interface {
	RecordCaught(original contracts.Severity)
	RecordDemoted(original contracts.Severity)
}

// TrailRecorder captures completed chain passes for later inspection.
// Implementations must be safe for concurrent use.
type TrailRecorder interface {
	RecordPass(rec PassRecord)
}

// PassRecord describes one completed chain pass.
type PassRecord struct {
	TraceID  string
	ReportID string
	Scope    string
	Original contracts.Severity
	Final    contracts.Severity
	Caught   bool
	Steps    []StepRecord
}

// StepRecord describes one catcher invocation within a pass.
type StepRecord struct {
	Catcher        string
	Decision       Decision
	SeverityBefore contracts.Severity
	SeverityAfter  contracts.Severity
	ActionBefore   contracts.Action
	ActionAfter    contracts.Action
	Reverted       bool
}
