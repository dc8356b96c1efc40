package catchers

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/accellera-official/uvm-core/contracts"
)

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger for the executor's own diagnostics.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithExecutorStats replaces the default counter aggregator.
func WithExecutorStats(stats StatsRecorder) ExecutorOption {
	return func(e *Executor) {
		e.stats = stats
	}
}

// WithExecutorEmitter sets the direct emission path used for
// contract-violation diagnostics.
func WithExecutorEmitter(emitter Emitter) ExecutorOption {
	return func(e *Executor) {
		e.emitter = emitter
	}
}

// WithExecutorTrail attaches a trail recorder that receives every completed
// pass.
func WithExecutorTrail(trail TrailRecorder) ExecutorOption {
	return func(e *Executor) {
		e.trail = trail
	}
}

// Executor runs one catcher chain pass per report. At most one pass is ever
// in flight: a report emitted while a pass runs, whether from inside a
// catcher or from another goroutine, bypasses the chain and is treated as
// not caught instead of being queued.
type Executor struct {
	registry *Registry
	resolver ActionResolver
	stats    StatsRecorder
	emitter  Emitter
	trail    TrailRecorder
	logger   *slog.Logger

	inFlight atomic.Bool
	flags    atomic.Uint32
}

// NewExecutor creates an executor over the given registry and action
// resolver. A fresh Stats aggregator is used unless one is supplied.
func NewExecutor(registry *Registry, resolver ActionResolver, opts ...ExecutorOption) (*Executor, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}

	e := &Executor{
		registry: registry,
		resolver: resolver,
		stats:    NewStats(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.stats == nil {
		e.stats = NewStats()
	}
	return e, nil
}

// Registry returns the registry this executor iterates.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// BindEmitter sets the direct emission path after construction. Wire it
// before the first report flows; reporting.NewServer does this for the
// executor it is given.
func (e *Executor) BindEmitter(emitter Emitter) {
	e.emitter = emitter
}

// SetDebugFlags replaces the debug flag bitmask. This is the only control
// point for the flags; the executor reads them once at the start of every
// pass, so a change never affects a pass already running.
func (e *Executor) SetDebugFlags(flags DebugFlags) {
	e.flags.Store(uint32(flags))
}

// DebugFlags returns the current debug flag bitmask.
func (e *Executor) DebugFlags() DebugFlags {
	return DebugFlags(e.flags.Load())
}

// Process runs the catcher chain over msg and reports whether a catcher
// caught it. The caller owns emission: a caught report must not be emitted.
//
// The pass walks the registrations for the report's owner scope (falling
// back to the wildcard scope) in registration order. Disabled catchers are
// skipped. A Caught decision ends the pass unless the ignore-catch debug
// flag is set. Catcher panics propagate after the executor restores its
// in-flight flag and the registry's dispatch trace.
func (e *Executor) Process(msg *contracts.Report) bool {
	if msg == nil {
		return false
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		// A pass is already running. Nested and concurrent emissions bypass
		// the chain rather than queue behind it.
		e.logger.Debug("re-entrant report bypassed catcher chain",
			"reportId", msg.ID,
			"severity", msg.Severity.String())
		return false
	}
	defer e.inFlight.Store(false)

	prevTracing := e.registry.suspendTracing()
	defer e.registry.SetTracing(prevTracing)

	flags := DebugFlags(e.flags.Load())
	original := msg.Severity

	var pristine *contracts.Report
	if flags.Has(DebugDiscardMutations) {
		pristine = msg.Clone()
	}

	var rec *PassRecord
	if e.trail != nil {
		rec = &PassRecord{
			TraceID:  msg.TraceID,
			ReportID: msg.ID,
			Scope:    msg.Scope(),
			Original: original,
		}
	}

	caught := false
	pass := &Pass{report: msg, original: original}
	for _, reg := range e.registry.resolve(msg.Owner) {
		if !reg.Enabled() {
			continue
		}

		prevSev := msg.Severity
		prevAct := msg.Action
		pass.actionSet = false

		decision := reg.catcher.Catch(pass)
		if decision != Throw && decision != Caught {
			e.reportBadDecision(reg, decision, msg)
			decision = Throw
		}

		reverted := false
		if pristine != nil {
			revert(msg, pristine)
			reverted = true
		}

		// A severity rewrite drags the action along with it, but only when
		// the catcher did not pick an action itself and the action still
		// matches the category default for the old severity.
		if !pass.actionSet && msg.Severity != prevSev &&
			msg.Action == e.resolver.DefaultAction(prevSev, CategoryID) {
			msg.Action = e.resolver.DefaultAction(msg.Severity, CategoryID)
		}

		if rec != nil {
			rec.Steps = append(rec.Steps, StepRecord{
				Catcher:        reg.Name(),
				Decision:       decision,
				SeverityBefore: prevSev,
				SeverityAfter:  msg.Severity,
				ActionBefore:   prevAct,
				ActionAfter:    msg.Action,
				Reverted:       reverted,
			})
		}

		if decision == Caught && !flags.Has(DebugIgnoreCatch) {
			e.stats.RecordCaught(original)
			caught = true
			break
		}
	}

	// Demotion accounting is independent of capture.
	if msg.Severity < original {
		e.stats.RecordDemoted(original)
	}

	if rec != nil {
		rec.Final = msg.Severity
		rec.Caught = caught
		e.trail.RecordPass(*rec)
	}
	return caught
}

func (e *Executor) reportBadDecision(reg *Registration, d Decision, msg *contracts.Report) {
	text := fmt.Sprintf("catcher %q returned invalid decision %d for report %q, treating as THROW",
		reg.Name(), int(d), msg.ID)
	if e.emitter != nil {
		e.emitter.EmitDirect(contracts.SeverityError, BadDecisionID, text)
		return
	}
	e.logger.Error("invalid catcher decision",
		"catcher", reg.Name(),
		"reportId", msg.ID,
		"decision", int(d))
}

// revert restores every catcher-mutable field from the pristine snapshot.
// File, line, owner and identity fields have no mutators and stay as-is.
func revert(msg, pristine *contracts.Report) {
	msg.Severity = pristine.Severity
	msg.ID = pristine.ID
	msg.Text = pristine.Text
	msg.Verbosity = pristine.Verbosity
	msg.Action = pristine.Action
	msg.Context = pristine.Context
	msg.Attrs = nil
	if len(pristine.Attrs) > 0 {
		msg.Attrs = make([]contracts.Attr, len(pristine.Attrs))
		copy(msg.Attrs, pristine.Attrs)
	}
}
