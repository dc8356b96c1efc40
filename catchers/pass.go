package catchers

import (
	"github.com/accellera-official/uvm-core/contracts"
)

// Pass is the view of the in-flight report handed to each catcher. It is
// owned by the executor, valid only for the duration of a Catch invocation,
// and must not be retained.
//
// Mutations apply to the live report and are visible to every later catcher
// in the pass, unless the discard-mutations debug flag is set, in which case
// the executor reverts them after each catcher while letting the decision
// stand.
type Pass struct {
	report    *contracts.Report
	original  contracts.Severity
	actionSet bool
}

// Severity returns the report's current severity.
func (p *Pass) Severity() contracts.Severity {
	return p.report.Severity
}

// OriginalSeverity returns the severity the report carried when the pass
// started, before any catcher ran.
func (p *Pass) OriginalSeverity() contracts.Severity {
	return p.original
}

// ID returns the report's current id.
func (p *Pass) ID() string {
	return p.report.ID
}

// Text returns the report's current text.
func (p *Pass) Text() string {
	return p.report.Text
}

// Verbosity returns the report's current verbosity.
func (p *Pass) Verbosity() contracts.Verbosity {
	return p.report.Verbosity
}

// Action returns the report's current action bitmask.
func (p *Pass) Action() contracts.Action {
	return p.report.Action
}

// Context returns the report's context string.
func (p *Pass) Context() string {
	return p.report.Context
}

// File returns the source file recorded on the report.
func (p *Pass) File() string {
	return p.report.File
}

// Line returns the source line recorded on the report.
func (p *Pass) Line() int {
	return p.report.Line
}

// TraceID returns the report's trace id.
func (p *Pass) TraceID() string {
	return p.report.TraceID
}

// Scope returns the report owner's name, or "" for ownerless reports.
func (p *Pass) Scope() string {
	return p.report.Scope()
}

// Attrs returns a copy of the report's attribute list.
func (p *Pass) Attrs() []contracts.Attr {
	if len(p.report.Attrs) == 0 {
		return nil
	}
	out := make([]contracts.Attr, len(p.report.Attrs))
	copy(out, p.report.Attrs)
	return out
}

// SetSeverity rewrites the report's severity. If the report's action still
// matches the category default for the old severity and no catcher set an
// action explicitly, the executor re-derives the action for the new severity
// after this catcher returns.
func (p *Pass) SetSeverity(s contracts.Severity) {
	p.report.Severity = s
}

// SetID rewrites the report's id.
func (p *Pass) SetID(id string) {
	p.report.ID = id
}

// SetText rewrites the report's text.
func (p *Pass) SetText(text string) {
	p.report.Text = text
}

// SetVerbosity rewrites the report's verbosity.
func (p *Pass) SetVerbosity(v contracts.Verbosity) {
	p.report.Verbosity = v
}

// SetContext rewrites the report's context string.
func (p *Pass) SetContext(ctx string) {
	p.report.Context = ctx
}

// SetAction rewrites the report's action bitmask and marks the action as
// explicitly chosen, which disables the executor's automatic re-derivation
// for the remainder of this catcher's turn.
func (p *Pass) SetAction(a contracts.Action) {
	p.report.Action = a
	p.actionSet = true
}

// AddInt appends an integer attribute to the report.
func (p *Pass) AddInt(name string, v int64) {
	p.report.AddInt(name, v)
}

// AddString appends a string attribute to the report.
func (p *Pass) AddString(name string, v string) {
	p.report.AddString(name, v)
}

// AddObject appends an object-reference attribute to the report.
func (p *Pass) AddObject(name string, v any) {
	p.report.AddObject(name, v)
}
