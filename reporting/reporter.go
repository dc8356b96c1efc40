package reporting

import (
	"path/filepath"
	"runtime"

	"github.com/accellera-official/uvm-core/contracts"
)

// ReportOption customizes a single report before it enters the pipeline.
type ReportOption func(*contracts.Report)

// WithVerbosity overrides the severity's default verbosity level.
func WithVerbosity(v contracts.Verbosity) ReportOption {
	return func(r *contracts.Report) {
		r.Verbosity = v
	}
}

// WithContext attaches a free-form context string.
func WithContext(ctx string) ReportOption {
	return func(r *contracts.Report) {
		r.Context = ctx
	}
}

// WithInt attaches a named integer attribute.
func WithInt(name string, value int64) ReportOption {
	return func(r *contracts.Report) {
		r.AddInt(name, value)
	}
}

// WithString attaches a named string attribute.
func WithString(name, value string) ReportOption {
	return func(r *contracts.Report) {
		r.AddString(name, value)
	}
}

// WithObject attaches a named opaque attribute.
func WithObject(name string, value any) ReportOption {
	return func(r *contracts.Report) {
		r.AddObject(name, value)
	}
}

// WithFileLine overrides the captured call site.
func WithFileLine(file string, line int) ReportOption {
	return func(r *contracts.Report) {
		r.File = file
		r.Line = line
	}
}

// Reporter issues reports on behalf of one named component. It is the
// report owner: catchers registered against it see only its reports.
type Reporter struct {
	name   string
	server *Server
	hook   func(r *contracts.Report, composed string) bool
}

// NewReporter creates a reporter bound to the given emission server.
func NewReporter(server *Server, name string) *Reporter {
	return &Reporter{name: name, server: server}
}

// Name returns the component name. It satisfies contracts.Owner.
func (r *Reporter) Name() string {
	return r.name
}

// SetHook installs the veto consulted when one of this reporter's reports
// carries the CALL_HOOK action. A nil hook approves everything.
func (r *Reporter) SetHook(fn func(r *contracts.Report, composed string) bool) {
	r.hook = fn
}

// ReportHook satisfies Hooked.
func (r *Reporter) ReportHook(msg *contracts.Report, composed string) bool {
	if r.hook == nil {
		return true
	}
	return r.hook(msg, composed)
}

// Info emits an informational report at medium verbosity.
func (r *Reporter) Info(id, text string, opts ...ReportOption) {
	r.report(contracts.SeverityInfo, id, text, opts)
}

// Warning emits a warning report.
func (r *Reporter) Warning(id, text string, opts ...ReportOption) {
	r.report(contracts.SeverityWarning, id, text, opts)
}

// Error emits an error report.
func (r *Reporter) Error(id, text string, opts ...ReportOption) {
	r.report(contracts.SeverityError, id, text, opts)
}

// Fatal emits a fatal report. Whether the process terminates is decided by
// the action the pipeline resolves for it, not by this call.
func (r *Reporter) Fatal(id, text string, opts ...ReportOption) {
	r.report(contracts.SeverityFatal, id, text, opts)
}

// Report emits a report at an explicit severity.
func (r *Reporter) Report(severity contracts.Severity, id, text string, opts ...ReportOption) {
	r.report(severity, id, text, opts)
}

func (r *Reporter) report(severity contracts.Severity, id, text string, opts []ReportOption) {
	msg := contracts.NewReport(severity, id, text)
	msg.Owner = r
	if severity == contracts.SeverityInfo {
		msg.Verbosity = contracts.VerbosityMedium
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		msg.File = filepath.Base(file)
		msg.Line = line
	}
	for _, opt := range opts {
		opt(msg)
	}
	r.server.Report(msg)
}

var (
	_ contracts.Owner = (*Reporter)(nil)
	_ Hooked          = (*Reporter)(nil)
)
