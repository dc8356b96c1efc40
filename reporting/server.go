package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/accellera-official/uvm-core/catchers"
	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/sinks"
)

// SummaryID is the reserved id the catcher summary is emitted under.
// Summarize temporarily redirects this id's action and destination.
const SummaryID = "CATCHER/SUMMARY"

// Processor runs the catcher chain over a report and reports whether it was
// caught. catchers.Executor is the standard implementation.
type Processor interface {
	Process(msg *contracts.Report) bool
}

// Hooked is implemented by report owners that want a veto over emission when
// a report carries the CALL_HOOK action. Returning false stops the report
// from reaching any sink or counter.
type Hooked interface {
	ReportHook(r *contracts.Report, composed string) bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger for sink failures and engine events.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithComposer replaces the standard report composer.
func WithComposer(c Composer) ServerOption {
	return func(s *Server) {
		s.composer = c
	}
}

// WithDisplaySinks appends sinks that receive DISPLAY-action reports.
func WithDisplaySinks(ss ...sinks.Sink) ServerOption {
	return func(s *Server) {
		s.display = append(s.display, ss...)
	}
}

// WithLogSinks appends sinks that receive LOG-action reports.
func WithLogSinks(ss ...sinks.Sink) ServerOption {
	return func(s *Server) {
		s.log = append(s.log, ss...)
	}
}

// WithMaxQuitCount arms the quit limit: once that many COUNT-action reports
// have been emitted, the exit handler fires. Zero disables the limit.
func WithMaxQuitCount(max int) ServerOption {
	return func(s *Server) {
		s.maxQuit = max
	}
}

// WithExitHandler sets the callback invoked for EXIT actions and when the
// quit limit is reached. Without one the server only logs the request;
// terminating the process is the embedder's decision.
func WithExitHandler(fn func(r *contracts.Report)) ServerOption {
	return func(s *Server) {
		s.onExit = fn
	}
}

// WithStopHandler sets the callback invoked for STOP actions.
func WithStopHandler(fn func(r *contracts.Report)) ServerOption {
	return func(s *Server) {
		s.onStop = fn
	}
}

// Server is the emission engine. It gates reports by verbosity, resolves
// their default action, runs them through the catcher chain and executes
// the surviving action bits against the configured sinks.
type Server struct {
	processor Processor
	handler   *Handler
	composer  Composer
	display   []sinks.Sink
	log       []sinks.Sink
	logger    *slog.Logger

	countsMu  sync.Mutex
	sevCount  map[contracts.Severity]uint64
	idCount   map[string]uint64
	quitCount int
	maxQuit   int
	quitFired bool

	onExit func(r *contracts.Report)
	onStop func(r *contracts.Report)
}

// NewServer creates the emission engine. When the processor is a
// catchers.Executor the server binds itself as its direct emission path, so
// contract-violation diagnostics come out through the same sinks.
func NewServer(processor Processor, handler *Handler, opts ...ServerOption) (*Server, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	s := &Server{
		processor: processor,
		handler:   handler,
		composer:  StandardComposer(),
		logger:    slog.Default(),
		sevCount:  make(map[contracts.Severity]uint64),
		idCount:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.composer == nil {
		s.composer = StandardComposer()
	}

	if binder, ok := processor.(interface{ BindEmitter(catchers.Emitter) }); ok {
		binder.BindEmitter(s)
	}
	return s, nil
}

// Handler returns the policy table this server consults.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Report runs a report through the full pipeline and returns the catcher
// verdict: true means a catcher caught it and nothing was emitted. Reports
// gated away by verbosity return false without running the chain.
func (s *Server) Report(msg *contracts.Report) bool {
	if msg == nil {
		return false
	}
	if !s.handler.IsEnabled(msg.Verbosity, msg.Severity, msg.ID) {
		return false
	}
	if msg.Action == contracts.ActionNone {
		msg.Action = s.handler.DefaultAction(msg.Severity, msg.ID)
	}

	if s.processor.Process(msg) {
		return true
	}
	if msg.Action == contracts.ActionNone {
		return false
	}
	s.execute(msg, s.composer.Compose(msg))
	return false
}

// EmitDirect composes and executes a report without the catcher chain or
// the verbosity gate. The executor uses it for its own diagnostics and
// Summarize uses it for the summary block.
func (s *Server) EmitDirect(severity contracts.Severity, id, text string) {
	msg := contracts.NewReport(severity, id, text)
	msg.Action = s.handler.DefaultAction(severity, id)
	if msg.Action == contracts.ActionNone {
		return
	}
	s.execute(msg, s.composer.Compose(msg))
}

// Summarize emits the given summary block under SummaryID. When a target
// sink is supplied, the id's action and destination are redirected to it for
// the duration and restored afterwards no matter how emission goes.
func (s *Server) Summarize(block string, target sinks.Sink) {
	if target != nil {
		prevAction, hadAction := s.handler.IDAction(SummaryID)
		prevSink, hadSink := s.handler.IDSink(SummaryID)
		s.handler.SetIDAction(SummaryID, contracts.ActionLog)
		s.handler.SetIDSink(SummaryID, target)
		defer func() {
			if hadAction {
				s.handler.SetIDAction(SummaryID, prevAction)
			} else {
				s.handler.ClearIDAction(SummaryID)
			}
			if hadSink {
				s.handler.SetIDSink(SummaryID, prevSink)
			} else {
				s.handler.ClearIDSink(SummaryID)
			}
		}()
	}
	s.EmitDirect(contracts.SeverityInfo, SummaryID, block)
}

// SeverityCount returns how many reports of the given severity reached the
// sinks.
func (s *Server) SeverityCount(severity contracts.Severity) uint64 {
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	return s.sevCount[severity]
}

// IDCount returns how many reports with the given id reached the sinks.
func (s *Server) IDCount(id string) uint64 {
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	return s.idCount[id]
}

// QuitCount returns the number of COUNT-action reports seen so far.
func (s *Server) QuitCount() int {
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	return s.quitCount
}

func (s *Server) execute(msg *contracts.Report, composed string) {
	if msg.Action.Has(contracts.ActionCallHook) {
		if h, ok := msg.Owner.(Hooked); ok && !h.ReportHook(msg, composed) {
			return
		}
	}

	s.bumpCounts(msg)

	ctx := context.Background()
	if msg.Action.Has(contracts.ActionDisplay) {
		for _, sink := range s.display {
			s.write(ctx, sink, msg, composed)
		}
	}
	if msg.Action.Has(contracts.ActionLog) {
		if redirect, ok := s.handler.IDSink(msg.ID); ok {
			s.write(ctx, redirect, msg, composed)
		} else {
			for _, sink := range s.log {
				s.write(ctx, sink, msg, composed)
			}
		}
	}
	if msg.Action.Has(contracts.ActionCount) {
		s.bumpQuit(msg)
	}
	if msg.Action.Has(contracts.ActionStop) {
		if s.onStop != nil {
			s.onStop(msg)
		} else {
			s.logger.Warn("stop requested by report action", "reportId", msg.ID)
		}
	}
	if msg.Action.Has(contracts.ActionExit) {
		s.terminate(msg)
	}
}

func (s *Server) write(ctx context.Context, sink sinks.Sink, msg *contracts.Report, composed string) {
	if err := sink.Write(ctx, msg, composed); err != nil {
		s.logger.Error("report sink write failed",
			"reportId", msg.ID,
			"severity", msg.Severity.String(),
			"error", err)
	}
}

func (s *Server) bumpCounts(msg *contracts.Report) {
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	s.sevCount[msg.Severity]++
	s.idCount[msg.ID]++
}

func (s *Server) bumpQuit(msg *contracts.Report) {
	s.countsMu.Lock()
	s.quitCount++
	fire := s.maxQuit > 0 && s.quitCount >= s.maxQuit && !s.quitFired
	if fire {
		s.quitFired = true
	}
	count := s.quitCount
	s.countsMu.Unlock()

	if fire {
		s.logger.Error("quit count limit reached",
			"count", count,
			"max", s.maxQuit)
		s.terminate(msg)
	}
}

func (s *Server) terminate(msg *contracts.Report) {
	if s.onExit != nil {
		s.onExit(msg)
		return
	}
	s.logger.Error("exit requested by report action", "reportId", msg.ID)
}

var _ catchers.Emitter = (*Server)(nil)
