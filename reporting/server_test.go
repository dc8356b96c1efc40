package reporting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accellera-official/uvm-core/catchers"
	"github.com/accellera-official/uvm-core/contracts"
)

type stubProcessor struct {
	fn     func(msg *contracts.Report) bool
	called int
	bound  catchers.Emitter
}

func (p *stubProcessor) Process(msg *contracts.Report) bool {
	p.called++
	if p.fn != nil {
		return p.fn(msg)
	}
	return false
}

func (p *stubProcessor) BindEmitter(e catchers.Emitter) {
	p.bound = e
}

type captureSink struct {
	mu    sync.Mutex
	err   error
	lines []string
}

func (s *captureSink) Write(_ context.Context, _ *contracts.Report, composed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, composed)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

type hookedOwner struct {
	name   string
	allow  bool
	called int
}

func (o *hookedOwner) Name() string { return o.name }

func (o *hookedOwner) ReportHook(_ *contracts.Report, _ string) bool {
	o.called++
	return o.allow
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, proc Processor, opts ...ServerOption) (*Server, *Handler) {
	t.Helper()
	h := NewHandler()
	opts = append([]ServerOption{WithServerLogger(quietLogger())}, opts...)
	s, err := NewServer(proc, h, opts...)
	require.NoError(t, err)
	return s, h
}

func TestNewServer(t *testing.T) {
	t.Run("requires a processor and a handler", func(t *testing.T) {
		_, err := NewServer(nil, NewHandler())
		assert.Error(t, err)

		_, err = NewServer(&stubProcessor{}, nil)
		assert.Error(t, err)
	})

	t.Run("binds itself as the direct emission path", func(t *testing.T) {
		proc := &stubProcessor{}
		s, _ := newTestServer(t, proc)

		assert.Same(t, s, proc.bound)
	})
}

func TestServerReport(t *testing.T) {
	t.Run("ignores nil reports", func(t *testing.T) {
		proc := &stubProcessor{}
		s, _ := newTestServer(t, proc)

		assert.False(t, s.Report(nil))
		assert.Zero(t, proc.called)
	})

	t.Run("gates by verbosity without consulting the chain", func(t *testing.T) {
		proc := &stubProcessor{}
		s, h := newTestServer(t, proc)
		h.SetVerbosity(contracts.VerbosityNone)

		msg := contracts.NewReport(contracts.SeverityInfo, "RUN/TRACE", "detail")
		msg.Verbosity = contracts.VerbosityMedium

		assert.False(t, s.Report(msg))
		assert.Zero(t, proc.called)
	})

	t.Run("assigns the resolved default action before the chain runs", func(t *testing.T) {
		var seen contracts.Action
		proc := &stubProcessor{fn: func(msg *contracts.Report) bool {
			seen = msg.Action
			return false
		}}
		s, _ := newTestServer(t, proc)

		s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "bad"))

		assert.Equal(t, contracts.ActionDisplay|contracts.ActionCount, seen)
	})

	t.Run("keeps an explicitly assigned action", func(t *testing.T) {
		var seen contracts.Action
		proc := &stubProcessor{fn: func(msg *contracts.Report) bool {
			seen = msg.Action
			return false
		}}
		s, _ := newTestServer(t, proc)

		msg := contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "bad")
		msg.Action = contracts.ActionLog
		s.Report(msg)

		assert.Equal(t, contracts.ActionLog, seen)
	})

	t.Run("caught reports never reach a sink", func(t *testing.T) {
		display := &captureSink{}
		proc := &stubProcessor{fn: func(*contracts.Report) bool { return true }}
		s, _ := newTestServer(t, proc, WithDisplaySinks(display))

		caught := s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "bad"))

		assert.True(t, caught)
		assert.Empty(t, display.Lines())
		assert.Zero(t, s.SeverityCount(contracts.SeverityError))
	})

	t.Run("a chain that clears the action drops the report silently", func(t *testing.T) {
		display := &captureSink{}
		proc := &stubProcessor{fn: func(msg *contracts.Report) bool {
			msg.Action = contracts.ActionNone
			return false
		}}
		s, _ := newTestServer(t, proc, WithDisplaySinks(display))

		caught := s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "bad"))

		assert.False(t, caught)
		assert.Empty(t, display.Lines())
	})

	t.Run("routes DISPLAY to display sinks only", func(t *testing.T) {
		display := &captureSink{}
		logged := &captureSink{}
		s, _ := newTestServer(t, &stubProcessor{},
			WithDisplaySinks(display), WithLogSinks(logged))

		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late"))

		require.Len(t, display.Lines(), 1)
		assert.Contains(t, display.Lines()[0], "[DRV/LATE]")
		assert.Empty(t, logged.Lines())
	})

	t.Run("routes LOG to log sinks only", func(t *testing.T) {
		display := &captureSink{}
		logged := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{},
			WithDisplaySinks(display), WithLogSinks(logged))
		h.SetSeverityAction(contracts.SeverityWarning, contracts.ActionLog)

		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late"))

		assert.Empty(t, display.Lines())
		require.Len(t, logged.Lines(), 1)
	})

	t.Run("per id sink overrides the log destinations", func(t *testing.T) {
		logged := &captureSink{}
		redirect := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{}, WithLogSinks(logged))
		h.SetSeverityAction(contracts.SeverityWarning, contracts.ActionLog)
		require.NoError(t, h.SetIDSink("DRV/LATE", redirect))

		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late"))
		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/OTHER", "other"))

		require.Len(t, redirect.Lines(), 1)
		assert.Contains(t, redirect.Lines()[0], "[DRV/LATE]")
		require.Len(t, logged.Lines(), 1)
		assert.Contains(t, logged.Lines()[0], "[DRV/OTHER]")
	})

	t.Run("a failing sink does not stop the others", func(t *testing.T) {
		broken := &captureSink{err: errors.New("disk full")}
		healthy := &captureSink{}
		s, _ := newTestServer(t, &stubProcessor{},
			WithDisplaySinks(broken, healthy))

		assert.NotPanics(t, func() {
			s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late"))
		})
		assert.Len(t, healthy.Lines(), 1)
	})

	t.Run("tallies severities and ids for emitted reports", func(t *testing.T) {
		s, _ := newTestServer(t, &stubProcessor{}, WithDisplaySinks(&captureSink{}))

		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late"))
		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late again"))
		s.Report(contracts.NewReport(contracts.SeverityInfo, "RUN/START", "go"))

		assert.Equal(t, uint64(2), s.SeverityCount(contracts.SeverityWarning))
		assert.Equal(t, uint64(1), s.SeverityCount(contracts.SeverityInfo))
		assert.Equal(t, uint64(2), s.IDCount("DRV/LATE"))
		assert.Equal(t, uint64(1), s.IDCount("RUN/START"))
	})
}

func TestServerHook(t *testing.T) {
	t.Run("a vetoing hook suppresses emission entirely", func(t *testing.T) {
		display := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{}, WithDisplaySinks(display))
		h.SetSeverityAction(contracts.SeverityWarning,
			contracts.ActionDisplay|contracts.ActionCallHook)

		owner := &hookedOwner{name: "tb.env", allow: false}
		msg := contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late")
		msg.Owner = owner

		s.Report(msg)

		assert.Equal(t, 1, owner.called)
		assert.Empty(t, display.Lines())
		assert.Zero(t, s.SeverityCount(contracts.SeverityWarning))
	})

	t.Run("an approving hook lets the report through", func(t *testing.T) {
		display := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{}, WithDisplaySinks(display))
		h.SetSeverityAction(contracts.SeverityWarning,
			contracts.ActionDisplay|contracts.ActionCallHook)

		owner := &hookedOwner{name: "tb.env", allow: true}
		msg := contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late")
		msg.Owner = owner

		s.Report(msg)

		assert.Equal(t, 1, owner.called)
		assert.Len(t, display.Lines(), 1)
	})

	t.Run("owners without a hook are emitted as usual", func(t *testing.T) {
		display := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{}, WithDisplaySinks(display))
		h.SetSeverityAction(contracts.SeverityWarning,
			contracts.ActionDisplay|contracts.ActionCallHook)

		s.Report(contracts.NewReport(contracts.SeverityWarning, "DRV/LATE", "late"))

		assert.Len(t, display.Lines(), 1)
	})
}

func TestServerQuitLimit(t *testing.T) {
	t.Run("fires the exit handler once when the limit is reached", func(t *testing.T) {
		var exits int
		s, _ := newTestServer(t, &stubProcessor{},
			WithDisplaySinks(&captureSink{}),
			WithMaxQuitCount(2),
			WithExitHandler(func(*contracts.Report) { exits++ }))

		s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "one"))
		assert.Zero(t, exits)

		s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "two"))
		assert.Equal(t, 1, exits)

		s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "three"))
		assert.Equal(t, 1, exits)
		assert.Equal(t, 3, s.QuitCount())
	})

	t.Run("without a limit the count only accumulates", func(t *testing.T) {
		var exits int
		s, _ := newTestServer(t, &stubProcessor{},
			WithDisplaySinks(&captureSink{}),
			WithExitHandler(func(*contracts.Report) { exits++ }))

		for i := 0; i < 5; i++ {
			s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "x"))
		}

		assert.Zero(t, exits)
		assert.Equal(t, 5, s.QuitCount())
	})
}

func TestServerStopAndExit(t *testing.T) {
	t.Run("STOP invokes the stop handler", func(t *testing.T) {
		var stopped *contracts.Report
		s, h := newTestServer(t, &stubProcessor{},
			WithStopHandler(func(r *contracts.Report) { stopped = r }))
		h.SetSeverityAction(contracts.SeverityWarning, contracts.ActionStop)

		msg := contracts.NewReport(contracts.SeverityWarning, "RUN/HALT", "stop now")
		s.Report(msg)

		require.NotNil(t, stopped)
		assert.Equal(t, "RUN/HALT", stopped.ID)
	})

	t.Run("EXIT invokes the exit handler", func(t *testing.T) {
		var exited *contracts.Report
		s, _ := newTestServer(t, &stubProcessor{},
			WithDisplaySinks(&captureSink{}),
			WithExitHandler(func(r *contracts.Report) { exited = r }))

		s.Report(contracts.NewReport(contracts.SeverityFatal, "RUN/DEAD", "fatal"))

		require.NotNil(t, exited)
		assert.Equal(t, "RUN/DEAD", exited.ID)
	})

	t.Run("missing handlers degrade to log lines", func(t *testing.T) {
		s, h := newTestServer(t, &stubProcessor{})
		h.SetSeverityAction(contracts.SeverityWarning,
			contracts.ActionStop|contracts.ActionExit)

		assert.NotPanics(t, func() {
			s.Report(contracts.NewReport(contracts.SeverityWarning, "RUN/HALT", "x"))
		})
	})
}

func TestServerEmitDirect(t *testing.T) {
	t.Run("bypasses the gate and the chain", func(t *testing.T) {
		display := &captureSink{}
		proc := &stubProcessor{}
		s, h := newTestServer(t, proc, WithDisplaySinks(display))
		h.SetVerbosity(contracts.VerbosityNone)

		s.EmitDirect(contracts.SeverityError, "CATCHER/BADRETURN", "bad decision")

		assert.Zero(t, proc.called)
		require.Len(t, display.Lines(), 1)
		assert.Contains(t, display.Lines()[0], "[CATCHER/BADRETURN]")
	})

	t.Run("still honors an action of NONE", func(t *testing.T) {
		display := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{}, WithDisplaySinks(display))
		require.NoError(t, h.SetIDAction("SILENT", contracts.ActionNone))

		s.EmitDirect(contracts.SeverityInfo, "SILENT", "nothing")

		assert.Empty(t, display.Lines())
		assert.Zero(t, s.IDCount("SILENT"))
	})
}

func TestServerSummarize(t *testing.T) {
	t.Run("redirects the summary to the target and restores afterwards", func(t *testing.T) {
		target := &captureSink{}
		logged := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{}, WithLogSinks(logged))

		s.Summarize("--- catcher summary ---", target)

		require.Len(t, target.Lines(), 1)
		assert.Contains(t, target.Lines()[0], "--- catcher summary ---")
		assert.Empty(t, logged.Lines())

		_, ok := h.IDAction(SummaryID)
		assert.False(t, ok)
		_, ok = h.IDSink(SummaryID)
		assert.False(t, ok)
	})

	t.Run("restores a previously configured summary id", func(t *testing.T) {
		target := &captureSink{}
		standing := &captureSink{}
		s, h := newTestServer(t, &stubProcessor{})
		require.NoError(t, h.SetIDAction(SummaryID, contracts.ActionDisplay))
		require.NoError(t, h.SetIDSink(SummaryID, standing))

		s.Summarize("block", target)

		a, ok := h.IDAction(SummaryID)
		require.True(t, ok)
		assert.Equal(t, contracts.ActionDisplay, a)
		got, ok := h.IDSink(SummaryID)
		require.True(t, ok)
		assert.Same(t, standing, got)
	})

	t.Run("without a target the summary uses the stock route", func(t *testing.T) {
		display := &captureSink{}
		s, _ := newTestServer(t, &stubProcessor{}, WithDisplaySinks(display))

		s.Summarize("block", nil)

		require.Len(t, display.Lines(), 1)
		assert.Contains(t, display.Lines()[0], "[CATCHER/SUMMARY]")
	})
}

func TestServerWithExecutor(t *testing.T) {
	t.Run("demoted reports are emitted at the new severity", func(t *testing.T) {
		registry := catchers.NewRegistry()
		_, err := registry.Add(catchers.NewCatcherFunc("demote",
			func(p *catchers.Pass) catchers.Decision {
				p.SetSeverity(contracts.SeverityInfo)
				return catchers.Throw
			}))
		require.NoError(t, err)

		handler := NewHandler()
		stats := catchers.NewStats()
		exec, err := catchers.NewExecutor(registry, handler,
			catchers.WithExecutorStats(stats))
		require.NoError(t, err)

		display := &captureSink{}
		s, err := NewServer(exec, handler,
			WithServerLogger(quietLogger()),
			WithDisplaySinks(display))
		require.NoError(t, err)

		caught := s.Report(contracts.NewReport(contracts.SeverityError, "CHK/FAIL", "bad"))

		assert.False(t, caught)
		require.Len(t, display.Lines(), 1)
		assert.Contains(t, display.Lines()[0], "INFO")
		assert.Equal(t, uint64(1), stats.Snapshot().DemotedError)
		assert.Zero(t, s.QuitCount())
	})
}
