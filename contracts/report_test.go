package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityOrdering(t *testing.T) {
	t.Run("severities compare with plain operators", func(t *testing.T) {
		assert.True(t, SeverityFatal > SeverityError)
		assert.True(t, SeverityError > SeverityWarning)
		assert.True(t, SeverityWarning > SeverityInfo)
	})

	t.Run("string names are canonical", func(t *testing.T) {
		assert.Equal(t, "FATAL", SeverityFatal.String())
		assert.Equal(t, "ERROR", SeverityError.String())
		assert.Equal(t, "WARNING", SeverityWarning.String())
		assert.Equal(t, "INFO", SeverityInfo.String())
	})

	t.Run("parse is case-insensitive", func(t *testing.T) {
		sev, err := ParseSeverity("warning")
		assert.NoError(t, err)
		assert.Equal(t, SeverityWarning, sev)

		sev, err = ParseSeverity("Fatal")
		assert.NoError(t, err)
		assert.Equal(t, SeverityFatal, sev)

		_, err = ParseSeverity("loud")
		assert.ErrorIs(t, err, ErrUnknownSeverity)
	})
}

func TestActionBitmask(t *testing.T) {
	t.Run("bits combine and test independently", func(t *testing.T) {
		a := ActionDisplay | ActionCount
		assert.True(t, a.Has(ActionDisplay))
		assert.True(t, a.Has(ActionCount))
		assert.False(t, a.Has(ActionExit))
		assert.True(t, a.Has(ActionDisplay|ActionCount))
		assert.False(t, a.Has(ActionDisplay|ActionExit))
	})

	t.Run("with and without return modified copies", func(t *testing.T) {
		a := ActionDisplay
		b := a.With(ActionLog)
		assert.Equal(t, ActionDisplay, a)
		assert.True(t, b.Has(ActionLog))
		assert.Equal(t, ActionDisplay, b.Without(ActionLog))
	})

	t.Run("string renders set bits in declaration order", func(t *testing.T) {
		assert.Equal(t, "NONE", ActionNone.String())
		assert.Equal(t, "DISPLAY", ActionDisplay.String())
		assert.Equal(t, "LOG|DISPLAY|COUNT", (ActionCount | ActionLog | ActionDisplay).String())
		assert.Equal(t, "DISPLAY|EXIT", (ActionExit | ActionDisplay).String())
	})

	t.Run("parse accepts pipe-separated names", func(t *testing.T) {
		a, err := ParseAction("display|count")
		assert.NoError(t, err)
		assert.Equal(t, ActionDisplay|ActionCount, a)

		a, err = ParseAction("NONE")
		assert.NoError(t, err)
		assert.Equal(t, ActionNone, a)

		_, err = ParseAction("DISPLAY|SHOUT")
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
}

func TestVerbosityLevels(t *testing.T) {
	t.Run("named levels have fixed values", func(t *testing.T) {
		assert.Equal(t, Verbosity(0), VerbosityNone)
		assert.Equal(t, Verbosity(200), VerbosityMedium)
		assert.Equal(t, Verbosity(500), VerbosityDebug)
	})

	t.Run("parse accepts names and bare integers", func(t *testing.T) {
		v, err := ParseVerbosity("high")
		assert.NoError(t, err)
		assert.Equal(t, VerbosityHigh, v)

		v, err = ParseVerbosity("150")
		assert.NoError(t, err)
		assert.Equal(t, Verbosity(150), v)

		_, err = ParseVerbosity("loudest")
		assert.ErrorIs(t, err, ErrUnknownVerbosity)
	})
}

func TestNewReport(t *testing.T) {
	t.Run("assigns trace id and UTC timestamp", func(t *testing.T) {
		r := NewReport(SeverityError, "TEST/ID", "boom")
		assert.NotEmpty(t, r.TraceID)
		assert.WithinDuration(t, time.Now().UTC(), r.Timestamp, time.Minute)
		assert.Equal(t, SeverityError, r.Severity)
		assert.Equal(t, "TEST/ID", r.ID)
		assert.Equal(t, "boom", r.Text)
		assert.Equal(t, ActionNone, r.Action)
	})

	t.Run("trace ids are unique", func(t *testing.T) {
		a := NewReport(SeverityInfo, "A", "")
		b := NewReport(SeverityInfo, "A", "")
		assert.NotEqual(t, a.TraceID, b.TraceID)
	})

	t.Run("attributes keep insertion order", func(t *testing.T) {
		r := NewReport(SeverityInfo, "ATTR", "attrs")
		r.AddInt("count", 3)
		r.AddString("phase", "run")
		r.AddInt("cycle", 41)

		if assert.Len(t, r.Attrs, 3) {
			assert.Equal(t, "count", r.Attrs[0].Name)
			assert.Equal(t, int64(3), r.Attrs[0].Int)
			assert.Equal(t, "phase", r.Attrs[1].Name)
			assert.Equal(t, "run", r.Attrs[1].Str)
			assert.Equal(t, "cycle", r.Attrs[2].Name)
		}
	})
}

func TestReportClone(t *testing.T) {
	t.Run("clone is structurally independent", func(t *testing.T) {
		r := NewReport(SeverityWarning, "CLONE", "original")
		r.AddString("key", "value")

		cp := r.Clone()
		cp.Severity = SeverityInfo
		cp.Text = "changed"
		cp.AddString("extra", "x")

		assert.Equal(t, SeverityWarning, r.Severity)
		assert.Equal(t, "original", r.Text)
		assert.Len(t, r.Attrs, 1)
		assert.Len(t, cp.Attrs, 2)
	})

	t.Run("clone shares the owner reference", func(t *testing.T) {
		owner := fakeOwner("scope.a")
		r := NewReport(SeverityInfo, "OWN", "")
		r.Owner = owner
		assert.Equal(t, owner, r.Clone().Owner)
	})
}

type fakeOwner string

func (o fakeOwner) Name() string { return string(o) }

func TestEnvelopeFlattening(t *testing.T) {
	t.Run("carries identity and composed text", func(t *testing.T) {
		r := NewReport(SeverityError, "ENV/ID", "wire me")
		r.Context = "ctx"
		r.File = "dut.go"
		r.Line = 42
		r.Owner = fakeOwner("top.env")

		env := NewEnvelope(r, "composed line")
		assert.Equal(t, r.TraceID, env.TraceID)
		assert.Equal(t, "ERROR", env.Severity)
		assert.Equal(t, "ENV/ID", env.ID)
		assert.Equal(t, "top.env", env.Scope)
		assert.Equal(t, "composed line", env.Composed)
		assert.Equal(t, 42, env.Line)
	})

	t.Run("attributes flatten to printed form", func(t *testing.T) {
		r := NewReport(SeverityInfo, "ENV/ATTR", "")
		r.AddInt("n", 7)
		r.AddString("s", "str")
		r.AddObject("o", fakeOwner("obj"))
		r.AddObject("nil", nil)

		env := NewEnvelope(r, "")
		if assert.Len(t, env.Attrs, 4) {
			assert.Equal(t, EnvelopeAttr{Name: "n", Kind: "int", Value: "7"}, env.Attrs[0])
			assert.Equal(t, EnvelopeAttr{Name: "s", Kind: "string", Value: "str"}, env.Attrs[1])
			assert.Equal(t, "obj", env.Attrs[2].Value)
			assert.Equal(t, "<nil>", env.Attrs[3].Value)
		}
	})
}
