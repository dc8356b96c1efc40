package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accellera-official/uvm-core/contracts"
)

type namedOwner string

func (o namedOwner) Name() string { return string(o) }

func TestStandardComposer(t *testing.T) {
	c := StandardComposer()

	t.Run("renders the full layout", func(t *testing.T) {
		r := contracts.NewReport(contracts.SeverityWarning, "DRV/TIMEOUT", "response not seen")
		r.Owner = namedOwner("tb.env.driver")
		r.File = "driver.go"
		r.Line = 42
		r.Context = "phase run"
		r.AddInt("cycles", 200)
		r.AddString("port", "axi0")

		assert.Equal(t,
			"WARNING driver.go(42) @ tb.env.driver [DRV/TIMEOUT] response not seen - phase run {cycles=200, port=axi0}",
			c.Compose(r))
	})

	t.Run("omits empty parts", func(t *testing.T) {
		r := contracts.NewReport(contracts.SeverityError, "CFG/MISSING", "no config found")

		assert.Equal(t, "ERROR [CFG/MISSING] no config found", c.Compose(r))
	})

	t.Run("keeps the call site without an owner", func(t *testing.T) {
		r := contracts.NewReport(contracts.SeverityInfo, "RUN/START", "starting")
		r.File = "main.go"
		r.Line = 7

		assert.Equal(t, "INFO main.go(7) [RUN/START] starting", c.Compose(r))
	})

	t.Run("func adapter satisfies the interface", func(t *testing.T) {
		short := ComposerFunc(func(r *contracts.Report) string { return r.ID })
		r := contracts.NewReport(contracts.SeverityInfo, "JUST/ID", "ignored")

		assert.Equal(t, "JUST/ID", short.Compose(r))
	})
}
