package catchers

import (
	"sync"
	"testing"

	"github.com/accellera-official/uvm-core/contracts"
	"github.com/stretchr/testify/assert"
)

func TestStats(t *testing.T) {
	t.Run("counters accumulate per original severity", func(t *testing.T) {
		s := NewStats()
		s.RecordCaught(contracts.SeverityFatal)
		s.RecordCaught(contracts.SeverityError)
		s.RecordCaught(contracts.SeverityError)
		s.RecordDemoted(contracts.SeverityWarning)

		snap := s.Snapshot()
		assert.Equal(t, uint64(1), snap.CaughtFatal)
		assert.Equal(t, uint64(2), snap.CaughtError)
		assert.Equal(t, uint64(0), snap.CaughtWarning)
		assert.Equal(t, uint64(1), snap.DemotedWarning)
		assert.Equal(t, uint64(4), snap.Total())
	})

	t.Run("info severity is ignored", func(t *testing.T) {
		s := NewStats()
		s.RecordCaught(contracts.SeverityInfo)
		s.RecordDemoted(contracts.SeverityInfo)

		assert.Equal(t, uint64(0), s.Snapshot().Total())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		s := NewStats()
		s.RecordCaught(contracts.SeverityError)

		snap := s.Snapshot()
		s.RecordCaught(contracts.SeverityError)

		assert.Equal(t, uint64(1), snap.CaughtError)
		assert.Equal(t, uint64(2), s.Snapshot().CaughtError)
	})

	t.Run("reset zeroes everything", func(t *testing.T) {
		s := NewStats()
		s.RecordCaught(contracts.SeverityFatal)
		s.RecordDemoted(contracts.SeverityError)

		s.Reset()

		assert.Equal(t, StatsSnapshot{}, s.Snapshot())
	})

	t.Run("concurrent increments do not lose counts", func(t *testing.T) {
		s := NewStats()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					s.RecordCaught(contracts.SeverityError)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, uint64(800), s.Snapshot().CaughtError)
	})
}

func TestStatsSummarize(t *testing.T) {
	t.Run("renders the fixed six-line block", func(t *testing.T) {
		s := NewStats()
		s.RecordDemoted(contracts.SeverityFatal)
		s.RecordDemoted(contracts.SeverityError)
		s.RecordDemoted(contracts.SeverityError)
		s.RecordCaught(contracts.SeverityWarning)

		expected := "--- catcher summary ---\n" +
			"demoted-fatal   :    1\n" +
			"demoted-error   :    2\n" +
			"demoted-warning :    0\n" +
			"caught-fatal    :    0\n" +
			"caught-error    :    0\n" +
			"caught-warning  :    1\n"

		assert.Equal(t, expected, s.Summarize())
	})

	t.Run("zero counters still render every line", func(t *testing.T) {
		s := NewStats()
		out := s.Summarize()

		assert.Contains(t, out, "demoted-fatal   :    0")
		assert.Contains(t, out, "caught-warning  :    0")
	})
}
