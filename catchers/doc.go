// Package catchers implements the report interception chain: an ordered set
// of pluggable catchers that inspect, rewrite, or suppress reports before
// the emission engine acts on them.
//
// The moving parts:
//   - Catcher: decision callback invoked once per report, returning Throw or Caught
//   - Registry: ordered per-owner (or wildcard) catcher registrations
//   - Executor: runs one chain pass per report with re-entrancy protection
//   - Pass: the view of the in-flight report handed to each catcher
//   - Stats: demoted/caught accounting per original severity
//
// Example usage:
//
//	registry := catchers.NewRegistry()
//	registry.Add(catchers.NewCatcherFunc("mute-ring-noise", func(p *catchers.Pass) catchers.Decision {
//		if p.ID() == "RING/UNDERFLOW" {
//			return catchers.Caught
//		}
//		if p.Severity() == contracts.SeverityFatal {
//			p.SetSeverity(contracts.SeverityError)
//		}
//		return catchers.Throw
//	}))
//
//	executor, _ := catchers.NewExecutor(registry, resolver)
//	caught := executor.Process(report)
//
// Catchers run in registration order. A Caught decision stops the pass and
// suppresses the report; Throw hands it to the next catcher. Catchers hold
// no per-report state of their own: everything they need to know about the
// report in flight comes through the Pass.
package catchers
