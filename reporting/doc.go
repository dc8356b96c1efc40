// Package reporting provides the emission side of the report pipeline:
// reporters that issue reports on behalf of named components, the handler
// holding verbosity thresholds and default actions, the composer that turns
// a report into its printed form, and the server that runs each report
// through the catcher chain and executes the surviving action bits.
//
// A minimal setup wires a handler and a catcher executor into a server and
// hands reporters out to components:
//
//	handler := reporting.NewHandler()
//	registry := catchers.NewRegistry()
//	exec, _ := catchers.NewExecutor(registry, handler)
//	server, _ := reporting.NewServer(exec, handler,
//	    reporting.WithDisplaySinks(console.New()))
//
//	rep := reporting.NewReporter(server, "tb.env.driver")
//	rep.Warning("DRV/TIMEOUT", "response not seen in 200 cycles")
//
// Reports flow reporter -> verbosity gate -> catcher chain -> action
// execution. A caught report stops at the chain and never reaches a sink.
package reporting
