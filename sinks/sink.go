// Package sinks defines the destinations composed reports are written to.
//
// The emission engine fans a surviving report out to one or more sinks
// according to its action bits: DISPLAY actions go to display-class sinks,
// LOG actions to log-class sinks. Sink implementations live in the
// subpackages (console, file, amqp).
package sinks

import (
	"context"

	"github.com/accellera-official/uvm-core/contracts"
)

// Sink receives composed reports. Write must be safe for concurrent use and
// should not block the emitting path; sinks that talk to slow media buffer
// internally.
type Sink interface {
	Write(ctx context.Context, r *contracts.Report, composed string) error
	Close() error
}

// Func adapts a plain function to the Sink interface with a no-op Close.
type Func func(ctx context.Context, r *contracts.Report, composed string) error

// Write implements Sink.
func (f Func) Write(ctx context.Context, r *contracts.Report, composed string) error {
	return f(ctx, r, composed)
}

// Close implements Sink.
func (f Func) Close() error {
	return nil
}

// Discard is a sink that drops everything. Useful in tests and as a muted
// redirect target.
var Discard Sink = Func(func(context.Context, *contracts.Report, string) error {
	return nil
})
