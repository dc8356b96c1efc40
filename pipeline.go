// Copyright 2025 UVM-Core Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package uvm wires the report pipeline together: reporters feed a
// verbosity gate, reports run through the registered catcher chain, and
// surviving reports are executed against the configured sinks.
package uvm

import (
	"fmt"
	"log/slog"

	"github.com/accellera-official/uvm-core/catchers"
	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/internal/trail"
	"github.com/accellera-official/uvm-core/reporting"
	"github.com/accellera-official/uvm-core/sinks"
	"github.com/accellera-official/uvm-core/sinks/console"
)

// Pipeline is the assembled report pipeline. Create one per process, hand
// out reporters to components and register catchers against its registry.
type Pipeline struct {
	handler  *reporting.Handler
	registry *catchers.Registry
	stats    *catchers.Stats
	executor *catchers.Executor
	server   *reporting.Server
	trail    *trail.Recorder
	owned    []sinks.Sink
}

// New assembles a pipeline. Without options it displays reports on a
// colored console sink at medium verbosity.
func New(options ...Option) (*Pipeline, error) {
	cfg := &config{
		logger:    slog.Default(),
		verbosity: contracts.VerbosityMedium,
	}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	handler := reporting.NewHandler(reporting.WithHandlerVerbosity(cfg.verbosity))
	registry := catchers.NewRegistry(
		catchers.WithRegistryLogger(cfg.logger),
		catchers.WithTracing(cfg.tracing),
	)
	stats := catchers.NewStats()

	execOpts := []catchers.ExecutorOption{
		catchers.WithExecutorLogger(cfg.logger),
		catchers.WithExecutorStats(stats),
	}
	var recorder *trail.Recorder
	if cfg.trailSize > 0 {
		recorder = trail.NewRecorder(trail.WithMaxEntries(cfg.trailSize))
		execOpts = append(execOpts, catchers.WithExecutorTrail(recorder))
	}
	executor, err := catchers.NewExecutor(registry, handler, execOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catcher executor: %w", err)
	}

	display := cfg.displaySinks
	if len(display) == 0 {
		display = []sinks.Sink{console.New()}
	}
	serverOpts := []reporting.ServerOption{
		reporting.WithServerLogger(cfg.logger),
		reporting.WithDisplaySinks(display...),
		reporting.WithLogSinks(cfg.logSinks...),
		reporting.WithMaxQuitCount(cfg.maxQuit),
	}
	if cfg.exitHandler != nil {
		serverOpts = append(serverOpts, reporting.WithExitHandler(cfg.exitHandler))
	}
	if cfg.stopHandler != nil {
		serverOpts = append(serverOpts, reporting.WithStopHandler(cfg.stopHandler))
	}
	server, err := reporting.NewServer(executor, handler, serverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create report server: %w", err)
	}

	owned := make([]sinks.Sink, 0, len(display)+len(cfg.logSinks))
	owned = append(owned, display...)
	owned = append(owned, cfg.logSinks...)

	return &Pipeline{
		handler:  handler,
		registry: registry,
		stats:    stats,
		executor: executor,
		server:   server,
		trail:    recorder,
		owned:    owned,
	}, nil
}

// Reporter creates a reporter owned by this pipeline for the named
// component.
func (p *Pipeline) Reporter(name string) *reporting.Reporter {
	return reporting.NewReporter(p.server, name)
}

// Catchers returns the catcher registry.
func (p *Pipeline) Catchers() *catchers.Registry {
	return p.registry
}

// Handler returns the policy table holding verbosity thresholds and
// default actions.
func (p *Pipeline) Handler() *reporting.Handler {
	return p.handler
}

// Server returns the emission engine.
func (p *Pipeline) Server() *reporting.Server {
	return p.server
}

// Stats returns the catcher accounting.
func (p *Pipeline) Stats() *catchers.Stats {
	return p.stats
}

// Trail returns the pass recorder, or nil when tracing was not enabled
// with WithTrail.
func (p *Pipeline) Trail() *trail.Recorder {
	return p.trail
}

// SetDebugFlags replaces the catcher debug flags for subsequent reports.
func (p *Pipeline) SetDebugFlags(flags catchers.DebugFlags) {
	p.executor.SetDebugFlags(flags)
}

// Summary returns the catcher accounting block.
func (p *Pipeline) Summary() string {
	return p.stats.Summarize()
}

// Summarize emits the catcher accounting block through the pipeline. A
// non-nil target diverts it there instead of the standard sinks.
func (p *Pipeline) Summarize(target sinks.Sink) {
	p.server.Summarize(p.stats.Summarize(), target)
}

// Close releases every sink the pipeline was built with.
func (p *Pipeline) Close() error {
	var firstErr error
	seen := make(map[sinks.Sink]bool, len(p.owned))
	for _, s := range p.owned {
		if seen[s] {
			continue
		}
		seen[s] = true
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// config holds pipeline configuration.
type config struct {
	logger       *slog.Logger
	verbosity    contracts.Verbosity
	displaySinks []sinks.Sink
	logSinks     []sinks.Sink
	maxQuit      int
	trailSize    int
	tracing      bool
	exitHandler  func(r *contracts.Report)
	stopHandler  func(r *contracts.Report)
}

// Option configures the pipeline.
type Option func(*config)

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithVerbosity sets the global verbosity threshold.
func WithVerbosity(v contracts.Verbosity) Option {
	return func(cfg *config) {
		cfg.verbosity = v
	}
}

// WithDisplaySinks replaces the default console display sink.
func WithDisplaySinks(ss ...sinks.Sink) Option {
	return func(cfg *config) {
		cfg.displaySinks = append(cfg.displaySinks, ss...)
	}
}

// WithLogSinks sets the sinks LOG-action reports are written to.
func WithLogSinks(ss ...sinks.Sink) Option {
	return func(cfg *config) {
		cfg.logSinks = append(cfg.logSinks, ss...)
	}
}

// WithMaxQuitCount arms the quit limit: after that many COUNT-action
// reports the exit handler fires.
func WithMaxQuitCount(max int) Option {
	return func(cfg *config) {
		cfg.maxQuit = max
	}
}

// WithTrail buffers the last size chain passes for inspection through
// Trail.
func WithTrail(size int) Option {
	return func(cfg *config) {
		cfg.trailSize = size
	}
}

// WithCatcherTracing logs registry changes and catcher decisions.
func WithCatcherTracing(enabled bool) Option {
	return func(cfg *config) {
		cfg.tracing = enabled
	}
}

// WithExitHandler sets the callback for EXIT actions and the quit limit.
func WithExitHandler(fn func(r *contracts.Report)) Option {
	return func(cfg *config) {
		cfg.exitHandler = fn
	}
}

// WithStopHandler sets the callback for STOP actions.
func WithStopHandler(fn func(r *contracts.Report)) Option {
	return func(cfg *config) {
		cfg.stopHandler = fn
	}
}
