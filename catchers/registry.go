package catchers

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/accellera-official/uvm-core/contracts"
)

// Registration is a catcher's slot in a registry. The enabled flag can be
// toggled at any time without affecting the catcher's position.
type Registration struct {
	catcher Catcher
	scope   contracts.Owner // nil for the wildcard scope
	enabled atomic.Bool
}

// Name returns the registered catcher's name.
func (r *Registration) Name() string {
	return r.catcher.Name()
}

// Catcher returns the registered catcher.
func (r *Registration) Catcher() Catcher {
	return r.catcher
}

// Enabled reports whether the catcher participates in chain passes.
func (r *Registration) Enabled() bool {
	return r.enabled.Load()
}

// SetEnabled toggles participation. Disabled catchers are skipped without
// being invoked.
func (r *Registration) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used by the dispatch trace.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithTracing enables the dispatch trace from construction.
func WithTracing(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.tracing = enabled
	}
}

// Registry holds catcher registrations in registration order, one ordered
// list per owner scope plus a wildcard list that applies to reports whose
// owner has no registrations of its own. Registration is append-only; there
// is no removal.
type Registry struct {
	mu       sync.RWMutex
	wildcard []*Registration
	scoped   map[contracts.Owner][]*Registration
	logger   *slog.Logger
	tracing  bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		scoped: make(map[contracts.Owner][]*Registration),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Add appends a catcher to the wildcard scope.
func (r *Registry) Add(c Catcher) (*Registration, error) {
	return r.AddTo(nil, c)
}

// AddTo appends a catcher to the given owner's scope; a nil owner means the
// wildcard scope. The catcher starts enabled.
func (r *Registry) AddTo(owner contracts.Owner, c Catcher) (*Registration, error) {
	if c == nil {
		return nil, fmt.Errorf("catcher cannot be nil")
	}

	reg := &Registration{catcher: c, scope: owner}
	reg.enabled.Store(true)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner == nil {
		r.wildcard = append(r.wildcard, reg)
	} else {
		r.scoped[owner] = append(r.scoped[owner], reg)
	}
	r.trace("catcher registered", "catcher", c.Name(), "scope", scopeName(owner))
	return reg, nil
}

// Lookup returns the first registration with the given name, scanning the
// owner's scope in registration order; a nil owner scans the wildcard scope.
// Names are not required to be unique, so later registrations with the same
// name stay shadowed until the first is inspected directly.
func (r *Registry) Lookup(owner contracts.Owner, name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.scopeLocked(owner) {
		if reg.Name() == name {
			r.trace("catcher lookup", "catcher", name, "scope", scopeName(owner), "found", true)
			return reg, true
		}
	}
	r.trace("catcher lookup", "catcher", name, "scope", scopeName(owner), "found", false)
	return nil, false
}

// SetEnabled toggles the first registration with the given name in the
// owner's scope.
func (r *Registry) SetEnabled(owner contracts.Owner, name string, enabled bool) error {
	reg, ok := r.Lookup(owner, name)
	if !ok {
		return fmt.Errorf("no catcher named %q in scope %q", name, scopeName(owner))
	}
	reg.SetEnabled(enabled)

	r.mu.RLock()
	r.trace("catcher toggled", "catcher", name, "enabled", enabled)
	r.mu.RUnlock()
	return nil
}

// Len returns the total number of registrations across all scopes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.wildcard)
	for _, regs := range r.scoped {
		n += len(regs)
	}
	return n
}

// Names returns the catcher names in the owner's scope in registration
// order; a nil owner lists the wildcard scope.
func (r *Registry) Names(owner contracts.Owner) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.scopeLocked(owner)
	names := make([]string, len(regs))
	for i, reg := range regs {
		names[i] = reg.Name()
	}
	return names
}

// SetTracing toggles the dispatch trace.
func (r *Registry) SetTracing(enabled bool) {
	r.mu.Lock()
	r.tracing = enabled
	r.mu.Unlock()
}

// resolve returns a snapshot of the registrations a chain pass iterates for
// the given owner: the owner's own list when it has one, the wildcard list
// otherwise.
func (r *Registry) resolve(owner contracts.Owner) []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.wildcard
	if owner != nil {
		if regs, ok := r.scoped[owner]; ok && len(regs) > 0 {
			src = regs
		}
	}
	out := make([]*Registration, len(src))
	copy(out, src)
	return out
}

// suspendTracing turns the dispatch trace off and returns its prior state.
func (r *Registry) suspendTracing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.tracing
	r.tracing = false
	return prev
}

// scopeLocked returns the live list for a scope; callers hold r.mu.
func (r *Registry) scopeLocked(owner contracts.Owner) []*Registration {
	if owner == nil {
		return r.wildcard
	}
	return r.scoped[owner]
}

// trace logs a dispatch-trace line; callers hold r.mu.
func (r *Registry) trace(msg string, args ...any) {
	if r.tracing {
		r.logger.Debug(msg, args...)
	}
}

func scopeName(owner contracts.Owner) string {
	if owner == nil {
		return "*"
	}
	return owner.Name()
}
