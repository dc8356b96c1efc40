package reporting

import (
	"fmt"
	"sync"

	"github.com/accellera-official/uvm-core/catchers"
	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/sinks"
)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerVerbosity sets the global verbosity threshold. Reports with a
// verbosity above the threshold are never emitted.
func WithHandlerVerbosity(v contracts.Verbosity) HandlerOption {
	return func(h *Handler) {
		h.verbosity = v
	}
}

// Handler resolves the configured action, verbosity gate and destination for
// every severity/id combination. It is the pipeline's policy table: catchers
// rewrite individual reports, the handler decides what classes of reports do
// by default.
//
// Action resolution is three-tiered: a (severity, id) override wins over an
// id override, which wins over the per-severity default. The
// catchers.CategoryID sentinel deliberately matches no override, so
// resolving with it always yields the per-severity default.
type Handler struct {
	mu           sync.RWMutex
	sevActions   map[contracts.Severity]contracts.Action
	idActions    map[string]contracts.Action
	sevIDActions map[contracts.Severity]map[string]contracts.Action
	verbosity    contracts.Verbosity
	idVerbosity  map[string]contracts.Verbosity
	idSinks      map[string]sinks.Sink
}

// NewHandler creates a handler with the stock defaults: INFO and WARNING
// display, ERROR displays and counts, FATAL displays and exits, and the
// global verbosity threshold sits at MEDIUM.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		sevActions: map[contracts.Severity]contracts.Action{
			contracts.SeverityInfo:    contracts.ActionDisplay,
			contracts.SeverityWarning: contracts.ActionDisplay,
			contracts.SeverityError:   contracts.ActionDisplay | contracts.ActionCount,
			contracts.SeverityFatal:   contracts.ActionDisplay | contracts.ActionExit,
		},
		idActions:    make(map[string]contracts.Action),
		sevIDActions: make(map[contracts.Severity]map[string]contracts.Action),
		verbosity:    contracts.VerbosityMedium,
		idVerbosity:  make(map[string]contracts.Verbosity),
		idSinks:      make(map[string]sinks.Sink),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// DefaultAction resolves the action for a severity and id. Passing
// catchers.CategoryID returns the per-severity default.
func (h *Handler) DefaultAction(severity contracts.Severity, id string) contracts.Action {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if byID, ok := h.sevIDActions[severity]; ok {
		if a, ok := byID[id]; ok {
			return a
		}
	}
	if a, ok := h.idActions[id]; ok {
		return a
	}
	return h.sevActions[severity]
}

// IsEnabled reports whether a report with the given verbosity and id passes
// the emission gate. The per-id threshold, when set, replaces the global
// one. Severity does not influence the gate: non-info reports are issued at
// verbosity NONE and therefore always pass.
func (h *Handler) IsEnabled(v contracts.Verbosity, _ contracts.Severity, id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	threshold := h.verbosity
	if t, ok := h.idVerbosity[id]; ok {
		threshold = t
	}
	return v <= threshold
}

// SetSeverityAction replaces the per-severity default action.
func (h *Handler) SetSeverityAction(severity contracts.Severity, a contracts.Action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sevActions[severity] = a
}

// SetIDAction sets an action override for a specific id.
func (h *Handler) SetIDAction(id string, a contracts.Action) error {
	if err := checkID(id); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.idActions[id] = a
	return nil
}

// ClearIDAction removes an id action override.
func (h *Handler) ClearIDAction(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.idActions, id)
}

// IDAction returns the id action override, if one is set.
func (h *Handler) IDAction(id string) (contracts.Action, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.idActions[id]
	return a, ok
}

// SetSeverityIDAction sets an action override for a severity and id pair,
// the strongest tier of the resolution.
func (h *Handler) SetSeverityIDAction(severity contracts.Severity, id string, a contracts.Action) error {
	if err := checkID(id); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	byID, ok := h.sevIDActions[severity]
	if !ok {
		byID = make(map[string]contracts.Action)
		h.sevIDActions[severity] = byID
	}
	byID[id] = a
	return nil
}

// SetVerbosity replaces the global verbosity threshold.
func (h *Handler) SetVerbosity(v contracts.Verbosity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verbosity = v
}

// Verbosity returns the global verbosity threshold.
func (h *Handler) Verbosity() contracts.Verbosity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.verbosity
}

// SetIDVerbosity sets a per-id verbosity threshold.
func (h *Handler) SetIDVerbosity(id string, v contracts.Verbosity) error {
	if err := checkID(id); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.idVerbosity[id] = v
	return nil
}

// SetIDSink redirects LOG output for a specific id to the given sink.
func (h *Handler) SetIDSink(id string, s sinks.Sink) error {
	if err := checkID(id); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.idSinks[id] = s
	return nil
}

// ClearIDSink removes an id sink redirect.
func (h *Handler) ClearIDSink(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.idSinks, id)
}

// IDSink returns the sink redirect for an id, if one is set.
func (h *Handler) IDSink(id string) (sinks.Sink, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.idSinks[id]
	return s, ok
}

func checkID(id string) error {
	if id == catchers.CategoryID {
		return fmt.Errorf("id %q is reserved for category resolution", id)
	}
	return nil
}

var _ catchers.ActionResolver = (*Handler)(nil)
