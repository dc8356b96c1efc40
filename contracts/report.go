package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Owner identifies the report object a report was issued through. The
// reference is non-owning: a Report never manages its owner's lifetime, and
// the owner is used only as a registry scope key and a hook target.
type Owner interface {
	Name() string
}

// AttrKind discriminates the typed value held by an Attr.
type AttrKind int

const (
	KindInt AttrKind = iota
	KindString
	KindObject
)

// String returns the lower-case kind name.
func (k AttrKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Attr is a named, typed attachment on a report. Attrs keep the order in
// which they were added.
type Attr struct {
	Name string
	Kind AttrKind
	Int  int64
	Str  string
	Obj  any
}

// IntAttr builds an integer attribute.
func IntAttr(name string, v int64) Attr {
	return Attr{Name: name, Kind: KindInt, Int: v}
}

// StringAttr builds a string attribute.
func StringAttr(name string, v string) Attr {
	return Attr{Name: name, Kind: KindString, Str: v}
}

// ObjectAttr builds an object-reference attribute. The reference is
// non-owning and is never serialized beyond its printed form.
func ObjectAttr(name string, v any) Attr {
	return Attr{Name: name, Kind: KindObject, Obj: v}
}

// Value returns the attribute's payload as an untyped value.
func (a Attr) Value() any {
	switch a.Kind {
	case KindInt:
		return a.Int
	case KindString:
		return a.Str
	default:
		return a.Obj
	}
}

// Report is the mutable record that travels the catcher chain. Reporter
// handles create Reports; during a chain pass catchers rewrite them through
// the pass object, and afterwards the emission engine reads the committed
// values. A Report is not safe for concurrent mutation.
type Report struct {
	// TraceID correlates a report across sinks and the decision trail.
	TraceID   string
	Timestamp time.Time

	Severity  Severity
	ID        string
	Text      string
	Verbosity Verbosity
	Action    Action
	Context   string
	File      string
	Line      int

	// Owner is the report object this report was issued through, or nil for
	// ownerless reports. Non-owning reference.
	Owner Owner

	Attrs []Attr
}

// NewReport creates a report with a fresh trace id and a UTC timestamp.
// Action is left at ActionNone; the emission engine assigns the resolved
// default before the chain runs.
func NewReport(severity Severity, id, text string) *Report {
	return &Report{
		TraceID:   uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Severity:  severity,
		ID:        id,
		Text:      text,
	}
}

// AddInt appends an integer attribute, preserving insertion order.
func (r *Report) AddInt(name string, v int64) {
	r.Attrs = append(r.Attrs, IntAttr(name, v))
}

// AddString appends a string attribute, preserving insertion order.
func (r *Report) AddString(name string, v string) {
	r.Attrs = append(r.Attrs, StringAttr(name, v))
}

// AddObject appends an object-reference attribute, preserving insertion
// order.
func (r *Report) AddObject(name string, v any) {
	r.Attrs = append(r.Attrs, ObjectAttr(name, v))
}

// Scope returns the owner name, or the empty string for ownerless reports.
func (r *Report) Scope() string {
	if r.Owner == nil {
		return ""
	}
	return r.Owner.Name()
}

// Clone returns a structural copy of the report. The attribute slice is
// copied; owner and object references stay shared because they are
// non-owning.
func (r *Report) Clone() *Report {
	cp := *r
	if len(r.Attrs) > 0 {
		cp.Attrs = make([]Attr, len(r.Attrs))
		copy(cp.Attrs, r.Attrs)
	}
	return &cp
}
