package contracts

import (
	"fmt"
	"strconv"
	"time"
)

// Envelope is the wire form of a report used when it leaves the process
// through a broker sink. Object-reference attributes are flattened to their
// printed form; they do not round-trip.
type Envelope struct {
	TraceID   string         `json:"traceId" msgpack:"traceId"`
	Timestamp time.Time      `json:"timestamp" msgpack:"timestamp"`
	Severity  string         `json:"severity" msgpack:"severity"`
	ID        string         `json:"id" msgpack:"id"`
	Text      string         `json:"text" msgpack:"text"`
	Verbosity int            `json:"verbosity" msgpack:"verbosity"`
	Action    string         `json:"action" msgpack:"action"`
	Context   string         `json:"context,omitempty" msgpack:"context,omitempty"`
	File      string         `json:"file,omitempty" msgpack:"file,omitempty"`
	Line      int            `json:"line,omitempty" msgpack:"line,omitempty"`
	Scope     string         `json:"scope,omitempty" msgpack:"scope,omitempty"`
	Composed  string         `json:"composed,omitempty" msgpack:"composed,omitempty"`
	Attrs     []EnvelopeAttr `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
}

// EnvelopeAttr is the flattened wire form of an Attr.
type EnvelopeAttr struct {
	Name  string `json:"name" msgpack:"name"`
	Kind  string `json:"kind" msgpack:"kind"`
	Value string `json:"value" msgpack:"value"`
}

// NewEnvelope flattens a report and its composed text into wire form.
func NewEnvelope(r *Report, composed string) *Envelope {
	env := &Envelope{
		TraceID:   r.TraceID,
		Timestamp: r.Timestamp,
		Severity:  r.Severity.String(),
		ID:        r.ID,
		Text:      r.Text,
		Verbosity: int(r.Verbosity),
		Action:    r.Action.String(),
		Context:   r.Context,
		File:      r.File,
		Line:      r.Line,
		Scope:     r.Scope(),
		Composed:  composed,
	}
	for _, a := range r.Attrs {
		env.Attrs = append(env.Attrs, flattenAttr(a))
	}
	return env
}

func flattenAttr(a Attr) EnvelopeAttr {
	ea := EnvelopeAttr{Name: a.Name, Kind: a.Kind.String()}
	switch a.Kind {
	case KindInt:
		ea.Value = strconv.FormatInt(a.Int, 10)
	case KindString:
		ea.Value = a.Str
	default:
		ea.Value = printedForm(a.Obj)
	}
	return ea
}

func printedForm(v any) string {
	if v == nil {
		return "<nil>"
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}
