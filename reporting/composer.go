package reporting

import (
	"fmt"
	"strings"

	"github.com/accellera-official/uvm-core/contracts"
)

// Composer turns a report into its single-line printed form.
type Composer interface {
	Compose(r *contracts.Report) string
}

// ComposerFunc adapts a function to the Composer interface.
type ComposerFunc func(r *contracts.Report) string

// Compose implements Composer.
func (f ComposerFunc) Compose(r *contracts.Report) string {
	return f(r)
}

// StandardComposer returns the stock layout:
//
//	SEVERITY file(line) @ scope [ID] text - context {attr=value, ...}
//
// Empty parts are omitted.
func StandardComposer() Composer {
	return ComposerFunc(composeStandard)
}

func composeStandard(r *contracts.Report) string {
	var b strings.Builder
	b.WriteString(r.Severity.String())
	if r.File != "" {
		fmt.Fprintf(&b, " %s(%d)", r.File, r.Line)
	}
	if scope := r.Scope(); scope != "" {
		b.WriteString(" @ ")
		b.WriteString(scope)
	}
	fmt.Fprintf(&b, " [%s] %s", r.ID, r.Text)
	if r.Context != "" {
		b.WriteString(" - ")
		b.WriteString(r.Context)
	}
	if len(r.Attrs) > 0 {
		b.WriteString(" {")
		for i, a := range r.Attrs {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", a.Name, a.Value())
		}
		b.WriteString("}")
	}
	return b.String()
}
