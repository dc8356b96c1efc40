package catchers

import "strings"

// DebugFlags alter how the executor treats catcher decisions and mutations.
// They exist for bring-up and triage of the catcher configuration itself;
// only the executor reads them, once at the start of each pass.
type DebugFlags uint32

const (
	// DebugIgnoreCatch makes the executor run the full chain and report the
	// final verdict as not-caught even when catchers return Caught. The
	// caught counters are not incremented.
	DebugIgnoreCatch DebugFlags = 1 << iota
	// DebugDiscardMutations makes the executor revert every mutation a
	// catcher applied before the next catcher (or the emission engine) sees
	// the report. Decisions still stand.
	DebugDiscardMutations
)

// Has reports whether every bit in mask is set.
func (f DebugFlags) Has(mask DebugFlags) bool {
	return f&mask == mask
}

// String renders the set flags joined by '|', or "NONE".
func (f DebugFlags) String() string {
	if f == 0 {
		return "NONE"
	}
	var parts []string
	if f.Has(DebugIgnoreCatch) {
		parts = append(parts, "IGNORE_CATCH")
	}
	if f.Has(DebugDiscardMutations) {
		parts = append(parts, "DISCARD_MUTATIONS")
	}
	return strings.Join(parts, "|")
}
