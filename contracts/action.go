package contracts

import (
	"fmt"
	"strings"
)

// Action is a bitmask describing what the emission engine does with a report
// that survives the catcher chain. Bits combine freely; ActionNone drops the
// report entirely.
type Action uint32

const (
	ActionLog Action = 1 << iota
	ActionDisplay
	ActionCount
	ActionStop
	ActionExit
	ActionCallHook
)

// ActionNone is the empty action set.
const ActionNone Action = 0

var actionNames = []struct {
	bit  Action
	name string
}{
	{ActionLog, "LOG"},
	{ActionDisplay, "DISPLAY"},
	{ActionCount, "COUNT"},
	{ActionStop, "STOP"},
	{ActionExit, "EXIT"},
	{ActionCallHook, "CALL_HOOK"},
}

// Has reports whether every bit in mask is set in a.
func (a Action) Has(mask Action) bool {
	return a&mask == mask
}

// With returns a with the given bits added.
func (a Action) With(mask Action) Action {
	return a | mask
}

// Without returns a with the given bits cleared.
func (a Action) Without(mask Action) Action {
	return a &^ mask
}

// String renders the set bits joined by '|', or "NONE" for the empty set.
func (a Action) String() string {
	if a == ActionNone {
		return "NONE"
	}
	parts := make([]string, 0, len(actionNames))
	rest := a
	for _, an := range actionNames {
		if rest&an.bit != 0 {
			parts = append(parts, an.name)
			rest &^= an.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseAction converts a '|'-separated list of action names to a bitmask.
// "NONE" parses to the empty set.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NONE") {
		return ActionNone, nil
	}
	var a Action
	for _, part := range strings.Split(s, "|") {
		part = strings.ToUpper(strings.TrimSpace(part))
		found := false
		for _, an := range actionNames {
			if an.name == part {
				a |= an.bit
				found = true
				break
			}
		}
		if !found {
			return ActionNone, fmt.Errorf("%w %q", ErrUnknownAction, part)
		}
	}
	return a, nil
}
