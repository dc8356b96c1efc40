// Package contracts provides the core report types shared by every layer of
// the uvm-core reporting pipeline.
//
// This package defines the vocabulary that flows through the system:
//   - Severity: ordered classification of a report (INFO to FATAL)
//   - Verbosity: emission threshold attached to a report
//   - Action: bitmask of dispositions (LOG, DISPLAY, COUNT, STOP, EXIT, CALL_HOOK)
//   - Report: the mutable record a catcher chain inspects and rewrites
//   - Attr: an ordered, named, typed attachment on a report
//   - Envelope: the wire form used when a report leaves the process
//
// Report values are created by reporting.Reporter handles and mutated only
// through the catcher pass that carries them; everything else treats them as
// read-only.
package contracts
