package contracts

import "errors"

// Parse errors. Wrapped values carry the rejected input; match with
// errors.Is.
var (
	ErrUnknownSeverity  = errors.New("unknown severity")
	ErrUnknownVerbosity = errors.New("unknown verbosity")
	ErrUnknownAction    = errors.New("unknown action")
)
