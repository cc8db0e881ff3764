package rabani

import "errors"

// Sentinel errors. Every failure returned by the sub-packages wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	// ErrConfiguration indicates an invalid generator or resize configuration.
	// It is returned before any data is produced.
	ErrConfiguration = errors.New("rabani: invalid configuration")
	// ErrPrecondition indicates an input that violates an operation's contract,
	// such as a non-binary image passed to descriptor extraction.
	ErrPrecondition = errors.New("rabani: precondition violated")
	// ErrLookup indicates a record category missing from the configured list, or
	// a configured simulation parameter missing from a record.
	ErrLookup = errors.New("rabani: category or parameter not found")
	// ErrDegenerateInput indicates an image whose topology makes a ratio
	// undefined (no particle pixels, or a background with no components).
	ErrDegenerateInput = errors.New("rabani: degenerate input")
)
