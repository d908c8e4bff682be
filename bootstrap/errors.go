package bootstrap

import "errors"

var (
	// ErrConfiguration reports an invalid block length or frequency.
	ErrConfiguration = errors.New("bootstrap: invalid configuration")
	// ErrEmptyInput reports a nil series or one without rows.
	ErrEmptyInput = errors.New("bootstrap: empty input series")
	// ErrDegenerateInput reports a series too short for the frequency to
	// yield a usable reference grid.
	ErrDegenerateInput = errors.New("bootstrap: degenerate input series")
	// ErrDuplicateTimestamp reports a series whose index is not unique.
	ErrDuplicateTimestamp = errors.New("bootstrap: duplicate timestamp")
)
