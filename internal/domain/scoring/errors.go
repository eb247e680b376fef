package scoring

import "errors"

var (
	// ErrUnknownMode is returned for a mode no analyzer handles.
	ErrUnknownMode = errors.New("unknown analysis mode")
	// ErrDegeneratePose is returned when coincident joints left a score undefined.
	ErrDegeneratePose = errors.New("degenerate pose produced a non-finite score")
)
