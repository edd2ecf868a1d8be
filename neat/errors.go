package neat

import "errors"

var (
	// ErrInputShapeMismatch is returned when a network is evaluated with an
	// input vector whose length differs from the configured input count.
	ErrInputShapeMismatch = errors.New("input shape mismatch")

	// ErrCorruptSnapshot is returned when a persisted pool snapshot is
	// truncated or malformed. The pool is left unchanged.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
