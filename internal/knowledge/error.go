package knowledge

import "errors"

var (
	// ErrInvalidInput is returned for out-of-bounds cells, impossible counts
	// and repeated observations. Nothing is mutated.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInconsistent means the observations contradict each other.
	ErrInconsistent = errors.New("inconsistent knowledge")

	ErrNoFixedPoint = errors.New("closure did not reach a fixed point")
)
