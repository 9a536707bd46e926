package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrQuadrantOutOfRange indicates a body refers to a quadrant outside 0..3.
	ErrQuadrantOutOfRange = errors.New("dynamo: quadrant id out of range")

	// ErrInvalidArena indicates a non-positive arena size or a wall thicker than the arena.
	ErrInvalidArena = errors.New("dynamo: invalid arena dimensions")

	// ErrInvalidParams indicates a physical constant outside its valid range.
	ErrInvalidParams = errors.New("dynamo: parameter out of valid bounds")

	// ErrSourceExhausted indicates a scripted input source has no more ticks.
	ErrSourceExhausted = errors.New("dynamo: input source exhausted")
)

// ParamError names the offending parameter and wraps ErrInvalidParams.
type ParamError struct {
	Name  string
	Value float64
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%g", ErrInvalidParams, e.Name, e.Value)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParams
}
