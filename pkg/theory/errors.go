// Package theory provides the scale model, note types and weighted selection
// shared by every note generator.
package theory

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScale is returned for empty or malformed interval lists and
	// unknown scale names.
	ErrInvalidScale = errors.New("invalid scale")

	// ErrInvalidParameter is returned for out-of-domain generation parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNoSelection is returned by WeightedChoice when no weight is positive.
	ErrNoSelection = fmt.Errorf("%w: no positive weight to select from", ErrInvalidParameter)

	// ErrRangeExhausted marks a bounded search that found no legal candidate.
	// It is recovered locally by the generators and never returned to callers.
	ErrRangeExhausted = errors.New("no legal candidate in range")
)
