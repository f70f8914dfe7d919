// Package speed defines the ordered set of playback speed multipliers.
package speed

import (
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// ErrEmptyCycle is returned when a cycle has no multipliers.
var ErrEmptyCycle = errors.New("speed cycle is empty")

// ErrNonPositive is returned when a multiplier is zero or negative.
var ErrNonPositive = errors.New("speed multiplier must be positive")

// ErrDuplicate is returned when a multiplier appears more than once.
var ErrDuplicate = errors.New("speed multiplier repeated")

// Cycle is a fixed ordered sequence of positive multipliers.
type Cycle []float64

// Default is the cycle used when none is configured.
var Default = Cycle{1, 2, 4}

// First returns the initial speed of the cycle (1 for an empty cycle).
func (c Cycle) First() float64 {
	if len(c) == 0 {
		return 1
	}
	return c[0]
}

// Next returns the multiplier following current, wrapping at the end.
// A speed that is not part of the cycle maps to the first element.
func (c Cycle) Next(current float64) float64 {
	if len(c) == 0 {
		return 1
	}
	idx := c.index(current)
	if idx < 0 {
		return c[0]
	}
	return c[(idx+1)%len(c)]
}

func (c Cycle) index(s float64) int {
	for i, v := range c {
		if v == s {
			return i
		}
	}
	return -1
}

// Validate checks that the cycle is usable.
func (c Cycle) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCycle
	}
	for i, v := range c {
		if v <= 0 {
			return errors.Wrapf(ErrNonPositive, "%v", v)
		}
		if c.index(v) != i {
			return errors.Wrapf(ErrDuplicate, "%s", Label(v))
		}
	}
	return nil
}

// Label formats a multiplier for display: 1 -> "1x", 1.5 -> "1.5x".
func Label(s float64) string {
	return humanize.Ftoa(s) + "x"
}
