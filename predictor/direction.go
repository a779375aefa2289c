// Package predictor provides branch direction predictors.
//
// Every predictor shares one contract: Predict returns the guessed
// direction for a branch address and Update feeds back the actual
// direction once the branch resolves. Calls must alternate: one Update
// follows each Predict before the next Predict.
package predictor

import (
	"fmt"
	"strings"
)

// Direction is the direction a conditional branch goes.
type Direction uint8

const (
	// NotTaken means execution falls through to the next instruction.
	NotTaken Direction = iota
	// Taken means execution continues at the branch target.
	Taken
)

// DirectionOf converts a taken flag into a Direction.
func DirectionOf(taken bool) Direction {
	if taken {
		return Taken
	}
	return NotTaken
}

// IsTaken reports whether d is Taken.
func (d Direction) IsTaken() bool {
	return d == Taken
}

// String returns the trace spelling of the direction.
func (d Direction) String() string {
	switch d {
	case NotTaken:
		return "NOT_TAKEN"
	case Taken:
		return "TAKEN"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// ParseDirection parses TAKEN or NOT_TAKEN (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TAKEN":
		return Taken, nil
	case "NOT_TAKEN":
		return NotTaken, nil
	default:
		return NotTaken, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Metadata describes one static branch: where it lives and where it jumps.
type Metadata struct {
	Address uint32
	Target  uint32
}

// Forward reports whether the branch jumps to a higher address.
func (m Metadata) Forward() bool {
	return m.Target > m.Address
}
