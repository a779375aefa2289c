package predictor

import "fmt"

// AlwaysNotTaken predicts every branch falls through.
type AlwaysNotTaken struct{}

// Predict always returns NotTaken.
func (AlwaysNotTaken) Predict(uint32) (Direction, error) {
	return NotTaken, nil
}

// Update is a no-op.
func (AlwaysNotTaken) Update(uint32, Direction) error {
	return nil
}

// AlwaysTaken predicts every branch is taken.
type AlwaysTaken struct{}

// Predict always returns Taken.
func (AlwaysTaken) Predict(uint32) (Direction, error) {
	return Taken, nil
}

// Update is a no-op.
func (AlwaysTaken) Update(uint32, Direction) error {
	return nil
}

// BTFNT is the backward-taken, forward-not-taken static heuristic. Loops
// close with backward branches, so those are predicted taken.
type BTFNT struct {
	// targets maps branch address to its static target.
	targets map[uint32]uint32
}

// NewBTFNT creates a BTFNT predictor over the static branch list. When an
// address appears more than once, the first entry wins.
func NewBTFNT(metadata []Metadata) *BTFNT {
	targets := make(map[uint32]uint32, len(metadata))
	for _, m := range metadata {
		if _, ok := targets[m.Address]; ok {
			continue
		}
		targets[m.Address] = m.Target
	}

	return &BTFNT{targets: targets}
}

// Predict returns NotTaken for forward branches and Taken for backward
// ones. An address with no metadata yields ErrUnknownBranch.
func (p *BTFNT) Predict(address uint32) (Direction, error) {
	target, ok := p.targets[address]
	if !ok {
		return NotTaken, fmt.Errorf("%w at 0x%x", ErrUnknownBranch, address)
	}

	m := Metadata{Address: address, Target: target}
	if m.Forward() {
		return NotTaken, nil
	}
	return Taken, nil
}

// Update is a no-op; the heuristic never adapts.
func (p *BTFNT) Update(uint32, Direction) error {
	return nil
}

// Len returns the number of distinct branches known to the predictor.
func (p *BTFNT) Len() int {
	return len(p.targets)
}
