package predictor

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPredictor is returned when a predictor name is not recognized.
	ErrUnknownPredictor = errors.New("unknown branch predictor")
	// ErrUnknownBranch is returned by BTFNT for an address that has no
	// static metadata.
	ErrUnknownBranch = errors.New("no metadata for branch")
	// ErrInvalidDirection is returned when a direction string cannot be parsed.
	ErrInvalidDirection = errors.New("invalid branch direction")
)

// Predictor guesses branch directions and learns from actual outcomes.
//
// Implementations are not safe for concurrent use.
type Predictor interface {
	// Predict returns the predicted direction of the branch at address.
	// It does not modify predictor state.
	Predict(address uint32) (Direction, error)
	// Update records the actual direction of the branch at address.
	Update(address uint32, actual Direction) error
}

// HistoryInspector is implemented by predictors that keep a branch history
// register. History returns the register consulted for address and its
// width in bits.
type HistoryInspector interface {
	History(address uint32) (value uint32, width int)
}

// Resetter is implemented by predictors that can return to their initial
// state.
type Resetter interface {
	Reset()
}

// Kind names a prediction strategy.
type Kind string

// The supported strategies.
const (
	KindAlwaysNotTaken Kind = "ANT"
	KindAlwaysTaken    Kind = "AT"
	KindBTFNT          Kind = "BTFNT"
	KindLastGlobal     Kind = "LTG"
	KindLastLocal      Kind = "LTL"
	KindTwoBitGlobal   Kind = "2BG"
	KindTwoBitLocal    Kind = "2BL"
)

// Kinds lists every supported strategy in canonical order.
func Kinds() []Kind {
	return []Kind{
		KindAlwaysNotTaken,
		KindAlwaysTaken,
		KindBTFNT,
		KindLastGlobal,
		KindLastLocal,
		KindTwoBitGlobal,
		KindTwoBitLocal,
	}
}

// ParseKind converts a strategy name into a Kind. Names must match exactly.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPredictor, name)
}

// New creates the predictor for kind. The metadata slice is only used by
// BTFNT; the other strategies ignore it.
func New(kind Kind, metadata []Metadata) (Predictor, error) {
	switch kind {
	case KindAlwaysNotTaken:
		return AlwaysNotTaken{}, nil
	case KindAlwaysTaken:
		return AlwaysTaken{}, nil
	case KindBTFNT:
		return NewBTFNT(metadata), nil
	case KindLastGlobal:
		return NewGlobalHistory(), nil
	case KindLastLocal:
		return NewLocalHistory(), nil
	case KindTwoBitGlobal:
		return NewGlobalCounter(), nil
	case KindTwoBitLocal:
		return NewLocalCounter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredictor, string(kind))
	}
}

// NewByName parses name and creates the matching predictor.
func NewByName(name string, metadata []Metadata) (Predictor, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, metadata)
}
