// Package sim drives a branch predictor over a trace and tallies how often
// its guesses were right.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/branchsim/btb"
	"github.com/sarchlab/branchsim/predictor"
	"github.com/sarchlab/branchsim/trace"
)

// Result describes one simulated branch.
type Result struct {
	trace.Record

	// Predicted is the direction the predictor guessed.
	Predicted predictor.Direction
	// Correct reports whether Predicted matched the actual direction.
	Correct bool

	// HistoryWidth is non-zero when the predictor exposes a history
	// register; History then holds its value before the update.
	History      uint32
	HistoryWidth int

	// TargetChecked is set when the branch was predicted taken and a
	// target buffer is attached.
	TargetChecked bool
	TargetHit     bool
}

// Observer receives every simulated branch in trace order.
type Observer interface {
	Observe(res Result)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(res Result)

// Observe calls f(res).
func (f ObserverFunc) Observe(res Result) {
	f(res)
}

// SimulatorOption is a functional option for configuring the Simulator.
type SimulatorOption func(*Simulator)

// WithTargetBuffer attaches a branch target buffer that is consulted on
// taken predictions and filled on taken outcomes.
func WithTargetBuffer(b *btb.Buffer) SimulatorOption {
	return func(s *Simulator) {
		s.targets = b
	}
}

// WithMetadata supplies the static branch list, used to fill the target
// buffer.
func WithMetadata(metadata []predictor.Metadata) SimulatorOption {
	return func(s *Simulator) {
		for _, m := range metadata {
			if _, ok := s.staticTargets[m.Address]; !ok {
				s.staticTargets[m.Address] = m.Target
			}
		}
	}
}

// WithObserver registers an observer for per-branch results.
func WithObserver(o Observer) SimulatorOption {
	return func(s *Simulator) {
		s.observers = append(s.observers, o)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) SimulatorOption {
	return func(s *Simulator) {
		s.logger = l
	}
}

// Simulator feeds trace records to a predictor one at a time: predict,
// compare, then update.
type Simulator struct {
	predictor     predictor.Predictor
	targets       *btb.Buffer
	staticTargets map[uint32]uint32
	observers     []Observer
	logger        *slog.Logger

	stats Stats
}

// NewSimulator creates a simulator around p.
func NewSimulator(p predictor.Predictor, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		predictor:     p,
		staticTargets: make(map[uint32]uint32),
		logger:        discardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Stats returns the statistics gathered so far.
func (s *Simulator) Stats() Stats {
	return s.stats
}

// Step simulates a single record. A prediction or update error leaves the
// statistics and the target buffer untouched.
func (s *Simulator) Step(rec trace.Record) (Result, error) {
	predicted, err := s.predictor.Predict(rec.Address)
	if err != nil {
		return Result{}, fmt.Errorf("predict branch at 0x%x: %w", rec.Address, err)
	}

	res := Result{
		Record:    rec,
		Predicted: predicted,
		Correct:   predicted == rec.Actual,
	}

	if in, ok := s.predictor.(predictor.HistoryInspector); ok {
		res.History, res.HistoryWidth = in.History(rec.Address)
	}

	if err := s.predictor.Update(rec.Address, rec.Actual); err != nil {
		return Result{}, fmt.Errorf("update branch at 0x%x: %w", rec.Address, err)
	}

	// The lookup precedes the insert so a first taken execution misses.
	if s.targets != nil && predicted == predictor.Taken {
		res.TargetChecked = true
		res.TargetHit = s.targets.Lookup(rec.Address).Hit
		if res.TargetHit {
			s.stats.TargetHits++
		} else {
			s.stats.TargetMisses++
		}
	}

	if s.targets != nil && rec.Actual == predictor.Taken {
		if target, ok := s.staticTargets[rec.Address]; ok {
			s.targets.Insert(rec.Address, target)
		}
	}

	s.stats.Predictions++
	if res.Correct {
		s.stats.Correct++
	} else {
		s.stats.Mispredictions++
	}

	s.logTrace("branch",
		slog.String("address", fmt.Sprintf("0x%x", rec.Address)),
		slog.String("predicted", predicted.String()),
		slog.String("actual", rec.Actual.String()),
		slog.Uint64("history", uint64(res.History)),
	)

	for _, o := range s.observers {
		o.Observe(res)
	}

	return res, nil
}

// Run simulates every record from src until it is exhausted. The context
// is checked between records.
func (s *Simulator) Run(ctx context.Context, src trace.Source) (Stats, error) {
	for {
		select {
		case <-ctx.Done():
			return s.stats, ctx.Err()
		default:
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s.stats, err
		}

		if _, err := s.Step(rec); err != nil {
			return s.stats, err
		}
	}

	s.logger.Debug("trace complete",
		slog.Uint64("predictions", s.stats.Predictions),
		slog.Uint64("correct", s.stats.Correct),
		slog.Float64("rate", s.stats.Rate()),
	)

	return s.stats, nil
}

// Reset clears statistics and returns the predictor and target buffer to
// their initial state.
func (s *Simulator) Reset() {
	if r, ok := s.predictor.(predictor.Resetter); ok {
		r.Reset()
	}
	if s.targets != nil {
		s.targets.Reset()
	}
	s.stats = Stats{}
}
