package sim

// Stats holds prediction statistics for a run.
type Stats struct {
	// Predictions is the total number of branch predictions made.
	Predictions uint64
	// Correct is the number of correct predictions.
	Correct uint64
	// Mispredictions is the number of incorrect predictions.
	Mispredictions uint64
	// TargetHits is the number of taken predictions whose target was
	// found in the branch target buffer.
	TargetHits uint64
	// TargetMisses is the number of taken predictions with no cached target.
	TargetMisses uint64
}

// Rate returns the fraction of correct predictions.
func (s Stats) Rate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions)
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	return s.Rate() * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// TargetHitRate returns the target buffer hit rate as a percentage.
func (s Stats) TargetHitRate() float64 {
	total := s.TargetHits + s.TargetMisses
	if total == 0 {
		return 0
	}
	return float64(s.TargetHits) / float64(total) * 100
}
