package predictor

const (
	// GlobalHistoryBits is the width of the global history register.
	GlobalHistoryBits = 5
	// LocalHistoryBits is the width of each per-bucket history register.
	LocalHistoryBits = 4
	// LocalBuckets is the number of per-address history slots.
	LocalBuckets = 16

	globalTableSize = 1 << GlobalHistoryBits
	localTableSize  = 1 << LocalHistoryBits

	globalHistoryMask = globalTableSize - 1
	localHistoryMask  = localTableSize - 1
)

// shiftHistory shifts the outcome into the low bit of h and keeps the
// lowest width bits.
func shiftHistory(h uint32, d Direction, mask uint32) uint32 {
	h <<= 1
	if d == Taken {
		h |= 1
	}
	return h & mask
}

// bucketOf selects the local history slot from the low nibble of the
// branch address.
func bucketOf(address uint32) uint32 {
	return address & (LocalBuckets - 1)
}

// bitDirection maps a one-bit table entry to a direction.
func bitDirection(bit uint8) Direction {
	if bit == 0 {
		return NotTaken
	}
	return Taken
}

// GlobalHistory is a one-bit predictor indexed by a single global history
// register. The branch address does not select any state.
type GlobalHistory struct {
	history uint32
	table   [globalTableSize]uint8
}

// NewGlobalHistory creates a GlobalHistory with all state cleared.
func NewGlobalHistory() *GlobalHistory {
	return &GlobalHistory{}
}

// Predict returns the last outcome seen under the current history.
func (p *GlobalHistory) Predict(uint32) (Direction, error) {
	return bitDirection(p.table[p.history]), nil
}

// Update stores the outcome under the current history, then shifts the
// outcome into the history register.
func (p *GlobalHistory) Update(_ uint32, actual Direction) error {
	p.table[p.history] = uint8(actual)
	p.history = shiftHistory(p.history, actual, globalHistoryMask)
	return nil
}

// History returns the global history register.
func (p *GlobalHistory) History(uint32) (uint32, int) {
	return p.history, GlobalHistoryBits
}

// Reset clears the history register and the table.
func (p *GlobalHistory) Reset() {
	*p = GlobalHistory{}
}

// LocalHistory is a one-bit predictor with a separate history register and
// pattern table for each address bucket.
type LocalHistory struct {
	history [LocalBuckets]uint32
	table   [LocalBuckets][localTableSize]uint8
}

// NewLocalHistory creates a LocalHistory with all state cleared.
func NewLocalHistory() *LocalHistory {
	return &LocalHistory{}
}

// Predict returns the last outcome seen under the bucket's current history.
func (p *LocalHistory) Predict(address uint32) (Direction, error) {
	b := bucketOf(address)
	return bitDirection(p.table[b][p.history[b]]), nil
}

// Update stores the outcome in the bucket's table and advances the
// bucket's history register. Other buckets are untouched.
func (p *LocalHistory) Update(address uint32, actual Direction) error {
	b := bucketOf(address)
	h := p.history[b]
	p.table[b][h] = uint8(actual)
	p.history[b] = shiftHistory(h, actual, localHistoryMask)
	return nil
}

// History returns the history register of the bucket address maps to.
func (p *LocalHistory) History(address uint32) (uint32, int) {
	return p.history[bucketOf(address)], LocalHistoryBits
}

// Reset clears every history register and table entry.
func (p *LocalHistory) Reset() {
	*p = LocalHistory{}
}
