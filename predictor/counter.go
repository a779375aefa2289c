package predictor

// Counter is a 2-bit saturating counter.
// States: 0=Strongly Not Taken, 1=Weakly Not Taken, 2=Weakly Taken,
// 3=Strongly Taken.
type Counter uint8

// CounterMax is the saturation ceiling of a Counter.
const CounterMax Counter = 3

// Direction returns Taken for the upper two states.
func (c Counter) Direction() Direction {
	if c >= 2 {
		return Taken
	}
	return NotTaken
}

// Train moves the counter one step toward the outcome, clamping to [0, 3].
func (c Counter) Train(actual Direction) Counter {
	if actual == Taken {
		if c < CounterMax {
			return c + 1
		}
		return c
	}

	if c > 0 {
		return c - 1
	}
	return c
}

// GlobalCounter is a table of 2-bit counters indexed by the global
// history register.
type GlobalCounter struct {
	history uint32
	table   [globalTableSize]Counter
}

// NewGlobalCounter creates a GlobalCounter with every counter at 0.
func NewGlobalCounter() *GlobalCounter {
	return &GlobalCounter{}
}

// Predict reads the counter selected by the current history.
func (p *GlobalCounter) Predict(uint32) (Direction, error) {
	return p.table[p.history].Direction(), nil
}

// Update trains the counter under the current history, then shifts the
// outcome into the history register.
func (p *GlobalCounter) Update(_ uint32, actual Direction) error {
	p.table[p.history] = p.table[p.history].Train(actual)
	p.history = shiftHistory(p.history, actual, globalHistoryMask)
	return nil
}

// History returns the global history register.
func (p *GlobalCounter) History(uint32) (uint32, int) {
	return p.history, GlobalHistoryBits
}

// Counter returns the counter at history index h.
func (p *GlobalCounter) Counter(h uint32) Counter {
	return p.table[h&globalHistoryMask]
}

// Reset clears the history register and every counter.
func (p *GlobalCounter) Reset() {
	*p = GlobalCounter{}
}

// LocalCounter keeps a history register and a table of 2-bit counters per
// address bucket.
type LocalCounter struct {
	history [LocalBuckets]uint32
	table   [LocalBuckets][localTableSize]Counter
}

// NewLocalCounter creates a LocalCounter with all state cleared.
func NewLocalCounter() *LocalCounter {
	return &LocalCounter{}
}

// Predict reads the counter selected by the bucket's current history.
func (p *LocalCounter) Predict(address uint32) (Direction, error) {
	b := bucketOf(address)
	return p.table[b][p.history[b]].Direction(), nil
}

// Update trains the bucket's counter and advances its history register.
func (p *LocalCounter) Update(address uint32, actual Direction) error {
	b := bucketOf(address)
	h := p.history[b]
	p.table[b][h] = p.table[b][h].Train(actual)
	p.history[b] = shiftHistory(h, actual, localHistoryMask)
	return nil
}

// History returns the history register of the bucket address maps to.
func (p *LocalCounter) History(address uint32) (uint32, int) {
	return p.history[bucketOf(address)], LocalHistoryBits
}

// Counter returns the counter for the bucket of address at history index h.
func (p *LocalCounter) Counter(address, h uint32) Counter {
	return p.table[bucketOf(address)][h&localHistoryMask]
}

// Reset clears every history register and counter.
func (p *LocalCounter) Reset() {
	*p = LocalCounter{}
}
