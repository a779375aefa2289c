// Package btb provides a branch target buffer built on Akita cache
// components.
package btb

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// entryBytes is the span of addresses one directory block covers. Trace
// addresses need not be aligned, so every address gets its own entry.
const entryBytes = 1

// Config holds branch target buffer parameters.
type Config struct {
	// Sets is the number of sets. Must be > 0.
	Sets int
	// Ways is the associativity. Must be > 0.
	Ways int
}

// DefaultConfig returns a 64-set, 4-way buffer (256 entries).
func DefaultConfig() Config {
	return Config{
		Sets: 64,
		Ways: 4,
	}
}

// Validate checks that the geometry is usable.
func (c Config) Validate() error {
	if c.Sets <= 0 {
		return fmt.Errorf("btb sets must be > 0, got %d", c.Sets)
	}
	if c.Ways <= 0 {
		return fmt.Errorf("btb ways must be > 0, got %d", c.Ways)
	}
	return nil
}

// Entries returns the total capacity.
func (c Config) Entries() int {
	return c.Sets * c.Ways
}

// LookupResult contains the result of a target lookup.
type LookupResult struct {
	// Hit indicates whether the branch had a cached target.
	Hit bool
	// Target is the cached target address (valid only on a hit).
	Target uint32
}

// Statistics holds buffer statistics.
type Statistics struct {
	Lookups   uint64
	Hits      uint64
	Misses    uint64
	Inserts   uint64
	Evictions uint64
}

// HitRate returns the fraction of lookups that hit.
func (s Statistics) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

// Buffer maps branch addresses to their most recent taken target.
type Buffer struct {
	config Config

	// Akita directory for tag and LRU management
	directory *akitacache.DirectoryImpl

	// targets is indexed by (setID * ways + wayID)
	targets []uint32

	stats Statistics
}

// New creates a branch target buffer.
func New(config Config) (*Buffer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Buffer{
		config: config,
		directory: akitacache.NewDirectory(
			config.Sets,
			config.Ways,
			entryBytes,
			akitacache.NewLRUVictimFinder(),
		),
		targets: make([]uint32, config.Entries()),
	}, nil
}

// Config returns the buffer configuration.
func (b *Buffer) Config() Config {
	return b.config
}

// Stats returns buffer statistics.
func (b *Buffer) Stats() Statistics {
	return b.stats
}

func (b *Buffer) blockIndex(block *akitacache.Block) int {
	return block.SetID*b.config.Ways + block.WayID
}

func blockAddr(pc uint32) uint64 {
	return uint64(pc) / entryBytes * entryBytes
}

// Lookup returns the cached target for the branch at pc.
func (b *Buffer) Lookup(pc uint32) LookupResult {
	b.stats.Lookups++

	block := b.directory.Lookup(0, blockAddr(pc))
	if block == nil || !block.IsValid {
		b.stats.Misses++
		return LookupResult{}
	}

	b.stats.Hits++
	b.directory.Visit(block) // Update LRU

	return LookupResult{
		Hit:    true,
		Target: b.targets[b.blockIndex(block)],
	}
}

// Insert records target as the destination of the branch at pc, evicting
// the least recently used entry of the set when it is full.
func (b *Buffer) Insert(pc, target uint32) {
	addr := blockAddr(pc)

	block := b.directory.Lookup(0, addr)
	if block == nil || !block.IsValid {
		block = b.directory.FindVictim(addr)
		if block == nil {
			return
		}
		if block.IsValid {
			b.stats.Evictions++
		}
		block.Tag = addr
		block.IsValid = true
		b.stats.Inserts++
	}

	b.targets[b.blockIndex(block)] = target
	b.directory.Visit(block)
}

// Invalidate removes the entry for the branch at pc, if any.
func (b *Buffer) Invalidate(pc uint32) {
	block := b.directory.Lookup(0, blockAddr(pc))
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// Len returns the number of valid entries.
func (b *Buffer) Len() int {
	n := 0
	for _, set := range b.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}
	return n
}

// Reset invalidates every entry and clears statistics.
func (b *Buffer) Reset() {
	b.directory.Reset()
	for i := range b.targets {
		b.targets[i] = 0
	}
	b.stats = Statistics{}
}
