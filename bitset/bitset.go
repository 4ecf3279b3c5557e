// Package bitset provides the fixed per-worker scratch bitsets used
// throughout the solver (spec.md §5's "per-worker scratch + final
// OR-reduce" pattern: enlargedSimBitSet, awakeIslandBitSet,
// jointStateBitSet). No teacher precedent — grounded directly on the
// spec's description of the pattern.
package bitset

import "math/bits"

// BitSet is a growable bitset backed by a []uint64 word array.
type BitSet struct {
	words []uint64
}

// New creates a BitSet with room for at least n bits.
func New(n int) *BitSet {
	return &BitSet{words: make([]uint64, wordsFor(n))}
}

func wordsFor(n int) int { return (n + 63) / 64 }

// Grow ensures the bitset has room for at least n bits.
func (b *BitSet) Grow(n int) {
	need := wordsFor(n)
	if need > len(b.words) {
		grown := make([]uint64, need)
		copy(grown, b.words)
		b.words = grown
	}
}

// Set sets bit i, growing the bitset if necessary.
func (b *BitSet) Set(i int) {
	b.Grow(i + 1)
	b.words[i/64] |= 1 << uint(i%64)
}

// Clear unsets bit i.
func (b *BitSet) Clear(i int) {
	if i/64 >= len(b.words) {
		return
	}
	b.words[i/64] &^= 1 << uint(i%64)
}

// Get reports whether bit i is set.
func (b *BitSet) Get(i int) bool {
	if i/64 >= len(b.words) {
		return false
	}
	return b.words[i/64]&(1<<uint(i%64)) != 0
}

// Reset clears every bit without shrinking the backing array.
func (b *BitSet) Reset() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// OrInto ORs every word of src into dst, growing dst if src is larger.
// This is the per-worker-scratch-then-OR-reduce primitive spec.md §5
// names as the pattern to apply to enlargedSimBitSet/awakeIslandBitSet/
// jointStateBitSet: each worker mutates its own BitSet race-free, then
// the main worker ORs them together serially after the join.
func OrInto(dst *BitSet, src *BitSet) {
	dst.Grow(len(src.words) * 64)
	for i, w := range src.words {
		dst.words[i] |= w
	}
}

// ForEachSet calls fn with the index of every set bit, ascending.
func (b *BitSet) ForEachSet(fn func(i int)) {
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(wi*64 + tz)
			w &= w - 1
		}
	}
}
