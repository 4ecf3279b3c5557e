// Package arena is a scoped bump allocator with strict LIFO free order,
// the external collaborator spec.md §5 requires for all per-step
// allocations (stages, block arrays, joint/contact pointer arrays, the
// SIMD constraint block, the bullet-body array). Grounded on the scratch-
// vector reuse discipline visible throughout the teacher's physics
// package (e.g. solver.go's sol.v0/v1/v2 fields, reused every call rather
// than reallocated) generalized from "a few fixed reused fields" to a
// general bump allocator with an explicit Mark/Release pair.
package arena

import "unsafe"

// Arena is a bump allocator over typed slices. Every allocation is a Go
// slice backed by the arena's single growable buffer; callers must
// release allocations in LIFO order via Mark/Release so the buffer can be
// reused without zeroing (matching the spec's "strict LIFO free order"
// requirement and its determinism rationale: stable pointer identities
// across a step's allocations for debug-validation hooks).
type Arena struct {
	buf []byte
}

// New creates an Arena with the given initial byte capacity.
func New(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, capacity)}
}

// Mark returns the current allocation offset, to be passed to a later
// Release call.
func (a *Arena) Mark() int { return len(a.buf) }

// Release truncates the arena back to a mark obtained from Mark. Marks
// must be released in LIFO order; releasing out of order corrupts any
// allocation made between the two marks that is still in use.
func (a *Arena) Release(mark int) { a.buf = a.buf[:mark] }

// Reset releases the entire arena, equivalent to Release(0).
func (a *Arena) Reset() { a.buf = a.buf[:0] }

// Bytes returns n fresh, zeroed bytes from the arena.
func (a *Arena) Bytes(n int) []byte {
	start := len(a.buf)
	grow(a, n)
	b := a.buf[start : start+n : start+n]
	for i := range b {
		b[i] = 0
	}
	return b
}

// AllocSlice returns a fresh, zeroed slice of n Ts carved out of the
// arena. The arena's backing buffer is kept byte-aligned to 8 bytes so
// any concrete T used by this module (structs of float32/int32/pointers)
// lands on a valid alignment.
func AllocSlice[T any](a *Arena, n int) []T {
	if n == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	raw := a.Bytes(size*n + 8)
	// align the start of the usable region to 8 bytes.
	start := uintptr(unsafe.Pointer(&raw[0]))
	pad := (8 - int(start%8)) % 8
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[pad])), n)
}

func grow(a *Arena, n int) {
	need := len(a.buf) + n
	if need <= cap(a.buf) {
		a.buf = a.buf[:need]
		return
	}
	grown := make([]byte, need, need*2+64)
	copy(grown, a.buf)
	a.buf = grown
}
