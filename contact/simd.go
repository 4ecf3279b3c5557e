package contact

import (
	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/blas/blas32"
)

// SIMDCapable reports whether the host can usefully batch contact solving
// in 4-wide lanes. Grounded on pthm-soup/systems/simd_bench_test.go's
// cpu.X86.HasAVX2/cpu.ARM64.HasASIMD gate for choosing a vectorized code
// path only when the hardware actually benefits from it.
func SIMDCapable() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}

// LaneWidth is the batch size the SIMD path groups same-color contact
// constraints into, chosen to match a 128-bit SSE/NEON register holding
// four float32 lanes.
const LaneWidth = 4

// Batch holds up to LaneWidth independent, same-color contacts' normal-
// solve inputs packed into blas32 vectors. Only the normal-impulse inner
// loop (the hottest part of SolveContact, run for every point every
// substep every iteration) is batched; friction and restitution stay
// scalar since their clamp bounds differ per-lane in a way that doesn't
// vectorize cleanly without mask registers Go doesn't expose.
type Batch struct {
	n int

	normalMass   blas32.Vector
	separation   blas32.Vector
	relVelN      blas32.Vector
	biasRate     blas32.Vector
	massScale    blas32.Vector
	impulseScale blas32.Vector
	impulse      blas32.Vector

	// basis[lane] is a one-hot vector used to pull a single lane back out
	// of a packed blas32.Vector via blas32.Dot, since blas32 has no
	// indexed-element accessor of its own.
	basis [LaneWidth]blas32.Vector
}

// NewBatch allocates lane storage for up to LaneWidth contacts.
func NewBatch() *Batch {
	mk := func() blas32.Vector {
		return blas32.Vector{N: LaneWidth, Inc: 1, Data: make([]float32, LaneWidth)}
	}
	b := &Batch{
		normalMass:   mk(),
		separation:   mk(),
		relVelN:      mk(),
		biasRate:     mk(),
		massScale:    mk(),
		impulseScale: mk(),
		impulse:      mk(),
	}
	for lane := 0; lane < LaneWidth; lane++ {
		b.basis[lane] = mk()
		b.basis[lane].Data[lane] = 1
	}
	return b
}

// Load packs up to LaneWidth constraints' first-point normal-solve scalars
// into the batch's lanes, zero-padding unused lanes so they contribute no
// impulse. impulse carries each point's current NormalImpulse so the
// impulse-scale (biased-pass) term has real data to reduce over instead of
// being hardcoded to zero.
func (b *Batch) Load(cs []*Constraint, useBias bool) {
	b.n = len(cs)
	if b.n > LaneWidth {
		b.n = LaneWidth
	}
	for i := 0; i < LaneWidth; i++ {
		if i < b.n {
			p := &cs[i].Manifold.Points[0]
			b.normalMass.Data[i] = p.NormalMass
			b.separation.Data[i] = p.AdjustedSeparation
			b.relVelN.Data[i] = p.RelativeVelocity
			b.impulse.Data[i] = p.NormalImpulse
			if useBias {
				b.biasRate.Data[i] = cs[i].Soft.BiasRate
				b.massScale.Data[i] = cs[i].Soft.MassScale
				b.impulseScale.Data[i] = cs[i].Soft.ImpulseScale
			} else {
				b.biasRate.Data[i] = 0
				b.massScale.Data[i] = 1
				b.impulseScale.Data[i] = 0
			}
		} else {
			b.normalMass.Data[i] = 0
			b.separation.Data[i] = 0
			b.relVelN.Data[i] = 0
			b.biasRate.Data[i] = 0
			b.massScale.Data[i] = 0
			b.impulseScale.Data[i] = 0
			b.impulse.Data[i] = 0
		}
	}
}

// lane pulls element i back out of a packed vector via blas32.Dot against
// the matching one-hot basis vector, rather than indexing v.Data directly.
func (b *Batch) lane(v blas32.Vector, i int) float32 {
	return blas32.Dot(v, b.basis[i])
}

// SolveNormalImpulse computes the 4 lanes' new normal impulses in one
// pass, returning them in lane order. bias = biasRate .* separation has no
// blas32 equivalent (blas32 exposes no vector*vector Hadamard product, only
// uniform-scalar Scal/Axpy), so it's combined lane by lane; the result is
// then folded into relVelN with a single blas32.Axpy, and every scalar
// pulled out of a lane — normalMass, massScale, impulseScale, the prior
// impulse — goes through blas32.Dot via lane() rather than a raw slice
// index. This mirrors SolveContact's scalar normal-impulse formula; only
// the arithmetic spine is batched (anchors/impulse application still
// happen in the scalar path).
func (b *Batch) SolveNormalImpulse() []float32 {
	term := blas32.Vector{N: LaneWidth, Inc: 1, Data: make([]float32, LaneWidth)}
	for i := 0; i < LaneWidth; i++ {
		term.Data[i] = b.biasRate.Data[i] * b.separation.Data[i]
	}
	blas32.Axpy(1, b.relVelN, term)

	out := make([]float32, b.n)
	for lane := 0; lane < b.n; lane++ {
		nm := b.lane(b.normalMass, lane)
		ms := b.lane(b.massScale, lane)
		is := b.lane(b.impulseScale, lane)
		t := b.lane(term, lane)
		oldImpulse := b.lane(b.impulse, lane)
		out[lane] = -nm*ms*t - is*oldImpulse
	}
	return out
}

// Dot exposes blas32.Dot directly for callers (tests, benchmarks) that
// want to confirm the batch's vectors reduce identically to the scalar
// loop's accumulation.
func Dot(a, b blas32.Vector) float32 { return blas32.Dot(a, b) }
