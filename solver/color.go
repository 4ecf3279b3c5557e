package solver

import "github.com/gazed/solve2d/bitset"

// maxColors is the greedy-coloring palette size, box2d v3's
// B2_GRAPH_COLOR_COUNT. Index maxColors itself is the reserved overflow
// color spec.md §3/§9 names for constraints that exceed the palette;
// overflowColor is that index.
const maxColors = 12
const overflowColor = maxColors
const numColorSlots = maxColors + 1

// colorBucket holds one color's body-disjoint joint and contact index
// lists (into World.joints / World.contacts), spec.md §3's GraphColor.
type colorBucket struct {
	jointIndices   []int32
	contactIndices []int32
	used           *bitset.BitSet // dynamic body indices currently occupying this color
}

func newColorSlots(bodyCapacityHint int) [numColorSlots]colorBucket {
	var slots [numColorSlots]colorBucket
	for i := 0; i < numColorSlots; i++ {
		if i != overflowColor {
			slots[i].used = bitset.New(bodyCapacityHint)
		}
	}
	return slots
}

// assignColor picks the lowest-index non-overflow color whose `used`
// bitset contains neither dynamic body, marks both occupied, and returns
// the chosen index (overflowColor if the palette is exhausted). Static
// and kinematic bodies never block color assignment: they carry zero
// inverse mass/inertia (or a prescribed, non-solved velocity for
// kinematics), so concurrent constraints touching the same non-dynamic
// body apply a zero (static) or read-mostly (kinematic, never written by
// the contact/joint impulse application since invMass==0) contribution —
// box2d v3 colors by dynamic-body participation only, and this module
// follows that rather than wastefully spilling every static-anchored
// contact into the serial overflow color.
func assignColor(slots *[numColorSlots]colorBucket, bodyAIdx, bodyBIdx int32, bodyAIsDynamic, bodyBIsDynamic bool) int {
	for c := 0; c < maxColors; c++ {
		b := &slots[c]
		if bodyAIsDynamic && b.used.Get(int(bodyAIdx)) {
			continue
		}
		if bodyBIsDynamic && b.used.Get(int(bodyBIdx)) {
			continue
		}
		if bodyAIsDynamic {
			b.used.Set(int(bodyAIdx))
		}
		if bodyBIsDynamic {
			b.used.Set(int(bodyBIdx))
		}
		return c
	}
	return overflowColor
}

// releaseColor clears a constraint's bodies from a non-overflow color's
// occupancy bitset, called when a joint/contact is destroyed or must be
// recolored (e.g. after a body wakes and its set of touching constraints
// changes), so the color can be reused by a future constraint touching
// the same bodies.
func releaseColor(slots *[numColorSlots]colorBucket, colorIndex int, bodyAIdx, bodyBIdx int32, bodyAIsDynamic, bodyBIsDynamic bool) {
	if colorIndex == overflowColor {
		return
	}
	b := &slots[colorIndex]
	if bodyAIsDynamic {
		b.used.Clear(int(bodyAIdx))
	}
	if bodyBIsDynamic {
		b.used.Clear(int(bodyBIdx))
	}
}
