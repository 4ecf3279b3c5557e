package distance

import "github.com/gazed/solve2d/math/lin"

// simplexVertex is one support point of the Minkowski difference, carrying
// both witness points so the final simplex can reconstruct closest points
// on the original shapes, not just the difference.
type simplexVertex struct {
	wA, wB lin.Vec2 // support point on A, on B
	w      lin.Vec2 // wA - wB
	a, b   float32  // barycentric coordinate (2- or 3-vertex simplex)
	indexA int
	indexB int
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

// Output is the result of ShapeDistance: the separation between the two
// proxies' core (radius-0) shapes, plus witness points on each. Subtracting
// proxyA.Radius+proxyB.Radius from Distance gives the rounded-shape
// separation (negative means overlap by that depth).
type Output struct {
	PointA, PointB lin.Vec2
	Distance       float32
	Iterations     int
}

const maxGJKIterations = 20

// ShapeDistance computes the minimum distance between proxyA and proxyB
// (already transformed into a common frame, see Proxy.Transform), following
// the teacher's add_to_simplex/do_simplex iterative-refinement loop
// generalized to 2D with witness-point bookkeeping and a fixed iteration
// cap instead of gjk.go's magic 100 (2D simplices converge in far fewer
// steps; 20 matches box2d's b2ShapeDistance budget).
func ShapeDistance(proxyA, proxyB Proxy) Output {
	var simp simplex
	simp.v[0] = makeSimplexVertex(proxyA, proxyB, 0, 0)
	simp.count = 1

	saveA := [3]int{}
	saveB := [3]int{}

	iter := 0
	for ; iter < maxGJKIterations; iter++ {
		saveCount := simp.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = simp.v[i].indexA
			saveB[i] = simp.v[i].indexB
		}

		switch simp.count {
		case 1:
		case 2:
			simp.solve2()
		case 3:
			simp.solve3()
		}

		if simp.count == 3 {
			// origin is enclosed by the simplex triangle: shapes overlap.
			break
		}

		d := simp.searchDirection()
		if d.LenSqr() < lin.Epsilon*lin.Epsilon {
			break
		}

		indexA := 0
		indexB := 0
		var wA, wB lin.Vec2
		wA, indexA = support(proxyA, d)
		wB, indexB = support(proxyB, d.Neg())

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if indexA == saveA[i] && indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		simp.v[simp.count] = simplexVertex{
			wA: wA, wB: wB, w: wA.Sub(wB), indexA: indexA, indexB: indexB,
		}
		simp.count++
	}

	pA, pB := simp.witnessPoints()
	out := Output{
		PointA:     pA,
		PointB:     pB,
		Distance:   pA.Dist(pB),
		Iterations: iter,
	}
	return out
}

func makeSimplexVertex(proxyA, proxyB Proxy, indexA, indexB int) simplexVertex {
	wA := proxyA.Vertices[indexA]
	wB := proxyB.Vertices[indexB]
	return simplexVertex{wA: wA, wB: wB, w: wA.Sub(wB), indexA: indexA, indexB: indexB, a: 1}
}

// searchDirection returns the direction from the closest point on the
// current simplex toward the origin.
func (s *simplex) searchDirection() lin.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e := s.v[1].w.Sub(s.v[0].w)
		sgn := e.Cross(s.v[0].w.Neg())
		if sgn > 0 {
			return lin.Vec2{X: -e.Y, Y: e.X}
		}
		return lin.Vec2{X: e.Y, Y: -e.X}
	default:
		return lin.Vec2{}
	}
}

// solve2 reduces a 2-vertex simplex to the closest feature (a vertex or the
// full edge) to the origin, box2d's b2SolveSimplex2.
func (s *simplex) solve2() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	e12 := w2.Sub(w1)

	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	d12_1 := w2.Dot(e12)
	if d12_1 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}

	inv := 1 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 reduces a 3-vertex simplex, box2d's b2SolveSimplex3: if the origin
// is outside every edge region, falls back to the best edge/vertex; if
// inside all three, the simplex encloses the origin (count stays 3).
func (s *simplex) solve3() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	w3 := s.v[2].w

	e12 := w2.Sub(w1)
	w1e12 := w1.Dot(e12)
	w2e12 := w2.Dot(e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	e13 := w3.Sub(w1)
	w1e13 := w1.Dot(e13)
	w3e13 := w3.Dot(e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	e23 := w3.Sub(w2)
	w2e23 := w2.Dot(e23)
	w3e23 := w3.Dot(e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	n123 := e12.Cross(e13)

	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	if d12_2 <= 0 && d13_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}
	if d12_1 > 0 && d12_2 > 0 && d123_3 <= 0 {
		inv := 1 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
		return
	}
	if d13_1 > 0 && d13_2 > 0 && d123_2 <= 0 {
		inv := 1 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[1] = s.v[2]
		s.v[1].a = d13_2 * inv
		s.count = 2
		return
	}
	if d12_1 <= 0 && d23_2 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}
	if d13_1 <= 0 && d23_1 <= 0 {
		s.v[0] = s.v[2]
		s.v[0].a = 1
		s.count = 1
		return
	}
	if d23_1 > 0 && d23_2 > 0 && d123_1 <= 0 {
		inv := 1 / (d23_1 + d23_2)
		s.v[1].a = d23_1 * inv
		s.v[2].a = d23_2 * inv
		s.v[0] = s.v[1]
		s.v[1] = s.v[2]
		s.count = 2
		return
	}
	// origin inside the triangle.
	inv := 1 / (d123_1 + d123_2 + d123_3)
	s.v[0].a = d123_1 * inv
	s.v[1].a = d123_2 * inv
	s.v[2].a = d123_3 * inv
	s.count = 3
}

func (s *simplex) witnessPoints() (lin.Vec2, lin.Vec2) {
	var pA, pB lin.Vec2
	for i := 0; i < s.count; i++ {
		pA = pA.MulAdd(s.v[i].wA, s.v[i].a)
		pB = pB.MulAdd(s.v[i].wB, s.v[i].a)
	}
	return pA, pB
}
