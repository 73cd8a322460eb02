// Package simplify implements squared-distance Ramer-Douglas-Peucker
// simplification over a flat (x,y,z) ring, as specified in spec.md
// §4.C. It is ported from the Python reference's
// microjson/microjson2vt/simplify.py, itself adapted from Mapbox's
// geojson2vt, with the vertex-floor halving loop spec.md §4.C requires.
package simplify

// point is an internal (x,y) pair; Simplify's public surface stays in
// terms of flat (x,y,z) triples so callers never need this type.
type point struct{ x, y float64 }

// Simplify runs RDP over ring, a flat (x,y,z) triple buffer, at squared
// tolerance sqTolerance. If the simplified output has at most
// minVertices points, sqTolerance is halved and the ring is
// re-simplified until the floor is met or the tolerance underflows to
// zero (spec.md §4.C's vertex-floor guarantee). The z component of
// every input triple is discarded; the output carries z=0.
//
// Simplify is pure: it allocates fresh output and never mutates ring.
func Simplify(ring []float64, sqTolerance float64, minVertices int) []float64 {
	pts := toPoints(ring)
	if len(pts) <= minVertices {
		return fromPoints(pts)
	}
	if sqTolerance <= 0 {
		return fromPoints(pts)
	}

	tol := sqTolerance
	var simplified []point
	for {
		simplified = simplifyRecursive(pts, tol)
		if len(simplified) > minVertices || tol == 0 {
			break
		}
		tol /= 2
	}
	return fromPoints(simplified)
}

func toPoints(flat []float64) []point {
	n := len(flat) / 3
	pts := make([]point, n)
	for i := 0; i < n; i++ {
		pts[i] = point{flat[i*3], flat[i*3+1]}
	}
	return pts
}

func fromPoints(pts []point) []float64 {
	out := make([]float64, 0, len(pts)*3)
	for _, p := range pts {
		out = append(out, p.x, p.y, 0)
	}
	return out
}

// simplifyRecursive keeps the chord endpoints and recurses on the side
// containing the vertex of maximum squared distance from that chord,
// whenever that distance exceeds sqTolerance.
func simplifyRecursive(coords []point, sqTolerance float64) []point {
	first := 0
	last := len(coords) - 1

	maxSqDist := 0.0
	index := -1
	for i := first + 1; i < last; i++ {
		d := sqSegDist(coords[i], coords[first], coords[last])
		if d > maxSqDist {
			index = i
			maxSqDist = d
		}
	}

	if index == -1 || maxSqDist <= sqTolerance {
		return []point{coords[first], coords[last]}
	}

	left := simplifyRecursive(coords[first:index+1], sqTolerance)
	right := simplifyRecursive(coords[index:last+1], sqTolerance)

	out := make([]point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right...)
	return out
}

// sqSegDist is the squared distance from p to the segment a-b.
func sqSegDist(p, a, b point) float64 {
	x, y := a.x, a.y
	dx := b.x - x
	dy := b.y - y

	if dx != 0 || dy != 0 {
		t := ((p.x-x)*dx + (p.y-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = b.x, b.y
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx = p.x - x
	dy = p.y - y
	return dx*dx + dy*dy
}
