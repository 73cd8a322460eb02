// Package clip implements the axis-aligned Clipper from spec.md §4.D:
// lines via a Liang-Barsky-style walk that may emit several sub-lines,
// and polygon rings via two composed Sutherland-Hodgman half-plane
// passes (one per side of the slab) so a ring never splits into
// disconnected pieces.
package clip

import (
	"math"

	"github.com/tilekiln/tilekiln"
)

// Clip clips features against the slab [k1,k2] on the given axis
// (0=x, 1=y). It returns nil when nothing survives — distinct from a
// non-nil, merely short slice — so the splitter can short-circuit a
// recursion branch (spec.md §4.D).
func Clip(features []tilekiln.IntermediateFeature, axis int, k1, k2 float64) []tilekiln.IntermediateFeature {
	var out []tilekiln.IntermediateFeature

	for _, f := range features {
		lo, hi := axisRange(f.BBox, axis)
		if lo >= k1 && hi <= k2 {
			// Entirely inside the slab: pass through unchanged.
			out = append(out, f)
			continue
		}
		if hi < k1 || lo > k2 {
			// Entirely outside: drop.
			continue
		}

		clipped, ok := clipFeature(f, axis, k1, k2)
		if ok {
			out = append(out, clipped...)
		}
	}

	return out
}

func axisRange(b tilekiln.BBox, axis int) (lo, hi float64) {
	if axis == 0 {
		return b[0], b[2]
	}
	return b[1], b[3]
}

func clipFeature(f tilekiln.IntermediateFeature, axis int, k1, k2 float64) ([]tilekiln.IntermediateFeature, bool) {
	switch f.Type {
	case tilekiln.Point, tilekiln.MultiPoint:
		pts := clipPoints(f.Geometry.Flat, axis, k1, k2)
		if len(pts) == 0 {
			return nil, false
		}
		nf := f
		nf.Geometry = tilekiln.Geometry{Type: f.Type, Flat: pts}
		nf.BBox = boundsOfFlat(pts)
		return []tilekiln.IntermediateFeature{nf}, true

	case tilekiln.LineString:
		pieces := clipLineMulti(f.Geometry.Flat, axis, k1, k2, f.LineLength)
		if len(pieces) == 0 {
			return nil, false
		}
		return linePiecesToFeatures(f, pieces), true

	case tilekiln.MultiLineString:
		var pieces [][]float64
		for _, line := range f.Geometry.Rings {
			lp := clipLineMulti(line, axis, k1, k2, 0)
			for _, p := range lp {
				pieces = append(pieces, p.coords)
			}
		}
		if len(pieces) == 0 {
			return nil, false
		}
		nf := f
		nf.Geometry = tilekiln.Geometry{Type: tilekiln.MultiLineString, Rings: pieces}
		nf.BBox = boundsOfRings(pieces)
		return []tilekiln.IntermediateFeature{nf}, true

	case tilekiln.Polygon:
		rings := clipPolygonRings(f.Geometry.Rings, axis, k1, k2)
		if rings == nil {
			return nil, false
		}
		nf := f
		nf.Geometry = tilekiln.Geometry{Type: tilekiln.Polygon, Rings: rings}
		nf.BBox = boundsOfRings(rings)
		return []tilekiln.IntermediateFeature{nf}, true

	case tilekiln.MultiPolygon:
		var polys [][][]float64
		for _, poly := range f.Geometry.Polygons {
			rings := clipPolygonRings(poly, axis, k1, k2)
			if rings != nil {
				polys = append(polys, rings)
			}
		}
		if len(polys) == 0 {
			return nil, false
		}
		nf := f
		nf.Geometry = tilekiln.Geometry{Type: tilekiln.MultiPolygon, Polygons: polys}
		nf.BBox = boundsOfPolygons(polys)
		return []tilekiln.IntermediateFeature{nf}, true

	default:
		return nil, false
	}
}

// clipPolygonRings clips each ring of a polygon against the slab. If
// the outer ring (index 0) is dropped as degenerate, the whole polygon
// is dropped, per spec.md §4.D ("if the outer is dropped, holes are
// dropped").
func clipPolygonRings(rings [][]float64, axis int, k1, k2 float64) [][]float64 {
	var out [][]float64
	for i, ring := range rings {
		clipped := clipRingSlab(ring, axis, k1, k2)
		clipped = closeRing(clipped)
		if len(clipped)/3 < 4 {
			if i == 0 {
				return nil
			}
			continue
		}
		out = append(out, clipped)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func clipPoints(geom []float64, axis int, k1, k2 float64) []float64 {
	var out []float64
	n := len(geom) / 3
	for i := 0; i < n; i++ {
		v := geom[i*3+axis]
		if v >= k1 && v <= k2 {
			out = append(out, geom[i*3], geom[i*3+1], 0)
		}
	}
	return out
}

type linePiece struct {
	coords           []float64
	startFrac, endFrac float64
}

func linePiecesToFeatures(f tilekiln.IntermediateFeature, pieces []linePiece) []tilekiln.IntermediateFeature {
	if len(pieces) == 1 {
		nf := f
		nf.Geometry = tilekiln.Geometry{Type: tilekiln.LineString, Flat: pieces[0].coords}
		nf.BBox = boundsOfFlat(pieces[0].coords)
		nf.ClipStart = pieces[0].startFrac
		nf.ClipEnd = pieces[0].endFrac
		return []tilekiln.IntermediateFeature{nf}
	}

	out := make([]tilekiln.IntermediateFeature, 0, len(pieces))
	for _, p := range pieces {
		nf := f
		nf.Geometry = tilekiln.Geometry{Type: tilekiln.LineString, Flat: p.coords}
		nf.BBox = boundsOfFlat(p.coords)
		nf.ClipStart = p.startFrac
		nf.ClipEnd = p.endFrac
		out = append(out, nf)
	}
	return out
}

// clipLineMulti walks geom (a flat x,y,z triple run) one segment at a
// time and emits a new piece every time the line exits then re-enters
// the slab, as spec.md §4.D requires. totalLen, when positive, is used
// to compute mapbox_clip_start/end fractions (spec.md §4.E); it is the
// feature's precomputed full-line arc length, so fractions stay
// correct even though only one slab is clipped per call.
func clipLineMulti(geom []float64, axis int, k1, k2 float64, totalLen float64) []linePiece {
	n := len(geom) / 3
	if n < 2 {
		return nil
	}

	var pieces []linePiece
	var cur []float64
	var curStart float64
	accLen := 0.0
	trackMetrics := totalLen > 0

	flush := func(endLen float64) {
		if len(cur) < 6 {
			cur = nil
			return
		}
		p := linePiece{coords: cur, startFrac: 0, endFrac: 1}
		if trackMetrics {
			p.startFrac = curStart / totalLen
			p.endFrac = endLen / totalLen
		}
		pieces = append(pieces, p)
		cur = nil
	}

	for i := 0; i < n-1; i++ {
		ax, ay := geom[i*3], geom[i*3+1]
		bx, by := geom[(i+1)*3], geom[(i+1)*3+1]
		segLen := math.Hypot(bx-ax, by-ay)

		var a, b float64
		if axis == 0 {
			a, b = ax, bx
		} else {
			a, b = ay, by
		}

		switch {
		case a < k1:
			switch {
			case b > k2:
				x1, y1, t1 := intersectAt(ax, ay, bx, by, axis, k1)
				x2, y2, t2 := intersectAt(ax, ay, bx, by, axis, k2)
				startPiece(&cur, &curStart, x1, y1, accLen+t1*segLen)
				cur = append(cur, x2, y2, 0)
				flush(accLen + t2*segLen)
			case b >= k1:
				x1, y1, t1 := intersectAt(ax, ay, bx, by, axis, k1)
				startPiece(&cur, &curStart, x1, y1, accLen+t1*segLen)
				cur = append(cur, bx, by, 0)
				if i == n-2 {
					flush(accLen + segLen)
				}
			default:
				// segment entirely below k1; nothing to add.
			}
		case a > k2:
			switch {
			case b < k1:
				x2, y2, t2 := intersectAt(ax, ay, bx, by, axis, k2)
				x1, y1, t1 := intersectAt(ax, ay, bx, by, axis, k1)
				startPiece(&cur, &curStart, x2, y2, accLen+t2*segLen)
				cur = append(cur, x1, y1, 0)
				flush(accLen + t1*segLen)
			case b <= k2:
				x2, y2, t2 := intersectAt(ax, ay, bx, by, axis, k2)
				startPiece(&cur, &curStart, x2, y2, accLen+t2*segLen)
				cur = append(cur, bx, by, 0)
				if i == n-2 {
					flush(accLen + segLen)
				}
			default:
			}
		default:
			startPiece(&cur, &curStart, ax, ay, accLen)
			switch {
			case b < k1:
				x1, y1, t1 := intersectAt(ax, ay, bx, by, axis, k1)
				cur = append(cur, x1, y1, 0)
				flush(accLen + t1*segLen)
			case b > k2:
				x2, y2, t2 := intersectAt(ax, ay, bx, by, axis, k2)
				cur = append(cur, x2, y2, 0)
				flush(accLen + t2*segLen)
			default:
				cur = append(cur, bx, by, 0)
				if i == n-2 {
					flush(accLen + segLen)
				}
			}
		}

		accLen += segLen
	}

	return pieces
}

func startPiece(cur *[]float64, curStart *float64, x, y, startLen float64) {
	if len(*cur) == 0 {
		*cur = append(*cur, x, y, 0)
		*curStart = startLen
	}
}

func intersectAt(ax, ay, bx, by float64, axis int, k float64) (x, y, t float64) {
	if axis == 0 {
		if bx == ax {
			return k, ay, 0
		}
		t = (k - ax) / (bx - ax)
		return k, ay + (by-ay)*t, t
	}
	if by == ay {
		return ax, k, 0
	}
	t = (k - ay) / (by - ay)
	return ax + (bx-ax)*t, k, t
}

// clipRingSlab clips a closed ring against [k1,k2] on axis by composing
// two Sutherland-Hodgman half-plane passes, which keeps the ring a
// single connected loop instead of splitting it (spec.md §4.D).
func clipRingSlab(ring []float64, axis int, k1, k2 float64) []float64 {
	r := clipHalfPlane(ring, axis, k1, true)
	if len(r) == 0 {
		return nil
	}
	return clipHalfPlane(r, axis, k2, false)
}

func clipHalfPlane(ring []float64, axis int, threshold float64, keepGE bool) []float64 {
	n := len(ring) / 3
	if n == 0 {
		return nil
	}
	inside := func(v float64) bool {
		if keepGE {
			return v >= threshold
		}
		return v <= threshold
	}

	var out []float64
	for i := 0; i < n; i++ {
		curX, curY := ring[i*3], ring[i*3+1]
		nxt := (i + 1) % n
		nextX, nextY := ring[nxt*3], ring[nxt*3+1]

		var curV, nextV float64
		if axis == 0 {
			curV, nextV = curX, nextX
		} else {
			curV, nextV = curY, nextY
		}
		curIn := inside(curV)
		nextIn := inside(nextV)

		if curIn {
			out = append(out, curX, curY, 0)
			if !nextIn {
				ix, iy, _ := intersectAt(curX, curY, nextX, nextY, axis, threshold)
				out = append(out, ix, iy, 0)
			}
		} else if nextIn {
			ix, iy, _ := intersectAt(curX, curY, nextX, nextY, axis, threshold)
			out = append(out, ix, iy, 0)
		}
	}
	return out
}

// closeRing appends the first vertex to the end if the ring isn't
// already closed.
func closeRing(ring []float64) []float64 {
	n := len(ring) / 3
	if n < 3 {
		return ring
	}
	if ring[0] == ring[(n-1)*3] && ring[1] == ring[(n-1)*3+1] {
		return ring
	}
	out := make([]float64, len(ring), len(ring)+3)
	copy(out, ring)
	return append(out, ring[0], ring[1], 0)
}

func boundsOfFlat(geom []float64) tilekiln.BBox {
	b := tilekiln.EmptyBBox()
	n := len(geom) / 3
	for i := 0; i < n; i++ {
		x, y := geom[i*3], geom[i*3+1]
		if x < b[0] {
			b[0] = x
		}
		if y < b[1] {
			b[1] = y
		}
		if x > b[2] {
			b[2] = x
		}
		if y > b[3] {
			b[3] = y
		}
	}
	return b
}

func boundsOfRings(rings [][]float64) tilekiln.BBox {
	b := tilekiln.EmptyBBox()
	for _, r := range rings {
		b.Union(boundsOfFlat(r))
	}
	return b
}

func boundsOfPolygons(polys [][][]float64) tilekiln.BBox {
	b := tilekiln.EmptyBBox()
	for _, poly := range polys {
		b.Union(boundsOfRings(poly))
	}
	return b
}
