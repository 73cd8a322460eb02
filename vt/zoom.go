package vt

import (
	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/simplify"
)

// simplifyForBuild runs the Simplifier (spec.md §4.C) over a feature's
// post-clip geometry, at the squared tolerance for zoom z. It is
// called once per feature, at the point a tile is actually built
// (vt.buildTile), the resolution of the Open Question spec.md §9
// flags: the original builds a tile twice in one branch (once raw,
// once simplified); this reimplementation builds once, simplifying
// the geometry already clipped to this tile rather than re-deriving a
// whole-feature per-zoom copy ahead of time. Clipping itself always
// operates on full-precision coordinates (vt.splitChildren never sees
// a simplified ring), so detail lost simplifying a shallow zoom's
// tile is never propagated into a deeper zoom's children.
func simplifyForBuild(g tilekiln.Geometry, z int, opts *tilekiln.Options) tilekiln.Geometry {
	tau2 := opts.ToleranceFunction(z, opts)

	switch g.Type {
	case tilekiln.Point, tilekiln.MultiPoint:
		return g

	case tilekiln.LineString:
		return tilekiln.Geometry{Type: g.Type, Flat: simplify.Simplify(g.Flat, tau2, 2)}

	case tilekiln.MultiLineString:
		rings := make([][]float64, len(g.Rings))
		for i, r := range g.Rings {
			rings[i] = simplify.Simplify(r, tau2, 2)
		}
		return tilekiln.Geometry{Type: g.Type, Rings: rings}

	case tilekiln.Polygon:
		rings := make([][]float64, len(g.Rings))
		for i, r := range g.Rings {
			rings[i] = simplify.Simplify(r, tau2, 4)
		}
		return tilekiln.Geometry{Type: g.Type, Rings: rings}

	case tilekiln.MultiPolygon:
		polys := make([][][]float64, len(g.Polygons))
		for i, poly := range g.Polygons {
			rings := make([][]float64, len(poly))
			for j, r := range poly {
				rings[j] = simplify.Simplify(r, tau2, 4)
			}
			polys[i] = rings
		}
		return tilekiln.Geometry{Type: g.Type, Polygons: polys}

	default:
		return g
	}
}
