// Package vt implements the Tile Builder and Splitter/Tile Index
// (spec.md §4.E, §4.F): turning projected, full-precision features
// into a populated TileIndex via an explicit-stack quadtree recursion,
// plus the get_tile drill-down protocol and coordinate transform.
package vt

import (
	"math"

	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/clip"
)

type stackItem struct {
	features []tilekiln.IntermediateFeature
	z, x, y  uint32
}

// CancelFunc is polled between stack iterations (spec.md §5); a build
// stops and returns the partial index once it reports true.
type CancelFunc func() bool

// Build runs the splitter to completion (or until indexMaxZoom /
// indexMaxPoints / maxZoom stop it) starting from the root tile
// (0,0,0), and returns the populated index. cancel may be nil.
func Build(features []tilekiln.IntermediateFeature, opts *tilekiln.Options, cancel CancelFunc) *tilekiln.TileIndex {
	idx := tilekiln.NewTileIndex()
	stack := []stackItem{{features, 0, 0, 0}}

	for len(stack) > 0 {
		if cancel != nil && cancel() {
			break
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec := idx.Get(item.z, item.x, item.y)
		if rec == nil {
			rec = buildTile(item.z, item.x, item.y, item.features, opts)
			idx.Put(rec)
		}
		rec.Source = item.features

		if item.z >= uint32(opts.IndexMaxZoom) || rec.NumPoints <= opts.IndexMaxPoints {
			continue
		}
		if item.z >= uint32(opts.MaxZoom) {
			continue
		}
		if len(item.features) == 0 {
			continue
		}

		children := splitChildren(item, opts)
		if len(children) > 0 {
			rec.Source = nil
			stack = append(stack, children...)
		}
	}

	return idx
}

// splitChildren clips item's features into up to four quadrants at
// z+1, per spec.md §4.F step 6, dropping any quadrant that comes back
// empty.
func splitChildren(item stackItem, opts *tilekiln.Options) []stackItem {
	k1 := 0.5 * float64(opts.Buffer) / float64(opts.Extent)
	k2 := 0.5 - k1
	k3 := 0.5 + k1
	k4 := 1 + k1

	scale := float64(uint64(1) << item.z)
	x, y := float64(item.x), float64(item.y)

	left := clip.Clip(item.features, 0, (x-k1)/scale, (x+k3)/scale)
	right := clip.Clip(item.features, 0, (x+k2)/scale, (x+k4)/scale)

	var out []stackItem
	z2 := item.z + 1

	if left != nil {
		tl := clip.Clip(left, 1, (y-k1)/scale, (y+k3)/scale)
		bl := clip.Clip(left, 1, (y+k2)/scale, (y+k4)/scale)
		if tl != nil {
			out = append(out, stackItem{tl, z2, item.x * 2, item.y * 2})
		}
		if bl != nil {
			out = append(out, stackItem{bl, z2, item.x * 2, item.y*2 + 1})
		}
	}
	if right != nil {
		tr := clip.Clip(right, 1, (y-k1)/scale, (y+k3)/scale)
		br := clip.Clip(right, 1, (y+k2)/scale, (y+k4)/scale)
		if tr != nil {
			out = append(out, stackItem{tr, z2, item.x*2 + 1, item.y * 2})
		}
		if br != nil {
			out = append(out, stackItem{br, z2, item.x*2 + 1, item.y*2 + 1})
		}
	}

	return out
}

// GetTile implements the get_tile(z,x,y) protocol from spec.md §4.F:
// wrap x for antimeridian queries, return an already-built tile
// transformed, or walk ancestors with a retained source and drill
// down to (z,x,y) via a fresh, targeted splitter pass. It returns nil
// if no ancestor with source can be found (the tile was never reached
// and its lineage has been fully split away).
func GetTile(idx *tilekiln.TileIndex, opts *tilekiln.Options, z, x, y uint32) *tilekiln.TileRecord {
	x = x % (uint32(1) << z)

	if rec := idx.Get(z, x, y); rec != nil {
		Transform(rec, opts.Extent)
		return rec
	}

	for pz := int(z) - 1; pz >= 0; pz-- {
		steps := uint32(int(z) - pz)
		px := x >> steps
		py := y >> steps
		parent := idx.Get(uint32(pz), px, py)
		if parent == nil || parent.Source == nil {
			continue
		}

		item := stackItem{parent.Source, uint32(pz), px, py}
		rec := drillDown(idx, item, opts, z, x, y)
		if rec != nil {
			Transform(rec, opts.Extent)
		}
		return rec
	}

	return nil
}

// drillDown re-enters the splitter from a retained ancestor, stopping
// only at maxZoom, at the target tile, or once (x,y) is no longer an
// ancestor of (cx,cy) (spec.md §4.F step 5).
func drillDown(idx *tilekiln.TileIndex, item stackItem, opts *tilekiln.Options, cz, cx, cy uint32) *tilekiln.TileRecord {
	stack := []stackItem{item}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec := idx.Get(cur.z, cur.x, cur.y)
		if rec == nil {
			rec = buildTile(cur.z, cur.x, cur.y, cur.features, opts)
			idx.Put(rec)
		}
		rec.Source = cur.features

		if cur.z == cz && cur.x == cx && cur.y == cy {
			return rec
		}
		if cur.z >= uint32(opts.MaxZoom) {
			continue
		}

		steps := cz - cur.z
		if steps == 0 || (cx>>steps) != cur.x || (cy>>steps) != cur.y {
			continue
		}

		children := splitChildren(cur, opts)
		if len(children) > 0 {
			rec.Source = nil
		}
		for _, c := range children {
			stack = append(stack, c)
		}
	}

	return idx.Get(cz, cx, cy)
}

// Transform converts rec's feature coordinates from projected [0,1]
// space to integer tile-local coordinates in roughly [-buffer,
// extent+buffer] (spec.md §4.F). It is idempotent: a second call on an
// already-transformed record is a no-op.
func Transform(rec *tilekiln.TileRecord, extent int) {
	if rec.Transformed {
		return
	}

	scale := float64(uint64(1) << rec.Z)
	tx, ty := float64(rec.X), float64(rec.Y)

	for i := range rec.Features {
		rec.Features[i].Geometry = transformGeometry(rec.Features[i].Geometry, extent, scale, tx, ty)
	}
	rec.Transformed = true
}

func transformGeometry(g tilekiln.Geometry, extent int, scale, tx, ty float64) tilekiln.Geometry {
	switch g.Type {
	case tilekiln.Point, tilekiln.MultiPoint, tilekiln.LineString:
		return tilekiln.Geometry{Type: g.Type, Flat: transformFlat(g.Flat, extent, scale, tx, ty)}
	case tilekiln.MultiLineString, tilekiln.Polygon:
		rings := make([][]float64, len(g.Rings))
		for i, r := range g.Rings {
			rings[i] = transformFlat(r, extent, scale, tx, ty)
		}
		return tilekiln.Geometry{Type: g.Type, Rings: rings}
	case tilekiln.MultiPolygon:
		polys := make([][][]float64, len(g.Polygons))
		for i, poly := range g.Polygons {
			rings := make([][]float64, len(poly))
			for j, r := range poly {
				rings[j] = transformFlat(r, extent, scale, tx, ty)
			}
			polys[i] = rings
		}
		return tilekiln.Geometry{Type: g.Type, Polygons: polys}
	default:
		return g
	}
}

func transformFlat(flat []float64, extent int, scale, tx, ty float64) []float64 {
	n := len(flat) / 3
	out := make([]float64, 0, len(flat))
	for i := 0; i < n; i++ {
		x := math.Round(float64(extent) * (flat[i*3]*scale - tx))
		y := math.Round(float64(extent) * (flat[i*3+1]*scale - ty))
		out = append(out, x, y, 0)
	}
	return out
}
