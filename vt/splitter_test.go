package vt

import (
	"testing"

	"github.com/tilekiln/tilekiln"
)

func pointFeature(x, y float64) tilekiln.IntermediateFeature {
	return tilekiln.IntermediateFeature{
		Type:     tilekiln.Point,
		Geometry: tilekiln.Geometry{Type: tilekiln.Point, Flat: []float64{x, y, 0}},
		BBox:     tilekiln.BBox{x, y, x, y},
	}
}

func squarePolygonFeature() tilekiln.IntermediateFeature {
	ring := []float64{
		0, 0, 0,
		1, 0, 0,
		1, 1, 0,
		0, 1, 0,
		0, 0, 0,
	}
	return tilekiln.IntermediateFeature{
		Type:     tilekiln.Polygon,
		Geometry: tilekiln.Geometry{Type: tilekiln.Polygon, Rings: [][]float64{ring}},
		BBox:     tilekiln.BBox{0, 0, 1, 1},
	}
}

func testOpts(maxZoom, indexMaxZoom int) *tilekiln.Options {
	o := tilekiln.DefaultOptions()
	o.MaxZoom = maxZoom
	o.IndexMaxZoom = indexMaxZoom
	if err := o.Validate(); err != nil {
		panic(err)
	}
	return &o
}

// spec.md §8 scenario 1: unit square, single polygon, maxZoom=0.
func TestBuildUnitSquareSingleTile(t *testing.T) {
	opts := testOpts(0, 0)
	idx := Build([]tilekiln.IntermediateFeature{squarePolygonFeature()}, opts, nil)

	if idx.Total != 1 {
		t.Fatalf("expected exactly one tile, got %d", idx.Total)
	}
	rec := idx.Get(0, 0, 0)
	if rec == nil {
		t.Fatalf("expected tile (0,0,0) to exist")
	}
	if len(rec.Features) != 1 {
		t.Fatalf("expected 1 feature in the root tile, got %d", len(rec.Features))
	}

	Transform(rec, opts.Extent)
	ring := rec.Features[0].Geometry.Rings[0]
	n := len(ring) / 3
	if n < 4 {
		t.Fatalf("expected a closed ring with >=4 vertices, got %d", n)
	}
	if ring[0] != ring[(n-1)*3] || ring[1] != ring[(n-1)*3+1] {
		t.Fatalf("expected the emitted ring to be closed in tile-integer space")
	}
	for i := 0; i < n; i++ {
		x, y := ring[i*3], ring[i*3+1]
		if x < -float64(opts.Buffer) || x > float64(opts.Extent+opts.Buffer) ||
			y < -float64(opts.Buffer) || y > float64(opts.Extent+opts.Buffer) {
			t.Fatalf("vertex (%v,%v) outside [-buffer, extent+buffer]", x, y)
		}
	}
}

// spec.md §8 scenario 2: two non-overlapping points land in distinct
// z=1 tiles, and no other z=1 tile is emitted for them.
func TestBuildTwoNonOverlappingPoints(t *testing.T) {
	opts := testOpts(1, 1)
	// The default IndexMaxPoints would stop the split at the root tile.
	opts.IndexMaxPoints = 0
	features := []tilekiln.IntermediateFeature{
		pointFeature(0.25, 0.25),
		pointFeature(0.75, 0.75),
	}
	idx := Build(features, opts, nil)

	tl := idx.Get(1, 0, 0)
	br := idx.Get(1, 1, 1)
	if tl == nil || len(tl.Features) != 1 {
		t.Fatalf("expected tile (1,0,0) to hold exactly one point")
	}
	if br == nil || len(br.Features) != 1 {
		t.Fatalf("expected tile (1,1,1) to hold exactly one point")
	}
	if idx.Get(1, 1, 0) != nil || idx.Get(1, 0, 1) != nil {
		t.Fatalf("expected the other two z=1 tiles to be absent")
	}
}

// spec.md §8: every tile satisfies 0 <= x < 2^z, 0 <= y < 2^z, z <= maxZoom.
func TestBuildTileCoordsInRange(t *testing.T) {
	opts := testOpts(3, 3)
	features := []tilekiln.IntermediateFeature{
		pointFeature(0.1, 0.1),
		pointFeature(0.9, 0.9),
		squarePolygonFeature(),
	}
	idx := Build(features, opts, nil)

	for _, c := range idx.Coords {
		if c.Z > uint32(opts.MaxZoom) {
			t.Fatalf("tile zoom %d exceeds maxZoom %d", c.Z, opts.MaxZoom)
		}
		limit := uint32(1) << c.Z
		if c.X >= limit || c.Y >= limit {
			t.Fatalf("tile (%d,%d,%d) out of range for limit %d", c.Z, c.X, c.Y, limit)
		}
	}
}

// spec.md §8: drill-down equivalence — building eagerly with
// indexMaxZoom=maxZoom must match lazy drill-down for the same tile.
func TestDrillDownEquivalence(t *testing.T) {
	features := []tilekiln.IntermediateFeature{
		pointFeature(0.12, 0.34),
		pointFeature(0.61, 0.77),
		squarePolygonFeature(),
	}

	// IndexMaxPoints=0 so splitting is limited by indexMaxZoom alone.
	eagerOpts := testOpts(6, 6)
	eagerOpts.IndexMaxPoints = 0
	eager := Build(copyFeatures(features), eagerOpts, nil)
	eagerTile := GetTile(eager, eagerOpts, 6, 37, 22)

	lazyOpts := testOpts(6, 3)
	lazyOpts.IndexMaxPoints = 0
	lazy := Build(copyFeatures(features), lazyOpts, nil)
	lazyTile := GetTile(lazy, lazyOpts, 6, 37, 22)

	if (eagerTile == nil) != (lazyTile == nil) {
		t.Fatalf("expected eager and lazy builds to agree on tile (6,37,22) existence")
	}
	if eagerTile == nil {
		return
	}
	if len(eagerTile.Features) != len(lazyTile.Features) {
		t.Fatalf("expected matching feature counts, got eager=%d lazy=%d", len(eagerTile.Features), len(lazyTile.Features))
	}
}

// spec.md §8: antimeridian wrap — get_tile(z,x,y) and
// get_tile(z,x+2^z,y) return the same tile.
func TestGetTileAntimeridianWrap(t *testing.T) {
	opts := testOpts(2, 2)
	idx := Build([]tilekiln.IntermediateFeature{pointFeature(0.1, 0.1)}, opts, nil)

	a := GetTile(idx, opts, 2, 0, 0)
	b := GetTile(idx, opts, 2, 4, 0) // x + 2^z
	if (a == nil) != (b == nil) {
		t.Fatalf("expected wrapped query to agree on tile existence")
	}
	if a != nil && (a.Z != b.Z || a.X != b.X || a.Y != b.Y) {
		t.Fatalf("expected the wrapped query to resolve to the same tile coordinate")
	}
}

// spec.md §8: idempotence — calling get_tile twice returns the same
// transformed coordinates.
func TestGetTileIdempotent(t *testing.T) {
	opts := testOpts(2, 2)
	idx := Build([]tilekiln.IntermediateFeature{squarePolygonFeature()}, opts, nil)

	first := GetTile(idx, opts, 0, 0, 0)
	firstRing := append([]float64(nil), first.Features[0].Geometry.Rings[0]...)

	second := GetTile(idx, opts, 0, 0, 0)
	secondRing := second.Features[0].Geometry.Rings[0]

	if len(firstRing) != len(secondRing) {
		t.Fatalf("expected idempotent transform, got different vertex counts")
	}
	for i := range firstRing {
		if firstRing[i] != secondRing[i] {
			t.Fatalf("expected byte-identical repeated get_tile output at index %d", i)
		}
	}
}

func copyFeatures(in []tilekiln.IntermediateFeature) []tilekiln.IntermediateFeature {
	out := make([]tilekiln.IntermediateFeature, len(in))
	copy(out, in)
	return out
}
