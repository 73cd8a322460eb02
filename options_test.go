package tilekiln

import "testing"

func TestValidateRejectsPromoteAndGenerateIDTogether(t *testing.T) {
	o := DefaultOptions()
	o.PromoteID = "gid"
	o.GenerateID = true
	if err := o.Validate(); err == nil {
		t.Fatalf("expected InvalidConfigError when promoteId and generateId are both set")
	}
}

func TestValidateRejectsMaxZoomOutOfRange(t *testing.T) {
	o := DefaultOptions()
	o.MaxZoom = 25
	if err := o.Validate(); err == nil {
		t.Fatalf("expected InvalidConfigError for maxZoom > 24")
	}
}

func TestValidateRejectsIndexMaxZoomAboveMaxZoom(t *testing.T) {
	o := DefaultOptions()
	o.IndexMaxZoom = o.MaxZoom + 1
	if err := o.Validate(); err == nil {
		t.Fatalf("expected InvalidConfigError when indexMaxZoom > maxZoom")
	}
}

func TestValidateResolvesDefaultToleranceFunction(t *testing.T) {
	o := DefaultOptions()
	if err := o.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ToleranceFunction == nil {
		t.Fatalf("expected Validate to resolve a ToleranceFunction from the default name")
	}
}

func TestValidateRejectsUnknownToleranceFunctionName(t *testing.T) {
	o := DefaultOptions()
	o.ToleranceFunctionName = "nonexistent"
	if err := o.Validate(); err == nil {
		t.Fatalf("expected InvalidConfigError for an unregistered tolerance_function name")
	}
}

func TestPackIDCollisionFree(t *testing.T) {
	seen := make(map[uint64]TileCoord)
	for z := uint32(0); z <= 6; z++ {
		limit := uint32(1) << z
		for x := uint32(0); x < limit; x++ {
			for y := uint32(0); y < limit; y++ {
				id := PackID(z, x, y)
				if prev, ok := seen[id]; ok {
					t.Fatalf("packedId collision between %v and %v at id %d", prev, TileCoord{z, x, y}, id)
				}
				seen[id] = TileCoord{z, x, y}
			}
		}
	}
}

func TestGeometryNumPointsAcrossVariants(t *testing.T) {
	g := Geometry{Type: MultiPolygon, Polygons: [][][]float64{
		{{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 0, 0}},
		{{2, 2, 0, 3, 2, 0, 3, 3, 0, 2, 2, 0}},
	}}
	if got := g.NumPoints(); got != 8 {
		t.Fatalf("expected 8 points across two 4-vertex rings, got %d", got)
	}
}

func TestGeometryEmpty(t *testing.T) {
	g := Geometry{Type: Point}
	if !g.Empty() {
		t.Fatalf("expected a Geometry with no coordinates to be Empty")
	}
}
