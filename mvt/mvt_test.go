package mvt

import (
	"bytes"
	"testing"

	"github.com/tilekiln/tilekiln"
)

func transformedSquareTile() *tilekiln.TileRecord {
	// Clockwise in tile-integer (y-down) screen space; encodeGeometry
	// must reorient this to CCW, per spec.md §4.G.
	ring := []float64{
		0, 0, 0,
		0, 4096, 0,
		4096, 4096, 0,
		4096, 0, 0,
		0, 0, 0,
	}
	rec := &tilekiln.TileRecord{
		Z: 0, X: 0, Y: 0,
		Transformed: true,
		Features: []tilekiln.TileFeature{
			{
				ID:       uint64(1),
				Type:     tilekiln.Polygon,
				Geometry: tilekiln.Geometry{Type: tilekiln.Polygon, Rings: [][]float64{ring}},
				Tags:     map[string]any{"name": "square", "area": float64(1)},
			},
		},
	}
	return rec
}

// spec.md §8: "calling get_tile(z,x,y) twice yields byte-identical
// output." Tag dictionary order must not depend on Go's randomized map
// iteration, so encoding the same tile repeatedly must always produce
// the same bytes.
func TestEncodeIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	rec := &tilekiln.TileRecord{
		Z: 0, X: 0, Y: 0,
		Transformed: true,
		Features: []tilekiln.TileFeature{
			{
				ID:   uint64(1),
				Type: tilekiln.Point,
				Geometry: tilekiln.Geometry{
					Type: tilekiln.Point,
					Flat: []float64{0, 0, 0},
				},
				Tags: map[string]any{
					"alpha": "a", "bravo": "b", "charlie": "c",
					"delta": "d", "echo": "e", "foxtrot": "f",
				},
			},
		},
	}
	opts := tilekiln.DefaultOptions()

	first, err := Encode(rec, &opts, "layer0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := Encode(rec, &opts, "layer0")
		if err != nil {
			t.Fatalf("unexpected error on repeat %d: %v", i, err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encode of the same tile produced different bytes on repeat %d", i)
		}
	}
}

func TestEncodeRejectsUntransformedTile(t *testing.T) {
	rec := &tilekiln.TileRecord{Z: 0, X: 0, Y: 0}
	opts := tilekiln.DefaultOptions()
	_, err := Encode(rec, &opts, "layer0")
	if err == nil {
		t.Fatalf("expected an error encoding an untransformed tile")
	}
}

func TestEncodeProducesNonEmptyBytes(t *testing.T) {
	rec := transformedSquareTile()
	opts := tilekiln.DefaultOptions()
	data, err := Encode(rec, &opts, "layer0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty encoded bytes")
	}
}

func TestOrientForcesOuterCCW(t *testing.T) {
	// Clockwise square (negative shoelace area under this package's
	// sign convention) must be reversed for an outer ring.
	cw := []float64{0, 0, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 0, 0, 0}
	out := orient(cw, true)
	if signedArea(out) <= 0 {
		t.Fatalf("expected outer ring reoriented to positive (CCW) area, got %v", signedArea(out))
	}
}

func TestOrientForcesInnerCW(t *testing.T) {
	ccw := []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 0, 0, 0}
	out := orient(ccw, false)
	if signedArea(out) >= 0 {
		t.Fatalf("expected inner ring reoriented to negative (CW) area, got %v", signedArea(out))
	}
}

func TestIDToUint64RejectsNonIntegerString(t *testing.T) {
	if _, err := idToUint64("not-a-number"); err == nil {
		t.Fatalf("expected an error for a non-integer string id")
	}
}

func TestIDToUint64AcceptsIntegerString(t *testing.T) {
	got, err := idToUint64("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

// spec.md §8 scenario 5: a promoted id property decodes through
// orb/geojson as a float64; it must still encode as the integer id.
func TestIDToUint64AcceptsIntegralFloat(t *testing.T) {
	got, err := idToUint64(float64(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestIDToUint64RejectsNonIntegralFloat(t *testing.T) {
	if _, err := idToUint64(7.5); err == nil {
		t.Fatalf("expected an error for a non-integral float id")
	}
}

func TestIDToUint64RejectsNegativeFloat(t *testing.T) {
	if _, err := idToUint64(float64(-1)); err == nil {
		t.Fatalf("expected an error for a negative float id")
	}
}

func TestEncodeGeometryCommandStream(t *testing.T) {
	g := tilekiln.Geometry{Type: tilekiln.Point, Flat: []float64{10, 20, 0}}
	cmds, err := encodeGeometry(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// MoveTo(1) command integer, then zigzag(dx), zigzag(dy).
	if len(cmds) != 3 {
		t.Fatalf("expected a 3-integer command stream for a single MoveTo, got %d", len(cmds))
	}
	if cmds[0] != cmdCommand(cmdMoveTo, 1) {
		t.Fatalf("expected the first integer to be MoveTo(1)")
	}
}

func TestEncodeFeatureRejectsNonIntegerID(t *testing.T) {
	f := &tilekiln.TileFeature{
		ID:       "not-a-number",
		Type:     tilekiln.Point,
		Geometry: tilekiln.Geometry{Type: tilekiln.Point, Flat: []float64{0, 0, 0}},
	}
	if _, err := encodeFeature(f, map[string]int{}, map[string]int{}); err == nil {
		t.Fatalf("expected EncoderFailureError for a non-integer feature id")
	}
}
