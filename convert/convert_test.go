package convert

import (
	"testing"

	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/project"
)

func identityProjector() tilekiln.Projector {
	return &project.Cartesian{Bounds: tilekiln.BBox{0, 0, 1, 1}}
}

func TestConvertPointFeature(t *testing.T) {
	doc := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","properties":{"name":"a"},"geometry":{"type":"Point","coordinates":[0.5,0.5]}}
		]
	}`)

	opts := tilekiln.DefaultOptions()
	features, err := Convert(doc, identityProjector(), &opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	if features[0].Type != tilekiln.Point {
		t.Fatalf("expected Point geometry, got %v", features[0].Type)
	}
	if features[0].Tags["name"] != "a" {
		t.Fatalf("expected property to survive conversion, got %v", features[0].Tags)
	}
}

func TestConvertGeneratesSequentialIDs(t *testing.T) {
	doc := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0.1,0.1]}},
			{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0.2,0.2]}}
		]
	}`)

	opts := tilekiln.DefaultOptions()
	opts.GenerateID = true
	features, err := Convert(doc, identityProjector(), &opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	if features[0].ID != int64(0) || features[1].ID != int64(1) {
		t.Fatalf("expected sequential generated ids 0,1, got %v,%v", features[0].ID, features[1].ID)
	}
}

func TestConvertPromoteIDMissingPropertyErrors(t *testing.T) {
	doc := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0.1,0.1]}}
		]
	}`)

	opts := tilekiln.DefaultOptions()
	opts.PromoteID = "missing"
	_, err := Convert(doc, identityProjector(), &opts)
	if err == nil {
		t.Fatalf("expected an error when the promoteId property is absent")
	}
}

func TestConvertDropsDegenerateOuterRingPolygon(t *testing.T) {
	doc := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}
		]
	}`)

	opts := tilekiln.DefaultOptions()
	features, err := Convert(doc, identityProjector(), &opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 0 {
		t.Fatalf("expected the degenerate polygon to be dropped, got %d features", len(features))
	}
}

func TestConvertMultiLineStringSplitsUnderLineMetrics(t *testing.T) {
	doc := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type":"Feature","properties":{},"geometry":{"type":"MultiLineString","coordinates":[[[0,0],[0.1,0.1]],[[0.5,0.5],[0.6,0.6]]]}}
		]
	}`)

	opts := tilekiln.DefaultOptions()
	opts.LineMetrics = true
	features, err := Convert(doc, identityProjector(), &opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("expected LineMetrics to split the MultiLineString into 2 LineString features, got %d", len(features))
	}
	for _, f := range features {
		if f.Type != tilekiln.LineString {
			t.Fatalf("expected LineString members, got %v", f.Type)
		}
		if f.LineLength <= 0 {
			t.Fatalf("expected a positive precomputed LineLength, got %v", f.LineLength)
		}
	}
}

func TestConvertRejectsUnparseableDocument(t *testing.T) {
	opts := tilekiln.DefaultOptions()
	_, err := Convert([]byte("not json"), identityProjector(), &opts)
	if err == nil {
		t.Fatalf("expected an error for an unparseable document")
	}
}
