package builder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/internal/cache"
)

const squareDoc = `{
	"type": "FeatureCollection",
	"features": [
		{"type":"Feature","properties":{"gid":7,"name":"a"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}
	]
}`

func TestBuildWritesTilesAndMetadata(t *testing.T) {
	opts := tilekiln.DefaultOptions()
	opts.MaxZoom = 0
	opts.IndexMaxZoom = 0
	opts.Bounds = &tilekiln.BBox{0, 0, 1, 1}

	b, err := New(opts, nil)
	if err != nil {
		t.Fatalf("unexpected error constructing builder: %v", err)
	}
	if err := b.Build([]byte(squareDoc)); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if b.Index.Total != 1 {
		t.Fatalf("expected 1 tile in the index, got %d", b.Index.Total)
	}

	outDir := t.TempDir()
	written, err := b.WriteTiles(outDir, "layer0", "pbf")
	if err != nil {
		t.Fatalf("unexpected error writing tiles: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 tile file written, got %d", len(written))
	}
	wantPath := filepath.Join(outDir, "0", "0", "0.pbf")
	if written[0] != wantPath {
		t.Fatalf("expected tile written to %s, got %s", wantPath, written[0])
	}
	if data, err := os.ReadFile(wantPath); err != nil || len(data) == 0 {
		t.Fatalf("expected non-empty tile bytes at %s, err=%v", wantPath, err)
	}

	tj, err := b.Metadata("layer0", "tiles/{z}/{x}/{y}.pbf", false)
	if err != nil {
		t.Fatalf("unexpected error building metadata: %v", err)
	}
	if _, ok := tj.VectorLayers[0].Fields["name"]; !ok {
		t.Fatalf("expected the 'name' field to be recorded in the layer schema")
	}

	raw, err := json.Marshal(tj)
	if err != nil || len(raw) == 0 {
		t.Fatalf("expected the TileJSON document to marshal, err=%v", err)
	}
}

func TestBuildPromoteIDAssignsPropertyAsFeatureID(t *testing.T) {
	opts := tilekiln.DefaultOptions()
	opts.MaxZoom = 0
	opts.IndexMaxZoom = 0
	opts.Bounds = &tilekiln.BBox{0, 0, 1, 1}
	opts.PromoteID = "gid"

	b, err := New(opts, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Build([]byte(squareDoc)); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if len(b.Features) != 1 || b.Features[0].ID != float64(7) {
		t.Fatalf("expected promoted id 7, got %v", b.Features[0].ID)
	}
}

func TestBuildRejectsConflictingIDOptions(t *testing.T) {
	opts := tilekiln.DefaultOptions()
	opts.PromoteID = "gid"
	opts.GenerateID = true
	opts.Bounds = &tilekiln.BBox{0, 0, 1, 1}

	if _, err := New(opts, nil); err == nil {
		t.Fatalf("expected InvalidConfigError for promoteId+generateId")
	}
}

func TestGetTileReadPathUsesCache(t *testing.T) {
	opts := tilekiln.DefaultOptions()
	opts.MaxZoom = 0
	opts.IndexMaxZoom = 0
	opts.Bounds = &tilekiln.BBox{0, 0, 1, 1}

	b, err := New(opts, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Build([]byte(squareDoc)); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	// New installs a disabled cache; swap in a live one.
	b.Cache, err = cache.New(8)
	if err != nil {
		t.Fatalf("unexpected error creating cache: %v", err)
	}

	data, err := b.GetTile(0, 0, 0, "layer0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty encoded tile bytes")
	}

	again, err := b.GetTile(0, 0, 0, "layer0")
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if string(again) != string(data) {
		t.Fatalf("expected idempotent GetTile output")
	}
	if hits := b.Cache.Stats().Hits; hits != 1 {
		t.Fatalf("expected the second GetTile to be a cache hit, got %d hits", hits)
	}
}
