// Package builder is the orchestration facade spec.md §2's component
// table describes as the flow "Input document → B (using A) →
// features[] → C (per zoom) → F (drives D, E) → tiles{id→record} → G
// → bytes on disk; H emits the sidecar metadata." It is the one
// package allowed to import every other package in this module, the
// same way the teacher's gotiler.go function wires geojson decoding,
// orb geometry, and pmtiles output together in one place.
package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/convert"
	"github.com/tilekiln/tilekiln/internal/cache"
	"github.com/tilekiln/tilekiln/mvt"
	"github.com/tilekiln/tilekiln/pmtiles"
	"github.com/tilekiln/tilekiln/project"
	"github.com/tilekiln/tilekiln/tilejson"
	"github.com/tilekiln/tilekiln/vt"
)

// Builder holds one build's state: its resolved options, the tile
// index once Build has run, and the original converted features
// (kept for metadata extraction after the index is built).
type Builder struct {
	Opts     tilekiln.Options
	Index    *tilekiln.TileIndex
	Features []tilekiln.IntermediateFeature
	Cache    *cache.TileCache
	Log      *logrus.Logger
}

// New validates opts and returns a Builder ready to Build. log may be
// nil, in which case a disabled logger is used.
func New(opts tilekiln.Options, log *logrus.Logger) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(os.Stdout)
		log.SetLevel(logrus.PanicLevel)
	}

	c := cache.Disabled()
	return &Builder{Opts: opts, Log: log, Cache: c}, nil
}

// Build decodes data (spec.md §6's input document), projects and
// converts it to IntermediateFeatures, and runs the splitter to
// populate the tile index.
func (b *Builder) Build(data []byte) error {
	proj, err := project.Resolve(&b.Opts)
	if err != nil {
		return err
	}

	features, err := convert.Convert(data, proj, &b.Opts)
	if err != nil {
		return err
	}
	b.Features = features
	b.Log.WithField("features", len(features)).Debug("converted input document")

	b.Index = vt.Build(features, &b.Opts, nil)
	b.Log.WithField("tiles", b.Index.Total).Info("build complete")
	return nil
}

// GetTile implements the read path: a cache hit returns memoized
// encoded bytes; otherwise it resolves the tile via the splitter's
// drill-down protocol, encodes it, and populates the cache.
func (b *Builder) GetTile(z, x, y uint32, layerName string) ([]byte, error) {
	key := cache.Key(z, x, y)
	if data, ok := b.Cache.Get(key); ok {
		return data, nil
	}

	rec := vt.GetTile(b.Index, &b.Opts, z, x, y)
	if rec == nil {
		return nil, nil
	}

	data, err := mvt.Encode(rec, &b.Opts, layerName)
	if err != nil {
		return nil, err
	}
	b.Cache.Set(key, data)
	return data, nil
}

// WriteTiles writes every tile currently in the index to outDir, in
// the format named by format ("pbf", "json", or "pmtiles"), and
// returns the paths written (a single path for "pmtiles").
func (b *Builder) WriteTiles(outDir, layerName, format string) ([]string, error) {
	if format == "pmtiles" {
		return b.writePMTilesArchive(outDir, layerName)
	}

	var written []string
	for _, c := range b.Index.Coords {
		rec := b.Index.Get(c.Z, c.X, c.Y)
		if rec == nil || len(rec.Features) == 0 {
			continue
		}
		vt.Transform(rec, b.Opts.Extent)

		dir := filepath.Join(outDir, fmt.Sprint(c.Z), fmt.Sprint(c.X))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, &tilekiln.IOFailureError{Path: dir, Err: err}
		}

		var path string
		var data []byte
		var err error
		switch format {
		case "json":
			path = filepath.Join(dir, fmt.Sprintf("%d.json", c.Y))
			data, err = json.Marshal(rec)
		default:
			path = filepath.Join(dir, fmt.Sprintf("%d.pbf", c.Y))
			data, err = mvt.Encode(rec, &b.Opts, layerName)
		}
		if err != nil {
			return written, err
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, &tilekiln.IOFailureError{Path: path, Err: err}
		}
		b.Log.WithFields(logrus.Fields{"path": path, "bytes": len(data)}).Debug("wrote tile")
		written = append(written, path)
	}
	return written, nil
}

func (b *Builder) writePMTilesArchive(outDir, layerName string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &tilekiln.IOFailureError{Path: outDir, Err: err}
	}
	for _, c := range b.Index.Coords {
		if rec := b.Index.Get(c.Z, c.X, c.Y); rec != nil {
			vt.Transform(rec, b.Opts.Extent)
		}
	}

	meta := map[string]interface{}{"vector_layers": []map[string]interface{}{{"id": layerName}}}
	archive, err := pmtiles.WriteArchive(b.Index, &b.Opts, layerName, meta)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(outDir, layerName+".pmtiles")
	if err := os.WriteFile(path, archive, 0o644); err != nil {
		return nil, &tilekiln.IOFailureError{Path: path, Err: err}
	}
	return []string{path}, nil
}

// Metadata runs the Metadata Descriptor (spec.md §4.H) and returns a
// validated TileJSON document for this build.
func (b *Builder) Metadata(layerName, tileURLTemplate string, withRangesEnums bool) (tilejson.TileJSON, error) {
	tj := tilejson.Default()
	tj.Tiles = []string{tileURLTemplate}
	tj.MinZoom = 0
	tj.MaxZoom = b.Opts.MaxZoom

	layer := tilejson.VectorLayer{ID: layerName, Fields: map[string]tilekiln.FieldType{}}
	for _, f := range b.Features {
		for k, v := range f.Tags {
			layer.Fields[k] = fieldTypeOf(v)
		}
	}

	if withRangesEnums {
		ranges, enums, err := tilejson.ExtractFieldsRangesEnums(b.Features)
		if err != nil {
			return emptyTileJSON(), err
		}
		layer.FieldRanges = ranges
		layer.FieldEnums = enums
	}

	tj.VectorLayers = []tilejson.VectorLayer{layer}
	if err := tilejson.Validate(&tj); err != nil {
		return emptyTileJSON(), err
	}
	return tj, nil
}

func emptyTileJSON() tilejson.TileJSON { return tilejson.TileJSON{} }

func fieldTypeOf(v interface{}) tilekiln.FieldType {
	switch v.(type) {
	case string:
		return tilekiln.FieldString
	case float64, int, int64:
		return tilekiln.FieldNumber
	case bool:
		return tilekiln.FieldBoolean
	default:
		return tilekiln.FieldMixed
	}
}
