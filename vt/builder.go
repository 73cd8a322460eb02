package vt

import "github.com/tilekiln/tilekiln"

// buildTile implements the Tile Builder (spec.md §4.E): it consumes
// the post-clip feature list for (z,x,y), simplifies each feature's
// geometry at z's tolerance (spec.md §4.C, applied here rather than
// ahead of time — see vt/zoom.go), and produces a TileRecord.
func buildTile(z, x, y uint32, clipped []tilekiln.IntermediateFeature, opts *tilekiln.Options) *tilekiln.TileRecord {
	rec := &tilekiln.TileRecord{Z: z, X: x, Y: y}
	rec.MinX, rec.MinY = tilekiln.EmptyBBox()[0], tilekiln.EmptyBBox()[1]
	rec.MaxX, rec.MaxY = tilekiln.EmptyBBox()[2], tilekiln.EmptyBBox()[3]

	for _, f := range clipped {
		rec.NumPoints += f.Geometry.NumPoints()

		simplified := simplifyForBuild(f.Geometry, int(z), opts)
		rec.NumSimplified += simplified.NumPoints()

		tags := f.Tags
		if f.Type == tilekiln.LineString && opts.LineMetrics {
			tags = withClipTags(tags, f.ClipStart, f.ClipEnd)
		}

		rec.Features = append(rec.Features, tilekiln.TileFeature{
			ID:       f.ID,
			Type:     f.Type,
			Geometry: simplified,
			Tags:     tags,
		})
		rec.NumFeatures++

		if f.BBox[0] < rec.MinX {
			rec.MinX = f.BBox[0]
		}
		if f.BBox[1] < rec.MinY {
			rec.MinY = f.BBox[1]
		}
		if f.BBox[2] > rec.MaxX {
			rec.MaxX = f.BBox[2]
		}
		if f.BBox[3] > rec.MaxY {
			rec.MaxY = f.BBox[3]
		}
	}

	return rec
}

// withClipTags returns a shallow copy of tags plus the
// mapbox_clip_start/mapbox_clip_end entries spec.md §4.E requires for
// LineString features under lineMetrics.
func withClipTags(tags map[string]any, start, end float64) map[string]any {
	out := make(map[string]any, len(tags)+2)
	for k, v := range tags {
		out[k] = v
	}
	out["mapbox_clip_start"] = start
	out["mapbox_clip_end"] = end
	return out
}
