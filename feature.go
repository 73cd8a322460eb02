package tilekiln

// BBox is (minX, minY, maxX, maxY) in projected [0,1] space.
type BBox [4]float64

// Union grows b to also cover o.
func (b *BBox) Union(o BBox) {
	if o[0] < b[0] {
		b[0] = o[0]
	}
	if o[1] < b[1] {
		b[1] = o[1]
	}
	if o[2] > b[2] {
		b[2] = o[2]
	}
	if o[3] > b[3] {
		b[3] = o[3]
	}
}

// EmptyBBox returns a BBox primed for repeated Union calls.
func EmptyBBox() BBox {
	return BBox{2, 1, -1, 0}
}

// IntermediateFeature is one projected feature surviving conversion, as
// described in spec.md §3. Geometry stays at full projected precision
// through every clip pass; per-zoom simplification (spec.md §4.C) is
// applied once, at tile-build time, to the geometry already clipped to
// a tile (see DESIGN.md's decision on the source's double-tile-build
// open question).
type IntermediateFeature struct {
	ID       any // nil, int64 (generateId), or the decoded JSON value of the own or promoted id (float64 for numbers)
	Type     GeometryType
	Geometry Geometry
	Tags     map[string]any
	BBox     BBox

	// LineLength is the total projected-space arc length of a
	// LineString feature, computed once at conversion time so the
	// Clipper can derive mapbox_clip_start/mapbox_clip_end fractions
	// without re-walking already-clipped geometry.
	LineLength float64

	// ClipStart and ClipEnd are the [0,1] arc-length fractions of this
	// feature's surviving span within its original LineLength, set by
	// the Clipper and consumed by the Tile Builder to inject
	// mapbox_clip_start/mapbox_clip_end tags under LineMetrics (spec.md
	// §4.D, §4.E). They default to the whole-line span.
	ClipStart float64
	ClipEnd   float64
}
