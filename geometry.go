package tilekiln

// GeometryType tags the variant carried by a Geometry or IntermediateFeature.
// Unknown tags never reach this type: the Feature Converter rejects them at
// the JSON boundary with an InvalidInputError.
type GeometryType uint8

const (
	// UnknownGeometry is the zero value; it is never assigned to a
	// converted feature and exists only to catch uninitialized structs.
	UnknownGeometry GeometryType = iota
	Point
	MultiPoint
	LineString
	MultiLineString
	Polygon
	MultiPolygon
	GeometryCollection
)

func (t GeometryType) String() string {
	switch t {
	case Point:
		return "Point"
	case MultiPoint:
		return "MultiPoint"
	case LineString:
		return "LineString"
	case MultiLineString:
		return "MultiLineString"
	case Polygon:
		return "Polygon"
	case MultiPolygon:
		return "MultiPolygon"
	case GeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

// WireType is the vector-tile feature type (spec.md §4.G): 1 for points,
// 2 for lines, 3 for polygons.
func (t GeometryType) WireType() uint32 {
	switch t {
	case Point, MultiPoint:
		return 1
	case LineString, MultiLineString:
		return 2
	case Polygon, MultiPolygon:
		return 3
	default:
		return 0
	}
}

// Geometry is the tagged, flat-buffer intermediate representation
// described in spec.md §3. Exactly one field is populated, selected by
// Type:
//
//   - Point, MultiPoint: Flat holds (x,y,0) triples, one per point.
//   - LineString: Flat holds a single (x,y,0) triple run.
//   - MultiLineString: Rings holds one flat triple run per sub-line.
//   - Polygon: Rings holds one flat triple run per ring; Rings[0] is
//     the outer boundary, the rest are holes.
//   - MultiPolygon: Polygons holds one Polygon's Rings per element.
//   - GeometryCollection is never stored directly; the Feature
//     Converter flattens it into one IntermediateFeature per member
//     geometry before any Geometry value is built.
type Geometry struct {
	Type     GeometryType
	Flat     []float64
	Rings    [][]float64
	Polygons [][][]float64
}

// NumPoints returns the number of (x,y,0) triples carried by g,
// regardless of which field holds them.
func (g *Geometry) NumPoints() int {
	switch g.Type {
	case Point, MultiPoint, LineString:
		return len(g.Flat) / 3
	case MultiLineString, Polygon:
		n := 0
		for _, r := range g.Rings {
			n += len(r) / 3
		}
		return n
	case MultiPolygon:
		n := 0
		for _, poly := range g.Polygons {
			for _, r := range poly {
				n += len(r) / 3
			}
		}
		return n
	default:
		return 0
	}
}

// Empty reports whether g carries zero coordinates.
func (g *Geometry) Empty() bool {
	return g.NumPoints() == 0
}
