// Package convert implements the Feature Converter from spec.md §4.B:
// it decodes a GeoJSON document with orb/geojson, assigns each feature
// an id per the promoteId/generateId/own-id policy, projects every
// coordinate with the Projector, and emits one IntermediateFeature per
// input geometry (flattening GeometryCollection and, under
// LineMetrics, MultiLineString, into separate features).
package convert

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tilekiln/tilekiln"
)

// Convert decodes a GeoJSON FeatureCollection document and returns the
// projected IntermediateFeatures it contains, in input order. Features
// whose geometry is empty after projection are dropped (spec.md
// §4.B). A document that fails to parse, or whose geometry is neither
// recognized nor a GeometryCollection of recognized members, returns
// an InvalidInputError.
func Convert(data []byte, proj tilekiln.Projector, o *tilekiln.Options) ([]tilekiln.IntermediateFeature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		// Not every valid GeoJSON document is a FeatureCollection; fall
		// back to a single bare Feature or Geometry.
		if f, ferr := geojson.UnmarshalFeature(data); ferr == nil {
			fc = geojson.NewFeatureCollection()
			fc.Append(f)
		} else if g, gerr := geojson.UnmarshalGeometry(data); gerr == nil {
			fc = geojson.NewFeatureCollection()
			fc.Append(geojson.NewFeature(g.Geometry()))
		} else {
			return nil, &tilekiln.InvalidInputError{Reason: "not a recognizable GeoJSON document: " + err.Error()}
		}
	}

	var out []tilekiln.IntermediateFeature
	nextID := int64(0)

	for _, f := range fc.Features {
		id, err := resolveID(f, o, &nextID)
		if err != nil {
			return nil, err
		}

		features, err := convertGeometry(f.Geometry, id, f.Properties, proj, o)
		if err != nil {
			return nil, err
		}
		out = append(out, features...)
	}

	return out, nil
}

func resolveID(f *geojson.Feature, o *tilekiln.Options, nextID *int64) (any, error) {
	if o.PromoteID != "" {
		v, ok := f.Properties[o.PromoteID]
		if !ok {
			return nil, &tilekiln.InvalidInputError{Reason: "feature missing promoteId property: " + o.PromoteID}
		}
		return v, nil
	}
	if o.GenerateID {
		id := *nextID
		*nextID++
		return id, nil
	}
	if f.ID != nil {
		return f.ID, nil
	}
	return nil, nil
}

func convertGeometry(g orb.Geometry, id any, props map[string]any, proj tilekiln.Projector, o *tilekiln.Options) ([]tilekiln.IntermediateFeature, error) {
	if g == nil {
		return nil, nil
	}

	switch geom := g.(type) {
	case orb.Collection:
		var out []tilekiln.IntermediateFeature
		for _, member := range geom {
			sub, err := convertGeometry(member, id, props, proj, o)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil

	case orb.Point:
		return oneFeature(tilekiln.Point, projectFlat([]orb.Point{geom}, proj), nil, nil, id, props), nil

	case orb.MultiPoint:
		return oneFeature(tilekiln.MultiPoint, projectFlat(geom, proj), nil, nil, id, props), nil

	case orb.LineString:
		flat := projectFlat(geom, proj)
		return oneLineFeature(flat, id, props), nil

	case orb.MultiLineString:
		if o.LineMetrics {
			var out []tilekiln.IntermediateFeature
			for _, line := range geom {
				out = append(out, oneLineFeature(projectFlat(line, proj), id, props)...)
			}
			return out, nil
		}
		rings := make([][]float64, len(geom))
		for i, line := range geom {
			rings[i] = projectFlat(line, proj)
		}
		return oneFeature(tilekiln.MultiLineString, nil, rings, nil, id, props), nil

	case orb.Ring:
		return convertGeometry(orb.Polygon{geom}, id, props, proj, o)

	case orb.Polygon:
		rings := make([][]float64, 0, len(geom))
		for i, ring := range geom {
			flat := projectFlat(ring, proj)
			if len(flat)/3 < 4 {
				if i == 0 {
					return nil, nil
				}
				continue
			}
			rings = append(rings, flat)
		}
		if len(rings) == 0 {
			return nil, nil
		}
		return oneFeature(tilekiln.Polygon, nil, rings, nil, id, props), nil

	case orb.MultiPolygon:
		polys := make([][][]float64, 0, len(geom))
		for _, poly := range geom {
			rings := make([][]float64, 0, len(poly))
			for i, ring := range poly {
				flat := projectFlat(ring, proj)
				if len(flat)/3 < 4 {
					if i == 0 {
						rings = nil
						break
					}
					continue
				}
				rings = append(rings, flat)
			}
			if len(rings) > 0 {
				polys = append(polys, rings)
			}
		}
		if len(polys) == 0 {
			return nil, nil
		}
		return oneFeature(tilekiln.MultiPolygon, nil, nil, polys, id, props), nil

	default:
		return nil, &tilekiln.InvalidInputError{Reason: "unsupported geometry type"}
	}
}

func oneLineFeature(flat []float64, id any, props map[string]any) []tilekiln.IntermediateFeature {
	if len(flat)/3 < 2 {
		return nil
	}
	return oneFeature(tilekiln.LineString, flat, nil, nil, id, props)
}

func oneFeature(t tilekiln.GeometryType, flat []float64, rings [][]float64, polys [][][]float64, id any, props map[string]any) []tilekiln.IntermediateFeature {
	geom := tilekiln.Geometry{Type: t, Flat: flat, Rings: rings, Polygons: polys}
	if geom.Empty() {
		return nil
	}

	f := tilekiln.IntermediateFeature{
		ID:        id,
		Type:      t,
		Geometry:  geom,
		Tags:      props,
		BBox:      boundsOf(geom),
		ClipStart: 0,
		ClipEnd:   1,
	}
	if t == tilekiln.LineString {
		f.LineLength = arcLength(flat)
	}
	return []tilekiln.IntermediateFeature{f}
}

func projectFlat(pts []orb.Point, proj tilekiln.Projector) []float64 {
	out := make([]float64, 0, len(pts)*3)
	for _, p := range pts {
		out = append(out, proj.ProjectX(p[0]), proj.ProjectY(p[1]), 0)
	}
	return out
}

func arcLength(flat []float64) float64 {
	n := len(flat) / 3
	total := 0.0
	for i := 0; i < n-1; i++ {
		dx := flat[(i+1)*3] - flat[i*3]
		dy := flat[(i+1)*3+1] - flat[i*3+1]
		total += math.Hypot(dx, dy)
	}
	return total
}

func boundsOf(g tilekiln.Geometry) tilekiln.BBox {
	b := tilekiln.EmptyBBox()
	switch g.Type {
	case tilekiln.Point, tilekiln.MultiPoint, tilekiln.LineString:
		unionFlat(&b, g.Flat)
	case tilekiln.MultiLineString, tilekiln.Polygon:
		for _, r := range g.Rings {
			unionFlat(&b, r)
		}
	case tilekiln.MultiPolygon:
		for _, poly := range g.Polygons {
			for _, r := range poly {
				unionFlat(&b, r)
			}
		}
	}
	return b
}

func unionFlat(b *tilekiln.BBox, flat []float64) {
	n := len(flat) / 3
	for i := 0; i < n; i++ {
		x, y := flat[i*3], flat[i*3+1]
		if x < b[0] {
			b[0] = x
		}
		if y < b[1] {
			b[1] = y
		}
		if x > b[2] {
			b[2] = x
		}
		if y > b[3] {
			b[3] = y
		}
	}
}
