// Package mvt hand-rolls the vector-tile binary wire format from
// spec.md §4.G. Simplification and clipping already have no suitable
// third-party encoder exposing the floor-halving and line-metrics
// behavior spec.md requires (see DESIGN.md); the wire format has the
// same shape of problem one level further down the pipeline, so this
// package writes the protobuf bytes directly with encoding/binary
// varints, the same way the teacher's internal/pmtiles package
// hand-rolls its directory-entry varints instead of reaching for a
// protobuf library.
package mvt

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tilekiln/tilekiln"
)

const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// Encode renders one TileRecord as a single-layer vector-tile message.
// rec must already be transformed (vt.Transform); Encode returns
// EncoderFailureError otherwise, or if a feature id can't be parsed to
// uint64.
func Encode(rec *tilekiln.TileRecord, opts *tilekiln.Options, layerName string) ([]byte, error) {
	if !rec.Transformed {
		return nil, &tilekiln.EncoderFailureError{Reason: "tile not transformed before encoding"}
	}

	keys, keyIndex := internKeys(rec.Features)
	values, valueIndex, err := internValues(rec.Features)
	if err != nil {
		return nil, err
	}

	var layer bytes.Buffer
	writeVarintField(&layer, 15, 0, 2) // version = 2
	writeStringField(&layer, 1, layerName)

	for _, k := range keys {
		writeStringField(&layer, 3, k)
	}
	for _, v := range values {
		var vb bytes.Buffer
		if err := encodeValue(&vb, v); err != nil {
			return nil, err
		}
		writeMessageField(&layer, 4, vb.Bytes())
	}

	for i := range rec.Features {
		fb, err := encodeFeature(&rec.Features[i], keyIndex, valueIndex)
		if err != nil {
			return nil, err
		}
		writeMessageField(&layer, 2, fb)
	}

	writeVarintField(&layer, 5, 0, uint64(opts.Extent))

	return layer.Bytes(), nil
}

func internKeys(features []tilekiln.TileFeature) ([]string, map[string]int) {
	var keys []string
	index := make(map[string]int)
	for _, f := range features {
		for _, k := range tagKeys(f.Tags) {
			if _, ok := index[k]; !ok {
				index[k] = len(keys)
				keys = append(keys, k)
			}
		}
	}
	return keys, index
}

type tileValue struct {
	kind byte // 's'=string, 'f'=float64, 'i'=int64, 'u'=uint64, 'b'=bool
	s    string
	f    float64
	i    int64
	u    uint64
	b    bool
}

func internValues(features []tilekiln.TileFeature) ([]tileValue, map[string]int, error) {
	var values []tileValue
	index := make(map[string]int)

	for _, f := range features {
		for _, k := range tagKeys(f.Tags) {
			v, key := toTileValue(f.Tags[k])
			if _, ok := index[key]; !ok {
				index[key] = len(values)
				values = append(values, v)
			}
		}
	}
	return values, index, nil
}

// tagKeys returns tags' keys in sorted order. A feature's own
// key/value pairing order carries no meaning on the wire, but Go
// deliberately randomizes map iteration order on every range, so
// encoding the same tile twice must not rely on it: sorting keeps
// dictionary assignment (first-seen order) and each feature's
// tag-pair list reproducible between encode calls, as spec.md §8's
// idempotence and drill-down-equivalence properties require.
func tagKeys(tags map[string]any) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toTileValue(raw any) (tileValue, string) {
	switch v := raw.(type) {
	case string:
		return tileValue{kind: 's', s: v}, "s:" + v
	case bool:
		return tileValue{kind: 'b', b: v}, fmt.Sprintf("b:%v", v)
	case int:
		return tileValue{kind: 'i', i: int64(v)}, fmt.Sprintf("i:%d", v)
	case int64:
		return tileValue{kind: 'i', i: v}, fmt.Sprintf("i:%d", v)
	case uint64:
		return tileValue{kind: 'u', u: v}, fmt.Sprintf("u:%d", v)
	case float64:
		return tileValue{kind: 'f', f: v}, fmt.Sprintf("f:%v", v)
	default:
		s := fmt.Sprint(v)
		return tileValue{kind: 's', s: s}, "s:" + s
	}
}

func encodeValue(buf *bytes.Buffer, v tileValue) error {
	switch v.kind {
	case 's':
		writeStringField(buf, 1, v.s)
	case 'f':
		writeDoubleField(buf, 3, v.f)
	case 'i':
		writeVarintField(buf, 4, 0, zigzagOrRaw(v.i))
	case 'u':
		writeVarintField(buf, 5, 0, v.u)
	case 'b':
		b := uint64(0)
		if v.b {
			b = 1
		}
		writeVarintField(buf, 7, 0, b)
	default:
		return &tilekiln.EncoderFailureError{Reason: "unsupported tag value type"}
	}
	return nil
}

// zigzagOrRaw stores int_value as its two's-complement bit pattern,
// matching protobuf's plain (non-zigzag) int64 field encoding.
func zigzagOrRaw(v int64) uint64 { return uint64(v) }

func encodeFeature(f *tilekiln.TileFeature, keyIndex, valueIndex map[string]int) ([]byte, error) {
	var buf bytes.Buffer

	if f.ID != nil {
		id, err := idToUint64(f.ID)
		if err != nil {
			return nil, err
		}
		writeVarintField(&buf, 1, 0, id)
	}

	var tagPairs []uint32
	for _, k := range tagKeys(f.Tags) {
		_, key := toTileValue(f.Tags[k])
		tagPairs = append(tagPairs, uint32(keyIndex[k]), uint32(valueIndex[key]))
	}
	if len(tagPairs) > 0 {
		writePackedUint32Field(&buf, 2, tagPairs)
	}

	writeVarintField(&buf, 3, 0, uint64(f.Type.WireType()))

	cmds, err := encodeGeometry(f.Geometry)
	if err != nil {
		return nil, err
	}
	writePackedUint32Field(&buf, 4, cmds)

	return buf.Bytes(), nil
}

func idToUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case uint64:
		return v, nil
	case int64:
		if v < 0 {
			return 0, &tilekiln.EncoderFailureError{Reason: "negative feature id cannot encode to uint64"}
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, &tilekiln.EncoderFailureError{Reason: "negative feature id cannot encode to uint64"}
		}
		return uint64(v), nil
	case string:
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, &tilekiln.EncoderFailureError{Reason: "non-integer feature id: " + v}
		}
		return u, nil
	case float64:
		if v < 0 || v != math.Trunc(v) {
			return 0, &tilekiln.EncoderFailureError{Reason: fmt.Sprintf("non-integer feature id: %v", v)}
		}
		return uint64(v), nil
	default:
		return 0, &tilekiln.EncoderFailureError{Reason: fmt.Sprintf("unsupported feature id type %T", raw)}
	}
}

// encodeGeometry builds the MoveTo/LineTo/ClosePath command stream,
// reorienting polygon rings (outer CCW, inner CW; ties resolved CCW)
// just before emission, per spec.md §4.G.
func encodeGeometry(g tilekiln.Geometry) ([]uint32, error) {
	var cmds []uint32
	cx, cy := 0, 0

	switch g.Type {
	case tilekiln.Point, tilekiln.MultiPoint:
		n := len(g.Flat) / 3
		if n == 0 {
			return nil, &tilekiln.EncoderFailureError{Reason: "empty point geometry"}
		}
		cmds = append(cmds, cmdCommand(cmdMoveTo, n))
		for i := 0; i < n; i++ {
			x, y := int(g.Flat[i*3]), int(g.Flat[i*3+1])
			cmds = append(cmds, zigzag(x-cx), zigzag(y-cy))
			cx, cy = x, y
		}

	case tilekiln.LineString:
		cx, cy = appendLine(&cmds, g.Flat, cx, cy)

	case tilekiln.MultiLineString:
		for _, line := range g.Rings {
			cx, cy = appendLine(&cmds, line, cx, cy)
		}

	case tilekiln.Polygon:
		cx, cy = appendPolygonRings(&cmds, g.Rings, cx, cy)

	case tilekiln.MultiPolygon:
		for _, poly := range g.Polygons {
			cx, cy = appendPolygonRings(&cmds, poly, cx, cy)
		}

	default:
		return nil, &tilekiln.EncoderFailureError{Reason: "unsupported geometry variant"}
	}

	return cmds, nil
}

func appendLine(cmds *[]uint32, line []float64, cx, cy int) (int, int) {
	n := len(line) / 3
	if n < 2 {
		return cx, cy
	}
	x0, y0 := int(line[0]), int(line[1])
	*cmds = append(*cmds, cmdCommand(cmdMoveTo, 1), zigzag(x0-cx), zigzag(y0-cy))
	cx, cy = x0, y0

	*cmds = append(*cmds, cmdCommand(cmdLineTo, n-1))
	for i := 1; i < n; i++ {
		x, y := int(line[i*3]), int(line[i*3+1])
		*cmds = append(*cmds, zigzag(x-cx), zigzag(y-cy))
		cx, cy = x, y
	}
	return cx, cy
}

func appendPolygonRings(cmds *[]uint32, rings [][]float64, cx, cy int) (int, int) {
	for i, ring := range rings {
		oriented := orient(ring, i == 0)
		n := len(oriented) / 3
		if n < 4 {
			continue
		}

		x0, y0 := int(oriented[0]), int(oriented[1])
		*cmds = append(*cmds, cmdCommand(cmdMoveTo, 1), zigzag(x0-cx), zigzag(y0-cy))
		cx, cy = x0, y0

		*cmds = append(*cmds, cmdCommand(cmdLineTo, n-2))
		for j := 1; j < n-1; j++ {
			x, y := int(oriented[j*3]), int(oriented[j*3+1])
			*cmds = append(*cmds, zigzag(x-cx), zigzag(y-cy))
			cx, cy = x, y
		}

		*cmds = append(*cmds, cmdCommand(cmdClosePath, 1))
	}
	return cx, cy
}

// orient enforces outer-CCW / inner-CW orientation by the ring's
// shoelace-area sign, reversing point order when needed. A zero-area
// (degenerate) ring is left as-is: the tie is "resolved CCW" simply by
// never flipping it.
func orient(ring []float64, outer bool) []float64 {
	area := signedArea(ring)
	wantPositive := outer
	if (area > 0) == wantPositive || area == 0 {
		return ring
	}
	return reverseRing(ring)
}

func signedArea(ring []float64) float64 {
	n := len(ring) / 3
	sum := 0.0
	for i := 0; i < n-1; i++ {
		x1, y1 := ring[i*3], ring[i*3+1]
		x2, y2 := ring[(i+1)*3], ring[(i+1)*3+1]
		sum += x1*y2 - x2*y1
	}
	return sum / 2
}

func reverseRing(ring []float64) []float64 {
	n := len(ring) / 3
	out := make([]float64, len(ring))
	for i := 0; i < n; i++ {
		src := (n - 1 - i) * 3
		out[i*3], out[i*3+1], out[i*3+2] = ring[src], ring[src+1], ring[src+2]
	}
	return out
}

func cmdCommand(id, count int) uint32 {
	return uint32((id & 0x7) | (count << 3))
}

func zigzag(v int) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}
