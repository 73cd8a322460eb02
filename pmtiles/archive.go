// archive.go adapts the low-level PMTiles v3 codec in pmtiles.go (kept
// from the teacher's internal/pmtiles, itself a trimmed port of
// protomaps/go-pmtiles) into the additive PMTiles output sink
// SPEC_FULL.md §3 describes: it walks a tilekiln.TileIndex, encodes
// each tile with package mvt, and assembles a single self-contained
// .pmtiles file. The directory/tile-data framing and Hilbert id
// ordering are unchanged from the teacher's code; only this file is
// new.
package pmtiles

import (
	"bytes"
	"compress/gzip"
	"sort"

	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/mvt"
)

// WriteArchive renders every non-empty tile in idx as a gzip-compressed
// MVT layer named layerName and assembles them into a PMTiles v3 byte
// stream. It does not transform tiles: each must already have been
// through vt.Transform, or mvt.Encode's EncoderFailureError is
// returned. WriteArchive itself never splits tiles further.
func WriteArchive(idx *tilekiln.TileIndex, opts *tilekiln.Options, layerName string, metadata map[string]interface{}) ([]byte, error) {
	type encoded struct {
		z, x, y uint32
		data    []byte
	}

	var tiles []encoded
	minZoom, maxZoom := uint8(255), uint8(0)

	for _, c := range idx.Coords {
		rec := idx.Get(c.Z, c.X, c.Y)
		if rec == nil || len(rec.Features) == 0 {
			continue
		}

		raw, err := mvt.Encode(rec, opts, layerName)
		if err != nil {
			return nil, err
		}

		var gz bytes.Buffer
		w, err := gzip.NewWriterLevel(&gz, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}

		tiles = append(tiles, encoded{c.Z, c.X, c.Y, gz.Bytes()})
		if uint8(c.Z) < minZoom {
			minZoom = uint8(c.Z)
		}
		if uint8(c.Z) > maxZoom {
			maxZoom = uint8(c.Z)
		}
	}

	sort.Slice(tiles, func(i, j int) bool {
		return ZxyToID(uint8(tiles[i].z), tiles[i].x, tiles[i].y) < ZxyToID(uint8(tiles[j].z), tiles[j].x, tiles[j].y)
	})

	var tileData bytes.Buffer
	entries := make([]EntryV3, 0, len(tiles))
	for _, t := range tiles {
		offset := uint64(tileData.Len())
		entries = append(entries, EntryV3{
			TileID:    ZxyToID(uint8(t.z), t.x, t.y),
			Offset:    offset,
			Length:    uint32(len(t.data)),
			RunLength: 1,
		})
		tileData.Write(t.data)
	}

	metaBytes, err := SerializeMetadata(metadata, Gzip)
	if err != nil {
		return nil, err
	}
	dirBytes := SerializeEntries(entries, Gzip)

	if len(tiles) == 0 {
		minZoom, maxZoom = 0, 0
	}

	header := HeaderV3{
		RootOffset:          HeaderV3LenBytes,
		RootLength:          uint64(len(dirBytes)),
		MetadataOffset:      HeaderV3LenBytes + uint64(len(dirBytes)),
		MetadataLength:      uint64(len(metaBytes)),
		LeafDirectoryOffset: 0,
		LeafDirectoryLength: 0,
		TileDataOffset:      HeaderV3LenBytes + uint64(len(dirBytes)) + uint64(len(metaBytes)),
		TileDataLength:      uint64(tileData.Len()),
		AddressedTilesCount: uint64(len(tiles)),
		TileEntriesCount:    uint64(len(tiles)),
		TileContentsCount:   uint64(len(tiles)),
		Clustered:           true,
		InternalCompression: Gzip,
		TileCompression:     Gzip,
		TileType:            Mvt,
		MinZoom:             minZoom,
		MaxZoom:             maxZoom,
	}

	var out bytes.Buffer
	out.Write(SerializeHeader(header))
	out.Write(dirBytes)
	out.Write(metaBytes)
	out.Write(tileData.Bytes())
	return out.Bytes(), nil
}
