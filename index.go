package tilekiln

// TileCoord is an insertion-ordered (z,x,y) triple, as recorded in
// TileIndex.Coords.
type TileCoord struct {
	Z, X, Y uint32
}

// PackID packs (z,x,y) into the collision-free key described in
// spec.md §3: ((1<<z)*y + x)*32 + z. This is collision-free for any
// z in [0,24], which is the full range the builder accepts.
func PackID(z, x, y uint32) uint64 {
	return ((uint64(1)<<z)*uint64(y)+uint64(x))*32 + uint64(z)
}

// TileIndex is the build's single shared, mutable data structure
// (spec.md §5): a map from packed id to TileRecord, plus an
// insertion-ordered coordinate list and per-zoom counters. It is
// mutated only by package vt: by Build, and after Build by GetTile's
// drill-down, which adds tiles on demand.
type TileIndex struct {
	Tiles  map[uint64]*TileRecord
	Coords []TileCoord
	ByZoom map[uint32]int
	Total  int
}

// NewTileIndex returns an empty index ready for the splitter to
// populate.
func NewTileIndex() *TileIndex {
	return &TileIndex{
		Tiles:  make(map[uint64]*TileRecord),
		ByZoom: make(map[uint32]int),
	}
}

// Get returns the tile at (z,x,y), or nil if it has not been built.
func (idx *TileIndex) Get(z, x, y uint32) *TileRecord {
	return idx.Tiles[PackID(z, x, y)]
}

// Put records a newly built tile and appends it to the insertion-
// ordered coordinate list. It never evicts an existing entry for the
// duration of a build (spec.md §3 Lifecycle).
func (idx *TileIndex) Put(t *TileRecord) {
	id := PackID(t.Z, t.X, t.Y)
	idx.Tiles[id] = t
	idx.Coords = append(idx.Coords, TileCoord{t.Z, t.X, t.Y})
	idx.ByZoom[t.Z]++
	idx.Total++
}
