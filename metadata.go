package tilekiln

// FieldType is the TileJSON field type tag recorded for each observed
// property.
type FieldType string

const (
	FieldString  FieldType = "String"
	FieldNumber  FieldType = "Number"
	FieldBoolean FieldType = "Boolean"
	FieldMixed   FieldType = "Mixed"
)

// TileLayerDescriptor is the metadata-only record from spec.md §3: it
// never holds geometry, only the schema a consumer needs to decode and
// style a layer's tiles.
type TileLayerDescriptor struct {
	ID          string
	Fields      map[string]FieldType
	MinZoom     int
	MaxZoom     int
	Description string

	// FieldRanges and FieldEnums are populated only when the caller
	// requests extract_fields_ranges_enums (spec.md §4.H).
	FieldRanges map[string][2]float64
	FieldEnums  map[string][]string

	// FieldDescriptions supplements the TileJSON the way the source's
	// TileLayer.fielddescriptions does (see SPEC_FULL.md §3).
	FieldDescriptions map[string]string
}
