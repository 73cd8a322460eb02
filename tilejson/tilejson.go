// Package tilejson implements the Metadata Descriptor from spec.md
// §4.H: validating and emitting a TileJSON sidecar document, and
// extracting per-field numeric ranges and string enums from the
// converted features by running one aggregate pass in an in-memory
// DuckDB table — grounded on the teacher's internal/db package, which
// already opens "github.com/marcboeker/go-duckdb" through
// database/sql the same way.
package tilejson

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/tilekiln/tilekiln"
)

// TileJSON is the sidecar document spec.md §4.H and §6 describe.
type TileJSON struct {
	TileJSON    string   `json:"tilejson"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Attribution string   `json:"attribution,omitempty"`
	Tiles       []string `json:"tiles"`
	MinZoom     int      `json:"minzoom"`
	MaxZoom     int      `json:"maxzoom"`
	Bounds      []float64 `json:"bounds,omitempty"`
	Center      []float64 `json:"center,omitempty"`

	VectorLayers []VectorLayer `json:"vector_layers"`
}

// VectorLayer mirrors TileLayerDescriptor in the wire-facing shape
// TileJSON readers expect.
type VectorLayer struct {
	ID          string                    `json:"id"`
	Fields      map[string]tilekiln.FieldType `json:"fields"`
	MinZoom     int                       `json:"minzoom,omitempty"`
	MaxZoom     int                       `json:"maxzoom,omitempty"`
	Description string                    `json:"description,omitempty"`

	FieldRanges       map[string][2]float64 `json:"fieldranges,omitempty"`
	FieldEnums        map[string][]string   `json:"fieldenums,omitempty"`
	FieldDescriptions map[string]string     `json:"fielddescriptions,omitempty"`
}

// Default returns a document with spec.md §4.H's defaults
// (minzoom=0, maxzoom=22) and tilejson="2.2.0".
func Default() TileJSON {
	return TileJSON{
		TileJSON: "2.2.0",
		MinZoom:  0,
		MaxZoom:  22,
	}
}

// Validate enforces spec.md §4.H's structural rules, returning an
// InvalidInputError describing the first violation found.
func Validate(tj *TileJSON) error {
	if len(tj.Tiles) == 0 {
		return &tilekiln.InvalidInputError{Reason: "tiles must contain at least one URL template"}
	}
	for _, t := range tj.Tiles {
		if !strings.Contains(t, "{z}") || !strings.Contains(t, "{x}") || !strings.Contains(t, "{y}") {
			return &tilekiln.InvalidInputError{Reason: "tile URL template must contain {z}, {x}, and {y}: " + t}
		}
	}
	if tj.MinZoom < 0 || tj.MaxZoom > 24 || tj.MinZoom > tj.MaxZoom {
		return &tilekiln.InvalidInputError{Reason: "minzoom/maxzoom out of range"}
	}
	if tj.Bounds != nil && (len(tj.Bounds) < 4 || len(tj.Bounds) > 10) {
		return &tilekiln.InvalidInputError{Reason: "bounds must have between 4 and 10 values"}
	}
	if tj.Center != nil && (len(tj.Center) < 3 || len(tj.Center) > 6) {
		return &tilekiln.InvalidInputError{Reason: "center must have between 3 and 6 values"}
	}
	if len(tj.VectorLayers) == 0 {
		return &tilekiln.InvalidInputError{Reason: "at least one vector_layer is required"}
	}
	return nil
}

// ExtractFieldsRangesEnums runs extract_fields_ranges_enums (spec.md
// §4.H) over features: one DuckDB aggregate pass computing, per
// field, MIN/MAX for numeric values and the DISTINCT set for string
// values. It opens its own transient in-memory connection so callers
// never need to manage DuckDB lifecycle for what is a one-shot
// analysis pass.
func ExtractFieldsRangesEnums(features []tilekiln.IntermediateFeature) (map[string][2]float64, map[string][]string, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, nil, fmt.Errorf("opening duckdb: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE tagvalues (field VARCHAR, num_value DOUBLE, str_value VARCHAR)`); err != nil {
		return nil, nil, fmt.Errorf("creating tagvalues table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO tagvalues (field, num_value, str_value) VALUES (?, ?, ?)`)
	if err != nil {
		return nil, nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range features {
		for k, v := range f.Tags {
			switch val := v.(type) {
			case float64:
				if _, err := stmt.Exec(k, val, nil); err != nil {
					return nil, nil, fmt.Errorf("inserting tag %s: %w", k, err)
				}
			case int:
				if _, err := stmt.Exec(k, float64(val), nil); err != nil {
					return nil, nil, fmt.Errorf("inserting tag %s: %w", k, err)
				}
			case int64:
				if _, err := stmt.Exec(k, float64(val), nil); err != nil {
					return nil, nil, fmt.Errorf("inserting tag %s: %w", k, err)
				}
			case bool:
				continue
			default:
				if _, err := stmt.Exec(k, nil, fmt.Sprint(val)); err != nil {
					return nil, nil, fmt.Errorf("inserting tag %s: %w", k, err)
				}
			}
		}
	}

	ranges, err := queryRanges(db)
	if err != nil {
		return nil, nil, err
	}
	enums, err := queryEnums(db)
	if err != nil {
		return nil, nil, err
	}
	return ranges, enums, nil
}

func queryRanges(db *sql.DB) (map[string][2]float64, error) {
	rows, err := db.Query(`
		SELECT field, MIN(num_value), MAX(num_value)
		FROM tagvalues
		WHERE num_value IS NOT NULL
		GROUP BY field
	`)
	if err != nil {
		return nil, fmt.Errorf("querying field ranges: %w", err)
	}
	defer rows.Close()

	out := make(map[string][2]float64)
	for rows.Next() {
		var field string
		var min, max float64
		if err := rows.Scan(&field, &min, &max); err != nil {
			return nil, fmt.Errorf("scanning field range: %w", err)
		}
		out[field] = [2]float64{min, max}
	}
	return out, rows.Err()
}

func queryEnums(db *sql.DB) (map[string][]string, error) {
	rows, err := db.Query(`
		SELECT DISTINCT field, str_value
		FROM tagvalues
		WHERE str_value IS NOT NULL
		ORDER BY field, str_value
	`)
	if err != nil {
		return nil, fmt.Errorf("querying field enums: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scanning field enum: %w", err)
		}
		out[field] = append(out[field], value)
	}
	return out, rows.Err()
}
