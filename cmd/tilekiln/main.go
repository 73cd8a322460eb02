// Command tilekiln builds a vector tile pyramid from a GeoJSON (or
// MicroJSON) document, following the teacher's cobra-based CLI shape
// in cmd/geo/main.go, minus the huma HTTP server that has no place in
// a tool that, per its spec, never serves tiles over a network.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tilekiln/tilekiln"
	"github.com/tilekiln/tilekiln/builder"
	"github.com/tilekiln/tilekiln/internal/config"
	"github.com/tilekiln/tilekiln/internal/logging"
	"github.com/tilekiln/tilekiln/tilejson"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:     "tilekiln",
		Short:   "Build a vector tile pyramid from a GeoJSON document",
		Version: "0.1.0",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newValidateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newBuildCmd() *cobra.Command {
	var input, outDir, layerName, format, tileURL string
	var withRangesEnums bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the tile pyramid and write it to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(boundFlags(cmd), configPath)
			if err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			log := logging.New(verbose)

			data, err := os.ReadFile(input)
			if err != nil {
				return &tilekiln.IOFailureError{Path: input, Err: err}
			}
			logging.ReadingInput(log, input, len(data))

			b, err := builder.New(opts, log)
			if err != nil {
				return err
			}
			if err := b.Build(data); err != nil {
				return err
			}

			written, err := b.WriteTiles(outDir, layerName, format)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %d tile file(s) to %s\n", len(written), outDir)

			tj, err := b.Metadata(layerName, tileURL, withRangesEnums)
			if err != nil {
				return err
			}
			return writeMetadata(outDir, tj)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to the input GeoJSON document (required)")
	cmd.Flags().StringVar(&outDir, "out", "tiles", "output directory")
	cmd.Flags().StringVar(&layerName, "layer", "layer0", "vector layer name")
	cmd.Flags().StringVar(&format, "format", "pbf", "tile output format: pbf, json, or pmtiles")
	cmd.Flags().StringVar(&tileURL, "tile-url", "tiles/{z}/{x}/{y}.pbf", "tile URL template for the TileJSON sidecar")
	cmd.Flags().BoolVar(&withRangesEnums, "field-stats", false, "extract numeric ranges and string enums per field")
	cmd.Flags().Int("max-zoom", tilekiln.DefaultOptions().MaxZoom, "deepest zoom written")
	cmd.Flags().Int("index-max-zoom", tilekiln.DefaultOptions().IndexMaxZoom, "deepest zoom built eagerly")
	cmd.Flags().Int("index-max-points", tilekiln.DefaultOptions().IndexMaxPoints, "stop splitting at or below this point count")
	cmd.Flags().Float64("tolerance", tilekiln.DefaultOptions().Tolerance, "base simplification tolerance")
	cmd.Flags().Int("extent", tilekiln.DefaultOptions().Extent, "integer grid per tile")
	cmd.Flags().Int("buffer", tilekiln.DefaultOptions().Buffer, "overlap on each tile edge")
	cmd.Flags().Bool("line-metrics", tilekiln.DefaultOptions().LineMetrics, "retain clip fractions per LineString")
	cmd.Flags().String("promote-id", tilekiln.DefaultOptions().PromoteID, "property name to adopt as feature id")
	cmd.Flags().Bool("generate-id", tilekiln.DefaultOptions().GenerateID, "synthesize integer ids from input order")
	cmd.Flags().String("tolerance-function", tilekiln.DefaultOptions().ToleranceFunctionName, "zoom to tolerance curve")
	cmd.MarkFlagRequired("input")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an input document by building its tile index in memory, without writing tiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(boundFlags(cmd), configPath)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return &tilekiln.IOFailureError{Path: input, Err: err}
			}

			b, err := builder.New(opts, nil)
			if err != nil {
				return err
			}
			if err := b.Build(data); err != nil {
				return err
			}
			fmt.Printf("valid: %d features, %d tiles\n", len(b.Features), b.Index.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "path to the input document (required)")
	cmd.MarkFlagRequired("input")
	return cmd
}

func boundFlags(cmd *cobra.Command) *pflag.FlagSet {
	return cmd.Flags()
}

// writeMetadata writes the TileJSON sidecar to tiles/metadata.json, as
// spec.md §6 names it.
func writeMetadata(outDir string, tj tilejson.TileJSON) error {
	data, err := json.MarshalIndent(tj, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, "metadata.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &tilekiln.IOFailureError{Path: path, Err: err}
	}
	return nil
}
