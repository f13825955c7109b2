// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math"
	"strconv"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/filmmap/catalog"
	"github.com/jcodagnone/filmmap/geocode"
	"github.com/jcodagnone/filmmap/ranking"
	"github.com/jcodagnone/filmmap/render"
	"github.com/jcodagnone/filmmap/spatial"
	"github.com/jcodagnone/filmmap/store"
	"github.com/jcodagnone/filmmap/utils/textutils"
	"github.com/spf13/cobra"
)

// pipelineArgs are the positional arguments of a pipeline command.
type pipelineArgs struct {
	Year      int
	Reference spatial.Point
	Path      string
}

func parsePipelineArgs(args []string) (*pipelineArgs, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("accepts 4 arg(s), received %d", len(args))
	}

	year, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid year %q: %w", args[0], err)
	}

	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", args[1], err)
	}

	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude %s out of range [-90, 90]", args[1])
	}

	lng, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", args[2], err)
	}

	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("longitude %s out of range [-180, 180]", args[2])
	}

	return &pipelineArgs{
		Year:      year,
		Reference: spatial.Point{Lat: lat, Lng: lng},
		Path:      args[3],
	}, nil
}

// pipelineArgsValidator is a cobra.PositionalArgs for pipeline commands.
func pipelineArgsValidator(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(4)(cmd, args); err != nil {
		return err
	}

	_, err := parsePipelineArgs(args)

	return err
}

// pipelineResult is everything a pipeline run produces.
type pipelineResult struct {
	Ranked  []ranking.RankedRecord
	Markers ranking.MarkerSet
	Map     *render.Map
	Metrics catalog.ExtractMetrics
	Stats   geocode.ResolverStats
}

// runPipeline extracts, ranks and selects the films of args.Year. It never
// writes anything; callers decide what to do with the result.
func runPipeline(
	ctx context.Context,
	opts *Options,
	args *pipelineArgs,
	geocoder geocode.Geocoder,
) (*pipelineResult, error) {
	log.Printf("Arguments: year=%d latitude=%v longitude=%v path=%s",
		args.Year, args.Reference.Lat, args.Reference.Lng, args.Path)

	resolver := geocode.NewResolver(geocoder, geocode.ResolverOptions{
		Timeout:      opts.Timeout,
		DisableCache: opts.NoCache,
	})
	extractor := catalog.NewExtractor(resolver, &catalog.ExtractorOptions{ShowProgress: true})

	records, err := extractor.Extract(ctx, args.Path, args.Year)
	if err != nil {
		return nil, err
	}

	log.Printf(
		"Extraction phase metrics - %s lines, %s candidates for %d, %s geocoded",
		textutils.FormatInt(int64(extractor.Metrics.Lines)),
		textutils.FormatInt(int64(extractor.Metrics.Candidates)),
		args.Year,
		textutils.FormatInt(int64(extractor.Metrics.Resolved)),
	)
	log.Printf(
		"Geocoding metrics - %s lookups, %s cache hits, %s unresolved",
		textutils.FormatInt(int64(resolver.Stats.Lookups)),
		textutils.FormatInt(int64(resolver.Stats.CacheHits)),
		textutils.FormatInt(int64(resolver.Stats.Unresolved)),
	)

	ranked := ranking.Rank(args.Reference, records)
	markers := ranking.Select(ranked, opts.Markers)

	log.Printf("Selected %d nearest and %d farthest markers", len(markers.Nearest), len(markers.Farthest))

	title := fmt.Sprintf("Films of %d", args.Year)

	return &pipelineResult{
		Ranked:  ranked,
		Markers: markers,
		Map:     render.NewMap(title, args.Reference, opts.Zoom, markers),
		Metrics: extractor.Metrics,
		Stats:   resolver.Stats,
	}, nil
}

// exportRun stores the ranked run in the DuckDB database at path.
func exportRun(path string, args *pipelineArgs, result *pipelineResult) error {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	repo := store.NewRankedRepository(db)
	if err := repo.CreateSchema(); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	run := &store.Run{
		Year:      args.Year,
		Reference: args.Reference,
		Ranked:    result.Ranked,
		Markers:   result.Markers,
	}
	if err := repo.SaveRun(run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	log.Printf("Exported %s ranked records to %s", textutils.FormatInt(int64(len(result.Ranked))), path)

	return nil
}
