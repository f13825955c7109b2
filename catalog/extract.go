// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jcodagnone/filmmap/spatial"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// LocationResolver geocodes location text. The boolean is false for texts
// that cannot be resolved; an error aborts the extraction.
type LocationResolver interface {
	Resolve(ctx context.Context, locationText string) (spatial.Point, bool, error)
}

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	// Draws a progress bar on stderr while resolving, if it is a terminal
	ShowProgress bool
}

// ExtractMetrics tracks what the extraction saw.
type ExtractMetrics struct {
	Lines      int
	Candidates int
	Resolved   int
}

// progress is satisfied by *progressbar.ProgressBar.
type progress interface {
	Add(n int) error
	Finish() error
}

// Extractor reads a catalog and resolves the locations of one year.
type Extractor struct {
	resolver LocationResolver
	options  *ExtractorOptions
	newBar   func(n int, year int) progress
	Metrics  ExtractMetrics
}

// NewExtractor creates an Extractor that geocodes through resolver.
func NewExtractor(resolver LocationResolver, options *ExtractorOptions) *Extractor {
	if options == nil {
		options = &ExtractorOptions{}
	}

	e := &Extractor{
		resolver: resolver,
		options:  options,
	}
	e.newBar = e.newProgressBar

	return e
}

// Extract reads the catalog at path and returns, in file order, one
// ResolvedRecord per line of the given year whose location geocodes.
func (e *Extractor) Extract(ctx context.Context, path string, year int) ([]ResolvedRecord, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	return e.ExtractReader(ctx, f, year)
}

// ExtractReader is Extract over an arbitrary reader.
//
// Lines without the year token and locations that do not resolve are
// skipped without notice. Resolver errors abort the extraction.
func (e *Extractor) ExtractReader(ctx context.Context, r io.Reader, year int) ([]ResolvedRecord, error) {
	candidates, err := e.candidates(r, year)
	if err != nil {
		return nil, err
	}

	var bar progress
	if e.options.ShowProgress && len(candidates) > 0 {
		bar = e.newBar(len(candidates), year)
	}

	records := make([]ResolvedRecord, 0, len(candidates))

	for _, c := range candidates {
		p, ok, err := e.resolver.Resolve(ctx, c.LocationText)
		if err != nil {
			return nil, fmt.Errorf("resolving location %q: %w", c.LocationText, err)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				log.Printf("updating progress bar for %q: %v", c.Title, err)
			}
		}

		if !ok {
			continue
		}

		records = append(records, ResolvedRecord{
			CandidateRecord: *c,
			Point:           p,
			Index:           len(records),
		})
	}

	if bar != nil {
		if err := bar.Finish(); err != nil {
			log.Printf("finishing progress bar: %v", err)
		}
	}

	e.Metrics.Resolved += len(records)

	return records, nil
}

func (e *Extractor) candidates(r io.Reader, year int) ([]*CandidateRecord, error) {
	var candidates []*CandidateRecord

	scanner := NewLineScanner(r)
	for scanner.Scan() {
		e.Metrics.Lines++

		if c, ok := ParseLine(scanner.Text(), year); ok {
			candidates = append(candidates, c)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog line %d: %w", e.Metrics.Lines+1, err)
	}

	e.Metrics.Candidates += len(candidates)

	return candidates, nil
}

// newProgressBar returns nil unless stderr is a terminal.
func (e *Extractor) newProgressBar(n int, year int) progress {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription("Geocoding "+strconv.Itoa(year)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
