// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jcodagnone/filmmap/spatial"
	"github.com/jcodagnone/filmmap/utils/textutils"
)

// DefaultTimeout bounds each geocoding call.
const DefaultTimeout = 10 * time.Second

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Timeout bounds every geocoder call. Zero means DefaultTimeout.
	Timeout time.Duration

	// DisableCache makes every Resolve call reach the geocoder.
	DisableCache bool
}

// ResolverStats counts what a Resolver did.
type ResolverStats struct {
	Lookups    int // calls that reached the geocoder
	CacheHits  int
	Resolved   int
	Unresolved int
}

type outcome struct {
	point    spatial.Point
	resolved bool
}

// Resolver turns location text into coordinates, treating misses as an
// ordinary outcome rather than an error.
//
// Outcomes are memoized in memory for the lifetime of the Resolver, so each
// distinct normalized text reaches the geocoder once. A Resolver is not safe
// for concurrent use.
type Resolver struct {
	geocoder Geocoder
	timeout  time.Duration
	cache    map[string]outcome
	Stats    ResolverStats
}

// NewResolver creates a Resolver backed by geocoder.
func NewResolver(geocoder Geocoder, options ResolverOptions) *Resolver {
	r := &Resolver{
		geocoder: geocoder,
		timeout:  options.Timeout,
	}

	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}

	if !options.DisableCache {
		r.cache = make(map[string]outcome)
	}

	return r
}

// Resolve returns the coordinates for locationText. The boolean is false
// when the text could not be resolved: no match, a query the provider
// rejects, a malformed answer or a call that exceeded the timeout.
// Any other failure is returned as an error and should abort the run.
func (r *Resolver) Resolve(ctx context.Context, locationText string) (spatial.Point, bool, error) {
	query := textutils.NormalizeSpace(locationText)
	if query == "" {
		r.Stats.Unresolved++

		return spatial.Point{}, false, nil
	}

	if o, ok := r.cache[query]; ok {
		r.Stats.CacheHits++
		r.count(o.resolved)

		return o.point, o.resolved, nil
	}

	o, err := r.lookup(ctx, query)
	if err != nil {
		return spatial.Point{}, false, err
	}

	if r.cache != nil {
		r.cache[query] = o
	}

	r.count(o.resolved)

	return o.point, o.resolved, nil
}

func (r *Resolver) count(resolved bool) {
	if resolved {
		r.Stats.Resolved++
	} else {
		r.Stats.Unresolved++
	}
}

func (r *Resolver) lookup(ctx context.Context, query string) (outcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.Stats.Lookups++

	result, err := r.geocoder.Geocode(callCtx, query)
	if err != nil {
		if ctx.Err() != nil {
			// The run itself was cancelled, not just this call.
			return outcome{}, fmt.Errorf("geocoding %q: %w", query, errors.Join(ctx.Err(), err))
		}

		if isMiss(err) {
			return outcome{}, nil
		}

		return outcome{}, fmt.Errorf("geocoding %q: %w", query, err)
	}

	p := result.Point()
	if !p.IsFinite() {
		return outcome{}, nil
	}

	return outcome{point: p, resolved: true}, nil
}

// isMiss reports whether err is an expected, non-fatal geocoding outcome.
func isMiss(err error) bool {
	if t, ok := errorTypeOf(err); ok {
		switch t {
		case ErrorTypeNotFound, ErrorTypeInvalidRequest, ErrorTypeMalformedResult, ErrorTypeTimeout:
			return true
		default:
			return false
		}
	}

	return errors.Is(err, context.DeadlineExceeded)
}
