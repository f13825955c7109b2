// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package ranking orders resolved filming locations by distance and picks
// the ones worth a marker.
package ranking

import (
	"cmp"
	"slices"

	"github.com/jcodagnone/filmmap/catalog"
	"github.com/jcodagnone/filmmap/spatial"
)

// RankedRecord is a ResolvedRecord with its distance to the reference point.
type RankedRecord struct {
	catalog.ResolvedRecord

	DistanceMiles float64 `json:"distance_miles"`
}

// Rank returns records sorted by great-circle distance from ref, nearest
// first. Records at exactly the same distance keep their input order.
func Rank(ref spatial.Point, records []catalog.ResolvedRecord) []RankedRecord {
	ranked := make([]RankedRecord, len(records))
	for i, r := range records {
		ranked[i] = RankedRecord{
			ResolvedRecord: r,
			DistanceMiles:  ref.DistanceMiles(r.Point),
		}
	}

	slices.SortStableFunc(ranked, func(a, b RankedRecord) int {
		return cmp.Compare(a.DistanceMiles, b.DistanceMiles)
	})

	return ranked
}
