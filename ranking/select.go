// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package ranking

import "github.com/jcodagnone/filmmap/spatial"

// DefaultMarkerLimit is the size of each marker group.
const DefaultMarkerLimit = 10

// Direction is the order in which a ranked list is scanned.
type Direction int

const (
	// Forward scans from the nearest record.
	Forward Direction = iota
	// Backward scans from the farthest record.
	Backward
)

// MarkerSet holds the records chosen for display. No coordinate appears
// twice across Nearest and Farthest.
type MarkerSet struct {
	Nearest  []RankedRecord
	Farthest []RankedRecord

	// Used holds every coordinate claimed by either group.
	Used map[spatial.Point]struct{}
}

// Select picks up to limit records with distinct coordinates from each end
// of ranked. Nearest is filled first, so a coordinate it claims cannot
// appear in Farthest. When several records share a coordinate the first
// one met in scan order is kept.
func Select(ranked []RankedRecord, limit int) MarkerSet {
	set := MarkerSet{
		Nearest:  []RankedRecord{},
		Farthest: []RankedRecord{},
		Used:     make(map[spatial.Point]struct{}),
	}

	if limit <= 0 {
		return set
	}

	set.Nearest = pick(ranked, Forward, limit, set.Used)
	set.Farthest = pick(ranked, Backward, limit, set.Used)

	return set
}

// pick scans ranked in the given direction, claiming unused coordinates in
// used until limit records are taken.
func pick(ranked []RankedRecord, dir Direction, limit int, used map[spatial.Point]struct{}) []RankedRecord {
	picked := make([]RankedRecord, 0, min(limit, len(ranked)))

	for i := range ranked {
		if len(picked) == limit {
			break
		}

		r := ranked[i]
		if dir == Backward {
			r = ranked[len(ranked)-1-i]
		}

		if _, ok := used[r.Point]; ok {
			continue
		}

		used[r.Point] = struct{}{}
		picked = append(picked, r)
	}

	return picked
}
