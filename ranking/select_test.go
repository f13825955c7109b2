// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package ranking

import (
	"fmt"
	"testing"

	"github.com/jcodagnone/filmmap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankedAlongMeridian builds n ranked records, one degree apart, so that
// record i has coordinate (i, 0) and distance i.
func rankedAlongMeridian(n int) []RankedRecord {
	ranked := make([]RankedRecord, n)
	for i := range ranked {
		ranked[i] = RankedRecord{
			ResolvedRecord: resolved(i, fmt.Sprintf("film-%02d", i), spatial.Point{Lat: float64(i), Lng: 0}),
			DistanceMiles:  float64(i),
		}
	}

	return ranked
}

func titles(records []RankedRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}

	return out
}

func assertDisjoint(t *testing.T, set MarkerSet) {
	t.Helper()

	seen := make(map[spatial.Point]bool)
	for _, r := range append(append([]RankedRecord{}, set.Nearest...), set.Farthest...) {
		assert.False(t, seen[r.Point], "coordinate %v selected twice", r.Point)
		seen[r.Point] = true

		_, used := set.Used[r.Point]
		assert.True(t, used)
	}

	assert.Len(t, set.Used, len(seen))
}

func TestSelectFromBothEnds(t *testing.T) {
	set := Select(rankedAlongMeridian(30), DefaultMarkerLimit)

	assert.Equal(t, []string{
		"film-00", "film-01", "film-02", "film-03", "film-04",
		"film-05", "film-06", "film-07", "film-08", "film-09",
	}, titles(set.Nearest))
	assert.Equal(t, []string{
		"film-29", "film-28", "film-27", "film-26", "film-25",
		"film-24", "film-23", "film-22", "film-21", "film-20",
	}, titles(set.Farthest))
	assertDisjoint(t, set)
}

func TestSelectSmallPools(t *testing.T) {
	tests := []struct {
		n            int
		wantNearest  int
		wantFarthest int
	}{
		{0, 0, 0},
		{1, 1, 0},
		{10, 10, 0},
		{15, 10, 5},
		{20, 10, 10},
		{21, 10, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			set := Select(rankedAlongMeridian(tt.n), DefaultMarkerLimit)
			assert.Len(t, set.Nearest, tt.wantNearest)
			assert.Len(t, set.Farthest, tt.wantFarthest)
			assertDisjoint(t, set)
		})
	}
}

func TestSelectSharedCoordinateCollapses(t *testing.T) {
	p := spatial.Point{Lat: 29.0000001, Lng: 119.9999999}

	ranked := make([]RankedRecord, 25)
	for i := range ranked {
		ranked[i] = RankedRecord{
			ResolvedRecord: resolved(i, fmt.Sprintf("film-%02d", i), p),
			DistanceMiles:  4963.81,
		}
	}

	set := Select(ranked, DefaultMarkerLimit)
	require.Len(t, set.Nearest, 1)
	assert.Equal(t, "film-00", set.Nearest[0].Title, "first title in scan order wins")
	assert.Empty(t, set.Farthest)
	assertDisjoint(t, set)
}

func TestSelectDeduplicatesWithinAndAcrossGroups(t *testing.T) {
	a := spatial.Point{Lat: 1, Lng: 1}
	b := spatial.Point{Lat: 2, Lng: 2}
	c := spatial.Point{Lat: 3, Lng: 3}

	ranked := []RankedRecord{
		{ResolvedRecord: resolved(0, "a1", a), DistanceMiles: 1},
		{ResolvedRecord: resolved(1, "a2", a), DistanceMiles: 1},
		{ResolvedRecord: resolved(2, "b1", b), DistanceMiles: 2},
		{ResolvedRecord: resolved(3, "c1", c), DistanceMiles: 3},
		{ResolvedRecord: resolved(4, "b2", b), DistanceMiles: 4},
		{ResolvedRecord: resolved(5, "c2", c), DistanceMiles: 5},
	}

	set := Select(ranked, 2)
	assert.Equal(t, []string{"a1", "b1"}, titles(set.Nearest))
	assert.Equal(t, []string{"c2"}, titles(set.Farthest))
	assertDisjoint(t, set)
}

func TestSelectNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		set := Select(rankedAlongMeridian(5), limit)
		assert.Empty(t, set.Nearest)
		assert.Empty(t, set.Farthest)
		assert.Empty(t, set.Used)
	}
}

func TestPickDirection(t *testing.T) {
	ranked := rankedAlongMeridian(5)

	assert.Equal(t, []string{"film-00", "film-01"}, titles(pick(ranked, Forward, 2, map[spatial.Point]struct{}{})))
	assert.Equal(t, []string{"film-04", "film-03"}, titles(pick(ranked, Backward, 2, map[spatial.Point]struct{}{})))
}
