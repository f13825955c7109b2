// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/h3-go/v4"
)

func TestDistanceMiles(t *testing.T) {
	lviv := Point{Lat: 49.817545, Lng: 24.023932}

	tests := []struct {
		name  string
		other Point
		want  float64
	}{
		{
			name:  "coventry",
			other: Point{Lat: 52.4081812, Lng: 1.510477},
			want:  988.5919790888222,
		},
		{
			name:  "zhejiang",
			other: Point{Lat: 29.0000001, Lng: 119.9999999},
			want:  4963.81211167831,
		},
		{
			name:  "same point",
			other: lviv,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, lviv.DistanceMiles(tt.other), 1e-6)
			assert.InDelta(t, tt.want, tt.other.DistanceMiles(lviv), 1e-6)
		})
	}
}

func TestHaversineDistanceAntipodes(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 180}

	assert.InDelta(t, math.Pi*earthRadius, a.HaversineDistance(b), 1e-3)
}

func TestIsFinite(t *testing.T) {
	assert.True(t, Point{Lat: 10, Lng: -20}.IsFinite())
	assert.False(t, Point{Lat: math.NaN(), Lng: 0}.IsFinite())
	assert.False(t, Point{Lat: 0, Lng: math.Inf(1)}.IsFinite())
}

func TestPointString(t *testing.T) {
	assert.Equal(t, "POINT(119.9999999 29.0000001)", Point{Lat: 29.0000001, Lng: 119.9999999}.String())
	assert.Equal(t, "POINT(-1.510477 52.4081812)", Point{Lat: 52.4081812, Lng: -1.510477}.String())
}

func TestPointScan(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    Point
		wantErr bool
	}{
		{name: "nil", value: nil, want: Point{}},
		{name: "duckdb bytes", value: []byte("POINT (1.5 2.25)"), want: Point{Lat: 2.25, Lng: 1.5}},
		{name: "wkt string", value: Point{Lat: -33.5, Lng: 151.25}.String(), want: Point{Lat: -33.5, Lng: 151.25}},
		{name: "garbage", value: "LINESTRING", wantErr: true},
		{name: "unsupported type", value: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Point{Lat: 99, Lng: 99}

			err := p.Scan(tt.value)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestH3Cells(t *testing.T) {
	cells, err := H3Cells(Point{Lat: 29.0000001, Lng: 119.9999999})
	require.NoError(t, err)

	for i, c := range cells {
		cell := h3.Cell(c)
		assert.True(t, cell.IsValid(), "res %d", i+1)
		assert.Equal(t, i+1, cell.Resolution())
	}

	parent, err := h3.Cell(cells[7]).Parent(1)
	require.NoError(t, err)
	assert.Equal(t, cells[0], int64(parent))
}
