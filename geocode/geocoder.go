// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode turns free-text place names into coordinates.
package geocode

import (
	"context"

	"github.com/jcodagnone/filmmap/spatial"
)

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Latitude    float64
	Longitude   float64
	Confidence  string // high, medium, low
	Provider    string
	DisplayName string
}

// Point returns the result coordinates.
func (r *GeocodingResult) Point() spatial.Point {
	return spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// Geocoder is implemented by every geocoding provider.
//
// A query with no match must be reported as a *GeocodingError of type
// ErrorTypeNotFound. Only the first match is returned.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*GeocodingResult, error)
}
