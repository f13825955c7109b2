// Copyright 2025 The FilmMap Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the geographic primitives shared by the pipeline.
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
)

const (
	earthRadius   = 6371.0088e3 // mean radius, meters
	metersPerMile = 1000 / 0.621371192
)

// Point represents a geographical point with latitude and longitude.
//
// Points are comparable and are used as map keys when deduplicating
// markers, so two points are the same location only when both components
// are exactly equal.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a WKT representation of the Point, with the shortest
// decimal form that reads back to the same coordinates.
func (p Point) String() string {
	return "POINT(" + strconv.FormatFloat(p.Lng, 'f', -1, 64) + " " +
		strconv.FormatFloat(p.Lat, 'f', -1, 64) + ")"
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value any) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	var s string

	switch v := value.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}

	// DuckDB renders "POINT (lng lat)" while String omits the space.
	if _, err := fmt.Sscanf(s, "POINT (%f %f)", &p.Lng, &p.Lat); err == nil {
		return nil
	}

	if _, err := fmt.Sscanf(s, "POINT(%f %f)", &p.Lng, &p.Lat); err != nil {
		return fmt.Errorf("spatial: invalid point %q: %w", s, err)
	}

	return nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// DistanceMiles is HaversineDistance expressed in statute miles.
func (p Point) DistanceMiles(other Point) float64 {
	return p.HaversineDistance(other) / metersPerMile
}
