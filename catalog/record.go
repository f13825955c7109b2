// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog extracts geocoded filming locations from a plain text
// listing in the format of the IMDb locations.list file.
package catalog

import "github.com/jcodagnone/filmmap/spatial"

// CandidateRecord is a catalog line that matched the requested year.
// LocationText never contains parenthesized or braced annotations.
type CandidateRecord struct {
	Title        string `json:"title"`
	Year         int    `json:"year"`
	LocationText string `json:"location"`
}

// ResolvedRecord is a CandidateRecord whose location was geocoded.
type ResolvedRecord struct {
	CandidateRecord

	Point spatial.Point `json:"point"`

	// Index is the position of the record in extraction order.
	Index int `json:"index"`
}
