// Copyright 2025 The FilmMap Authors
//
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// H3Resolutions is the number of H3 resolutions computed by H3Cells,
// starting at resolution 1.
const H3Resolutions = 8

// H3Cells returns the H3 cell containing p at resolutions 1 through 8.
// Element i holds the cell at resolution i+1.
func H3Cells(p Point) ([H3Resolutions]int64, error) {
	var cells [H3Resolutions]int64

	latLng := h3.NewLatLng(p.Lat, p.Lng)
	for res := 1; res <= H3Resolutions; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return cells, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		cells[res-1] = int64(cell)
	}

	return cells, nil
}
