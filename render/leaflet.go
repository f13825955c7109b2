// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package render writes marker sets as interactive Leaflet maps.
package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/jcodagnone/filmmap/ranking"
	"github.com/jcodagnone/filmmap/spatial"
)

// DefaultZoom is the initial zoom level of a map.
const DefaultZoom = 17

const mapTemplateName = "map.html"

//go:embed templates/*.html
var templatesFS embed.FS

var mapTemplate = template.Must(template.New("").ParseFS(templatesFS, "templates/*.html"))

// Marker is a labeled point on the map.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

// Map is everything needed to draw one map: the initial viewport and the
// two marker groups.
type Map struct {
	Title    string        `json:"title"`
	Center   spatial.Point `json:"center"`
	Zoom     int           `json:"zoom"`
	Nearest  []Marker      `json:"nearest"`
	Farthest []Marker      `json:"farthest"`
}

// NewMap builds a Map centered on center from a selection of records.
// Markers are labeled with the film title.
func NewMap(title string, center spatial.Point, zoom int, set ranking.MarkerSet) *Map {
	return &Map{
		Title:    title,
		Center:   center,
		Zoom:     zoom,
		Nearest:  markersOf(set.Nearest),
		Farthest: markersOf(set.Farthest),
	}
}

func markersOf(records []ranking.RankedRecord) []Marker {
	markers := make([]Marker, len(records))
	for i, r := range records {
		markers[i] = Marker{Lat: r.Point.Lat, Lng: r.Point.Lng, Label: r.Title}
	}

	return markers
}

// normalized returns a copy of m whose marker groups are never nil, so they
// are encoded as empty arrays.
func (m *Map) normalized() *Map {
	out := *m
	if out.Nearest == nil {
		out.Nearest = []Marker{}
	}

	if out.Farthest == nil {
		out.Farthest = []Marker{}
	}

	return &out
}

// WriteHTML renders m as a self-contained Leaflet page.
func WriteHTML(w io.Writer, m *Map) error {
	if err := mapTemplate.ExecuteTemplate(w, mapTemplateName, m.normalized()); err != nil {
		return fmt.Errorf("rendering map: %w", err)
	}

	return nil
}

// SaveHTML writes the page for m to path. The file is written next to its
// destination and renamed into place, so path never holds a partial map.
func SaveHTML(path string, m *Map) (err error) {
	dir := filepath.Dir(path)

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(f.Name()))
		}
	}()

	if err := WriteHTML(f, m); err != nil {
		return errors.Join(err, f.Close())
	}

	if err := f.Chmod(0o644); err != nil {
		return errors.Join(fmt.Errorf("setting map file mode: %w", err), f.Close())
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing map file: %w", err)
	}

	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("saving map file: %w", err)
	}

	return nil
}
