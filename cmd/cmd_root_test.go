// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jcodagnone/filmmap/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `CRC: 0x1A2B3C4D  File: locations.list  Date: Fri Dec 22 00:00:00 2017
LOCATIONS LIST
==============
#SomeFilm (2015) Zhejiang, China
Zhong Kui fu mo: Xue yao mo ling (2015)	Zhejiang, China	(location)
Older Film (2014)	Coventry, West Midlands, England, UK
"Series" (2015) {Pilot (#1.1)}	Coventry, West Midlands, England, UK
Lost Film (2015)	Atlantis
Studio Only (2015)	(studio)
`

// newNominatimStub answers searches from a fixed table and with an empty
// list for anything else. A non-zero status makes every request fail.
func newNominatimStub(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	places := map[string][]map[string]any{
		"Zhejiang, China": {{
			"lat": "29.0000001", "lon": "119.9999999", "display_name": "Zhejiang, China", "importance": 0.7,
		}},
		"Coventry, West Midlands, England, UK": {{
			"lat": "52.4081812", "lon": "-1.510477", "display_name": "Coventry", "importance": 0.5,
		}},
	}

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		if status != 0 {
			http.Error(w, "boom", status)

			return
		}

		items, ok := places[r.URL.Query().Get("q")]
		if !ok {
			items = []map[string]any{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "locations.list")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func runRoot(t *testing.T, args ...string) error {
	t.Helper()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return executeRoot(t.Context(), cmd, append([]string{"--env-file", "", "--geocoder", "nominatim"}, args...))
}

func TestRootCommand(t *testing.T) {
	server, requests := newNominatimStub(t, 0)
	catalogPath := writeCatalog(t, sampleCatalog)
	dir := t.TempDir()
	output := filepath.Join(dir, "map.html")
	export := filepath.Join(dir, "films.duckdb")

	err := runRoot(t,
		"--nominatim-url", server.URL,
		"--output", output,
		"--export", export,
		"2015", "49.817545", "24.023932", catalogPath,
	)
	require.NoError(t, err)

	// Zhejiang, Coventry and Atlantis; the repeated location is memoized
	// and the studio line has no location text left.
	assert.Equal(t, int32(3), requests.Load())

	page, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Films of 2015</title>")
	// Both 2015 Zhejiang films share a coordinate; only the first one read
	// gets a marker.
	assert.Contains(t, string(page), "SomeFilm")
	assert.NotContains(t, string(page), "Zhong Kui fu mo")

	db, err := sql.Open("duckdb", export)
	require.NoError(t, err)
	defer db.Close()

	repo := store.NewRankedRepository(db)

	count, err := repo.CountRanked()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	records, err := repo.ListRanked()
	require.NoError(t, err)

	markers := map[string]int{}
	for _, rec := range records {
		markers[rec.Marker]++
	}

	assert.Equal(t, 2, markers[store.MarkerNearest])
	assert.Equal(t, 0, markers[store.MarkerFarthest])
}

func TestRootCommandNegativeCoordinates(t *testing.T) {
	server, _ := newNominatimStub(t, 0)
	catalogPath := writeCatalog(t, sampleCatalog)
	output := filepath.Join(t.TempDir(), "map.html")

	err := runRoot(t,
		"--nominatim-url", server.URL,
		"2015", "-33.9", "-70.6", catalogPath,
		"--output", output,
		"--zoom", "5",
	)
	require.NoError(t, err)

	page, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(page), `"lat":-33.9`)
	assert.Contains(t, string(page), `"lng":-70.6`)
	assert.Contains(t, string(page), `"zoom":5`)
}

func TestSeparateNegativeNumbers(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no negatives",
			args: []string{"--zoom", "3", "2015", "49.8", "24.0", "locations.list"},
			want: []string{"--zoom", "3", "2015", "49.8", "24.0", "locations.list"},
		},
		{
			name: "southern hemisphere",
			args: []string{"2015", "-33.9", "18.4", "locations.list"},
			want: []string{"--", "2015", "-33.9", "18.4", "locations.list"},
		},
		{
			name: "flags around positionals",
			args: []string{"-o", "map.html", "2015", "40.7", "-74.0", "locations.list", "--no-cache", "--zoom", "3"},
			want: []string{"-o", "map.html", "--no-cache", "--zoom", "3", "--", "2015", "40.7", "-74.0", "locations.list"},
		},
		{
			name: "negative flag value",
			args: []string{"--markers=2", "--zoom", "-1", "2015", "-1", "-2", "locations.list"},
			want: []string{"--markers=2", "--zoom", "-1", "--", "2015", "-1", "-2", "locations.list"},
		},
		{
			name: "subcommand",
			args: []string{"serve", "2015", "-33.9", "-70.6", "locations.list", "--addr", ":9090"},
			want: []string{"serve", "--addr", ":9090", "--", "2015", "-33.9", "-70.6", "locations.list"},
		},
		{
			name: "already separated",
			args: []string{"2015", "--", "-33.9", "-70.6", "locations.list"},
			want: []string{"2015", "--", "-33.9", "-70.6", "locations.list"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, separateNegativeNumbers(newRootCmd(), tt.args))
		})
	}
}

func TestRootCommandEmptyCatalog(t *testing.T) {
	server, requests := newNominatimStub(t, 0)
	catalogPath := writeCatalog(t, "")
	output := filepath.Join(t.TempDir(), "map.html")

	err := runRoot(t,
		"--nominatim-url", server.URL,
		"--output", output,
		"1999", "0", "0", catalogPath,
	)
	require.NoError(t, err)

	assert.Equal(t, int32(0), requests.Load())
	assert.FileExists(t, output)
}

func TestRootCommandFatalGeocodingError(t *testing.T) {
	server, _ := newNominatimStub(t, http.StatusInternalServerError)
	catalogPath := writeCatalog(t, sampleCatalog)
	dir := t.TempDir()
	output := filepath.Join(dir, "map.html")
	export := filepath.Join(dir, "films.duckdb")

	err := runRoot(t,
		"--nominatim-url", server.URL,
		"--output", output,
		"--export", export,
		"2015", "49.817545", "24.023932", catalogPath,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolving location "Zhejiang, China"`)

	assert.NoFileExists(t, output)
	assert.NoFileExists(t, export)
}

func TestRootCommandMissingCatalog(t *testing.T) {
	output := filepath.Join(t.TempDir(), "map.html")

	err := runRoot(t,
		"--output", output,
		"2015", "49.817545", "24.023932", filepath.Join(t.TempDir(), "missing.list"),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, output)
}

func TestRootCommandRejectsArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing path", args: []string{"2015", "49.8", "24.0"}},
		{name: "bad year", args: []string{"MMXV", "49.8", "24.0", "locations.list"}},
		{name: "latitude out of range", args: []string{"2015", "91", "24.0", "locations.list"}},
		{name: "bad zoom", args: []string{"--zoom", "42", "2015", "49.8", "24.0", "locations.list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, runRoot(t, tt.args...))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.2.3"
	t.Cleanup(func() { Version = "dev" })

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "filmmap 1.2.3\n", out.String())
}
