// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package store exports ranked runs to DuckDB for ad-hoc analysis.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/filmmap/ranking"
	"github.com/jcodagnone/filmmap/spatial"
)

// Marker groups as stored in the marker column.
const (
	MarkerNearest  = "nearest"
	MarkerFarthest = "farthest"
)

// Run is one execution of the pipeline.
type Run struct {
	Year      int
	Reference spatial.Point
	Ranked    []ranking.RankedRecord
	Markers   ranking.MarkerSet
}

// StoredRecord is a ranked record as read back from the database.
type StoredRecord struct {
	ranking.RankedRecord

	// Rank is the 0-based position in the ranked list.
	Rank int
	// Marker is MarkerNearest, MarkerFarthest or empty.
	Marker  string
	H3Cells [spatial.H3Resolutions]int64
}

// RunInfo describes the run currently stored.
type RunInfo struct {
	Year      int
	Reference spatial.Point
	CreatedAt time.Time
}

// RankedRepository persists the outcome of a run.
type RankedRepository interface {
	// CreateSchema creates the tables if they do not exist
	CreateSchema() error

	// SaveRun replaces the stored run with run
	SaveRun(run *Run) error

	// GetRunInfo returns the stored run description, or sql.ErrNoRows
	GetRunInfo() (*RunInfo, error)

	// ListRanked returns the stored records in rank order
	ListRanked() ([]*StoredRecord, error)

	// CountRanked returns the number of stored records
	CountRanked() (int, error)
}

type sqlRankedRepository struct {
	db *sql.DB
}

// NewRankedRepository creates a repository over a DuckDB connection.
func NewRankedRepository(db *sql.DB) RankedRepository {
	return &sqlRankedRepository{db: db}
}

func (r *sqlRankedRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			year INTEGER NOT NULL,
			ref_lat DOUBLE NOT NULL,
			ref_lng DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS film_locations (
			rank INTEGER PRIMARY KEY,
			extraction_index INTEGER NOT NULL,
			title VARCHAR NOT NULL,
			year INTEGER NOT NULL,
			location VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			point VARCHAR NOT NULL,
			distance_miles DOUBLE NOT NULL,
			marker VARCHAR,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// markerGroups maps extraction indexes to the marker group they ended in.
func markerGroups(set ranking.MarkerSet) map[int]string {
	groups := make(map[int]string, len(set.Nearest)+len(set.Farthest))
	for _, rec := range set.Nearest {
		groups[rec.Index] = MarkerNearest
	}

	for _, rec := range set.Farthest {
		groups[rec.Index] = MarkerFarthest
	}

	return groups
}

func (r *sqlRankedRepository) SaveRun(run *Run) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback export transaction: %v", err)
		}
	}()

	for _, stmt := range []string{"DELETE FROM film_locations", "DELETE FROM runs"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing previous run: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO runs (year, ref_lat, ref_lng, created_at) VALUES (?, ?, ?, ?)",
		run.Year, run.Reference.Lat, run.Reference.Lng, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO film_locations (
			rank, extraction_index, title, year, location, lat, lng, point, distance_miles, marker,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	groups := markerGroups(run.Markers)

	for i, rec := range run.Ranked {
		cells, err := spatial.H3Cells(rec.Point)
		if err != nil {
			return fmt.Errorf("indexing %q: %w", rec.Title, err)
		}

		var marker sql.NullString
		if g, ok := groups[rec.Index]; ok {
			marker = sql.NullString{String: g, Valid: true}
		}

		if _, err := stmt.Exec(
			i, rec.Index, rec.Title, rec.Year, rec.LocationText,
			rec.Point.Lat, rec.Point.Lng, rec.Point, rec.DistanceMiles, marker,
			cells[0], cells[1], cells[2], cells[3], cells[4], cells[5], cells[6], cells[7],
		); err != nil {
			return fmt.Errorf("inserting %q: %w", rec.Title, err)
		}
	}

	return tx.Commit()
}

func (r *sqlRankedRepository) GetRunInfo() (*RunInfo, error) {
	var info RunInfo

	err := r.db.QueryRow("SELECT year, ref_lat, ref_lng, created_at FROM runs LIMIT 1").
		Scan(&info.Year, &info.Reference.Lat, &info.Reference.Lng, &info.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

func (r *sqlRankedRepository) ListRanked() ([]*StoredRecord, error) {
	rows, err := r.db.Query(`
		SELECT rank, extraction_index, title, year, location, point, distance_miles, marker,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		FROM film_locations
		ORDER BY rank
	`)
	if err != nil {
		return nil, fmt.Errorf("querying ranked records: %w", err)
	}
	defer rows.Close()

	var records []*StoredRecord

	for rows.Next() {
		var (
			rec    StoredRecord
			marker sql.NullString
			cells  [spatial.H3Resolutions]uint64
		)

		if err := rows.Scan(
			&rec.Rank, &rec.Index, &rec.Title, &rec.Year, &rec.LocationText, &rec.Point,
			&rec.DistanceMiles, &marker,
			&cells[0], &cells[1], &cells[2], &cells[3], &cells[4], &cells[5], &cells[6], &cells[7],
		); err != nil {
			return nil, fmt.Errorf("scanning ranked record: %w", err)
		}

		rec.Marker = marker.String
		for i, c := range cells {
			rec.H3Cells[i] = int64(c)
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}

func (r *sqlRankedRepository) CountRanked() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM film_locations").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting ranked records: %w", err)
	}

	return count, nil
}
