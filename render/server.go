// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/filmmap/ranking"
	"github.com/jcodagnone/filmmap/utils/textutils"
)

// Server serves a rendered map and the data behind it.
type Server struct {
	m      *Map
	ranked []ranking.RankedRecord
}

// NewServer creates a Server for m. ranked is the full list the markers
// were selected from.
func NewServer(m *Map, ranked []ranking.RankedRecord) *Server {
	return &Server{m: m.normalized(), ranked: ranked}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(mapTemplate)

	r.GET("/", s.mapView)
	r.GET("/api/markers", s.getMarkers)
	r.GET("/api/ranked", s.listRanked)

	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) mapView(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, mapTemplateName, s.m)
}

func (s *Server) getMarkers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.m)
}

// listRanked returns the ranked records, optionally filtered by q, which
// matches title or location ignoring case and accents, and capped by limit.
func (s *Server) listRanked(ctx *gin.Context) {
	limit := len(s.ranked)

	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})

			return
		}

		limit = n
	}

	q := textutils.LowerASCIIFolding(ctx.Query("q"))

	records := make([]ranking.RankedRecord, 0, min(limit, len(s.ranked)))

	for _, r := range s.ranked {
		if len(records) >= limit {
			break
		}

		if q != "" &&
			!strings.Contains(textutils.LowerASCIIFolding(r.Title), q) &&
			!strings.Contains(textutils.LowerASCIIFolding(r.LocationText), q) {
			continue
		}

		records = append(records, r)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"total":   len(s.ranked),
		"records": records,
	})
}
