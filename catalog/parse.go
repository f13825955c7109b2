// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	parenGroupRe = regexp.MustCompile(`\([^()]*\)`)
	braceGroupRe = regexp.MustCompile(`\{[^{}]*\}`)
)

// YearToken returns the token that marks a line as belonging to year.
func YearToken(year int) string {
	return "(" + strconv.Itoa(year) + ")"
}

// ParseLine extracts the title and location of a catalog line whose
// whitespace-separated tokens include "(year)". The title is everything
// before the first such token, without '#'. The location is everything
// after it, with (...) and {...} annotations removed.
//
// A record with an empty location is still returned; it simply will not
// geocode.
func ParseLine(line string, year int) (*CandidateRecord, bool) {
	tokens := strings.Fields(line)
	yearToken := YearToken(year)

	for i, token := range tokens {
		if token != yearToken {
			continue
		}

		title := strings.ReplaceAll(strings.Join(tokens[:i], " "), "#", "")

		location := strings.Join(tokens[i+1:], " ")
		location = parenGroupRe.ReplaceAllString(location, "")
		location = braceGroupRe.ReplaceAllString(location, "")

		return &CandidateRecord{
			Title:        title,
			Year:         year,
			LocationText: strings.TrimSpace(location),
		}, true
	}

	return nil, false
}
