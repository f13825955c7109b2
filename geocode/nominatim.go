// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a geocoder for the Nominatim instance at
// baseURL. The client must send an identifying User-Agent, as required by
// the Nominatim usage policy.
func NewNominatimGeocoder(baseURL string, httpClient *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &NominatimGeocoder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type nominatimItem struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building nominatim request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		if IsTimeoutError(err) {
			return nil, classifyTransportError(err)
		}

		return nil, &GeocodingError{Type: ErrorTypeMalformedResult, Message: "decoding nominatim response", Err: err}
	}

	return parseNominatimItems(location, items)
}

func parseNominatimItems(location string, items []nominatimItem) (*GeocodingResult, error) {
	if len(items) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results found for location: %s", location),
		}
	}

	item := items[0]

	lat, err := strconv.ParseFloat(item.Lat, 64)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResult, Message: "parsing latitude", Err: err}
	}

	lon, err := strconv.ParseFloat(item.Lon, 64)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformedResult, Message: "parsing longitude", Err: err}
	}

	confidence := "low"

	switch {
	case item.Importance >= 0.6:
		confidence = "high"
	case item.Importance >= 0.3:
		confidence = "medium"
	}

	return &GeocodingResult{
		Latitude:    lat,
		Longitude:   lon,
		Confidence:  confidence,
		Provider:    "nominatim",
		DisplayName: item.DisplayName,
	}, nil
}
