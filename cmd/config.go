// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/filmmap/geocode"
	"github.com/jcodagnone/filmmap/ranking"
	"github.com/jcodagnone/filmmap/render"
	"github.com/jcodagnone/filmmap/utils/httputils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Supported geocoding providers.
const (
	geocoderNominatim = "nominatim"
	geocoderGoogle    = "google"
)

// Options configuration shared by the commands that run the pipeline.
type Options struct {
	// Path of the HTML map written by the root command
	Output string

	// Initial zoom level of the map
	Zoom int

	// Number of markers in each of the nearest and farthest groups
	Markers int

	// Geocoding provider: nominatim or google
	Geocoder string

	// Base URL of the Nominatim instance
	NominatimURL string

	// Google Maps Geocoding API key, from the environment only
	GoogleAPIKey string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Bound for each geocoding call
	Timeout time.Duration

	// Disables in-run memoization of geocoding outcomes
	NoCache bool

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool

	// DuckDB file where the ranked run is exported, if set
	Export string

	// dotenv file loaded before reading the environment
	EnvFile string

	// Listen address of the serve command
	Addr string
}

// bindPipelineFlags registers the flags every pipeline command accepts.
func bindPipelineFlags(flags *pflag.FlagSet, opts *Options) {
	flags.IntVar(&opts.Zoom, "zoom", render.DefaultZoom, "Initial zoom level of the map")
	flags.IntVar(&opts.Markers, "markers", ranking.DefaultMarkerLimit, "Markers in each of the nearest and farthest groups")
	flags.StringVar(&opts.Geocoder, "geocoder", geocoderNominatim, "Geocoding provider: nominatim or google")
	flags.StringVar(&opts.NominatimURL, "nominatim-url", geocode.DefaultNominatimURL, "Base URL of the Nominatim instance")
	flags.StringVar(&opts.UserAgent, "user-agent", "", "User-Agent sent to the geocoding provider")
	flags.DurationVar(&opts.Timeout, "timeout", geocode.DefaultTimeout, "Timeout of each geocoding call")
	flags.BoolVar(&opts.NoCache, "no-cache", false, "Geocode every line, even repeated locations")
	flags.BoolVar(&opts.EnableHTTPTrace, "http-trace", false, "Trace geocoding HTTP requests to stderr")
	flags.BoolVar(&opts.EnableHTTPBodyTrace, "http-body-trace", false, "Trace geocoding HTTP requests including bodies")
	flags.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// loadEnvironment loads the dotenv file and fills every flag the user did
// not set from its environment variable.
func loadEnvironment(cmd *cobra.Command, opts *Options) error {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
	}

	envFlags := []struct {
		flag   string
		env    string
		target *string
	}{
		{"geocoder", "FILMMAP_GEOCODER", &opts.Geocoder},
		{"nominatim-url", "FILMMAP_NOMINATIM_URL", &opts.NominatimURL},
		{"user-agent", "FILMMAP_USER_AGENT", &opts.UserAgent},
	}

	for _, f := range envFlags {
		if cmd.Flags().Changed(f.flag) {
			continue
		}

		if v, ok := os.LookupEnv(f.env); ok && v != "" {
			*f.target = v
		}
	}

	opts.GoogleAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	if opts.UserAgent == "" {
		opts.UserAgent = fmt.Sprintf("filmmap/%s (+https://github.com/jcodagnone/filmmap)", Version)
	}

	return validateOptions(opts)
}

func validateOptions(opts *Options) error {
	if opts.Zoom < 0 || opts.Zoom > 19 {
		return fmt.Errorf("zoom must be between 0 and 19, got %d", opts.Zoom)
	}

	if opts.Markers < 0 {
		return fmt.Errorf("markers must not be negative, got %d", opts.Markers)
	}

	if opts.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", opts.Timeout)
	}

	switch opts.Geocoder {
	case geocoderNominatim, geocoderGoogle:
	default:
		return fmt.Errorf("unknown geocoder %q, want %s or %s", opts.Geocoder, geocoderNominatim, geocoderGoogle)
	}

	return nil
}

// newGeocoder builds the configured geocoding provider.
func newGeocoder(ctx context.Context, opts *Options) (geocode.Geocoder, error) {
	client := httputils.NewClient(&httputils.ClientOptions{
		UserAgent:           opts.UserAgent,
		Timeout:             opts.Timeout,
		EnableHTTPTrace:     opts.EnableHTTPTrace,
		EnableHTTPBodyTrace: opts.EnableHTTPBodyTrace,
	})

	switch opts.Geocoder {
	case geocoderGoogle:
		apiKey := opts.GoogleAPIKey
		if apiKey == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocode.GoogleMapsAPIKeyFromADC(ctx, os.Getenv("GOOGLE_CLOUD_PROJECT"))
			if err != nil {
				return nil, fmt.Errorf("retrieving Google Maps API key: %w", err)
			}

			log.Println("Retrieved Google Maps API key via ADC")
		}

		return geocode.NewGoogleMapsGeocoder(apiKey, client), nil
	default:
		return geocode.NewNominatimGeocoder(opts.NominatimURL, client), nil
	}
}
