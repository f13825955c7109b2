// Copyright 2025 The FilmMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// GeocodingError represents a classified failure of a geocoding provider.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit the provider throttled us.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the request did not finish in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound the provider has no match for the query.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the provider rejected the query itself.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError the provider could not be reached or is unavailable.
	ErrorTypeNetworkError
	// ErrorTypeMalformedResult the provider answered with unusable coordinates.
	ErrorTypeMalformedResult
)

var errorTypeNames = [...]string{
	ErrorTypeUnknown:         "unknown",
	ErrorTypeRateLimit:       "rate_limit",
	ErrorTypeQuotaExceeded:   "quota_exceeded",
	ErrorTypeTimeout:         "timeout",
	ErrorTypeNotFound:        "not_found",
	ErrorTypeInvalidRequest:  "invalid_request",
	ErrorTypeNetworkError:    "network_error",
	ErrorTypeMalformedResult: "malformed_result",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}

	return errorTypeNames[t]
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errorTypeOf(err error) (ErrorType, bool) {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type, true
	}

	return ErrorTypeUnknown, false
}

// IsNotFoundError reports whether the provider had no match for the query.
func IsNotFoundError(err error) bool {
	t, ok := errorTypeOf(err)

	return ok && t == ErrorTypeNotFound
}

// IsRateLimitError reports whether the error comes from provider throttling.
func IsRateLimitError(err error) bool {
	if t, ok := errorTypeOf(err); ok {
		return t == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether the provider quota is exhausted.
func IsQuotaExceededError(err error) bool {
	if t, ok := errorTypeOf(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	// Google Maps reports it in the status field.
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError reports whether the error is a timeout.
func IsTimeoutError(err error) bool {
	if t, ok := errorTypeOf(err); ok {
		return t == ErrorTypeTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps an unexpected HTTP status into a GeocodingError.
func ClassifyHTTPError(statusCode int, body string) *GeocodingError {
	var geoErr *GeocodingError

	switch statusCode {
	case http.StatusTooManyRequests:
		geoErr = &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit reached"}
	case http.StatusForbidden:
		geoErr = &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "quota exceeded or access denied"}
	case http.StatusBadRequest:
		geoErr = &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "invalid request"}
	case http.StatusNotFound:
		geoErr = &GeocodingError{Type: ErrorTypeNotFound, Message: "location not found"}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		geoErr = &GeocodingError{Type: ErrorTypeTimeout, Message: fmt.Sprintf("provider timed out (status %d)", statusCode)}
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		geoErr = &GeocodingError{Type: ErrorTypeNetworkError, Message: fmt.Sprintf("service unavailable (status %d)", statusCode)}
	default:
		geoErr = &GeocodingError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("HTTP error %d", statusCode)}
	}

	if body = strings.TrimSpace(body); body != "" {
		const maxBody = 200
		if len(body) > maxBody {
			body = body[:maxBody] + "…"
		}

		geoErr.Message += ": " + body
	}

	return geoErr
}

// classifyTransportError wraps an error returned by http.Client.Do.
func classifyTransportError(err error) *GeocodingError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GeocodingError{Type: ErrorTypeTimeout, Message: "geocoding request timed out", Err: err}
	}

	return &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
}
