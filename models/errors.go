package models

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the DHIS2 client and the period codec.
var (
	ErrUnauthorized          = errors.New("invalid access token")
	ErrNotFound              = errors.New("endpoint not found")
	ErrUnsupportedPeriodType = errors.New("period type is not supported")
)

// UnhandledConflictError is returned for a 409 response whose conflicts
// contain at least one error code outside the allowed list.
type UnhandledConflictError struct {
	Body string
}

func (e *UnhandledConflictError) Error() string {
	return fmt.Sprintf("unhandled conflict: %s", e.Body)
}

// APIError is returned for any response status the client has no
// specific handling for.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status code %d and message %s", e.StatusCode, e.Body)
}

// InvalidMappingError indicates a data mapping whose configuration cannot
// produce a valid data value set, eg. a query without the required columns.
type InvalidMappingError struct {
	Reason string
}

func (e *InvalidMappingError) Error() string {
	return fmt.Sprintf("invalid data mapping: %s", e.Reason)
}
