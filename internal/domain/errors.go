package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNoRetailers is returned when a search is attempted without any retailer enabled
	ErrNoRetailers = errors.New("no retailers selected")

	// ErrUnknownRetailer is returned when a client names an unsupported retailer
	ErrUnknownRetailer = errors.New("unknown retailer")

	// ErrSearchAPIFailure is returned when the retailer search service request fails
	ErrSearchAPIFailure = errors.New("search API request failed")

	// ErrSessionNotFound is returned when a shopping session does not exist or expired
	ErrSessionNotFound = errors.New("shopping session not found")

	// ErrNoCatalog is returned when a session operation needs a list search first
	ErrNoCatalog = errors.New("no list search results")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrKeyNotFound is returned by key-value stores for absent keys
	ErrKeyNotFound = errors.New("key not found")
)

// SearchError carries the human readable message of a failed search.
// It matches ErrSearchAPIFailure with errors.Is.
type SearchError struct {
	StatusCode int
	Message    string
}

func (e *SearchError) Error() string {
	if e.Message == "" {
		return "API error"
	}
	return e.Message
}

func (e *SearchError) Unwrap() error {
	return ErrSearchAPIFailure
}

// ErrSearchSuperseded is returned when a newer search or a retailer reset
// replaced an in-flight list search
var ErrSearchSuperseded = errors.New("search superseded")
