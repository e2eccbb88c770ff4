package finlex

import (
	"errors"
	"fmt"
)

// Finlex-specific errors.
var (
	// ErrUnparseableURI indicates an akn URI matched neither path grammar.
	ErrUnparseableURI = errors.New("finlex: unparseable akn uri")

	// ErrRetriesExhausted indicates a request kept failing after all
	// retry attempts.
	ErrRetriesExhausted = errors.New("finlex: retries exhausted")
)

// APIError represents a non-success HTTP response from the Finlex API.
type APIError struct {
	StatusCode int
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finlex: API error %d for %s", e.StatusCode, e.Path)
}

// IsNotFound checks if the error indicates a missing document or asset.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
