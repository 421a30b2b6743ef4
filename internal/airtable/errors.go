package airtable

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-200 response from the Airtable API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: Airtable API error %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an Airtable 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
