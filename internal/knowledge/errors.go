package knowledge

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
)

// NotConfiguredError reports a write to a database with no configured ID.
type NotConfiguredError struct {
	Database Database
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("notion database %q is not configured", e.Database)
}

// APIError is a non-2xx answer from the Notion API.
type APIError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: notion API returned %d %s: %s", e.Op, e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func apiError(op string, err error) error {
	var notionErr *notionapi.Error
	if errors.As(err, &notionErr) {
		return &APIError{
			Op:         op,
			StatusCode: notionErr.Status,
			Code:       string(notionErr.Code),
			Message:    notionErr.Message,
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
