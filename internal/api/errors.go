package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx backend response mapped to a user-facing category.
// The Detail string is the backend's own explanation when it sent one.
type APIError struct {
	StatusCode int
	Category   string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Detail)
	}
	return e.Category
}

// newAPIError maps a status code to the uniform failure categories every
// gateway call shares.
func newAPIError(status int, detail string) *APIError {
	var category string
	switch status {
	case http.StatusUnauthorized:
		category = "session expired, please sign in again"
	case http.StatusForbidden:
		category = "access denied"
	case http.StatusNotFound:
		category = "not found"
	case http.StatusInternalServerError:
		category = "server error, please try again later"
	default:
		category = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{StatusCode: status, Category: category, Detail: detail}
}

// IsNotFound reports whether err is a backend 404. The auth gateway uses it
// to fall back from login to register.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
