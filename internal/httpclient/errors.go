package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError represents an error returned by an API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

// NewAPIError creates a new APIError from an HTTP response.
func NewAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(resp.Body)

	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API error: %s - %s", e.Status, e.Body)
	}
	return fmt.Sprintf("API error: %s", e.Status)
}

// IsStatus checks if the error is an API error with the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == statusCode
}

// IsRateLimited checks if the error is a 429 Too Many Requests error.
func IsRateLimited(err error) bool {
	return IsStatus(err, http.StatusTooManyRequests)
}

// IsUnauthorized checks if the error is a 401 Unauthorized error.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
