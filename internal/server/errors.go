// Package server provides the local scrape provider: an HTTP service that
// renders pages in a headless browser and answers in the same shape as the
// hosted scrape API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrRender indicates the browser could not produce a page for URL.
type ErrRender struct {
	URL   string
	Cause error
}

func (e *ErrRender) Error() string {
	return fmt.Sprintf("render failed for %s: %v", e.URL, e.Cause)
}

func (e *ErrRender) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var render *ErrRender
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &render):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
