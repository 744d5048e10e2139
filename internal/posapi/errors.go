package posapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("backend error")

	// ErrMalformedResponse is returned if a successful response body could not be decoded
	ErrMalformedResponse = errors.New("malformed response body")

	// ErrInvalidInput is returned if a request payload fails local validation before being sent
	ErrInvalidInput = errors.New("invalid input")
)

const maxErrorBodyInDetail = 200

// Error represents a non-2xx response of the backend
type Error struct {
	Status int
	Detail string
	Body   []byte
}

func newError(status int, body []byte) *Error {
	return &Error{
		Status: status,
		Detail: extractDetail(body),
		Body:   body,
	}
}

// Error implements the error interface
func (err *Error) Error() string {
	if err.Detail == "" {
		return fmt.Sprintf("backend responded with %d %s", err.Status, http.StatusText(err.Status))
	}
	return fmt.Sprintf("backend responded with %d %s: %s", err.Status, http.StatusText(err.Status), err.Detail)
}

// Is maps the response status to the sentinel errors of this package
func (err *Error) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return err.Status == http.StatusBadRequest
	case ErrUnauthorized:
		return err.Status == http.StatusUnauthorized
	case ErrForbidden:
		return err.Status == http.StatusForbidden
	case ErrNotFound:
		return err.Status == http.StatusNotFound
	case ErrServer:
		return err.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// extractDetail looks for the usual human-readable fields of an error body and falls back to the (truncated) raw body
func extractDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if val, ok := fields[key].(string); ok && val != "" {
				return val
			}
		}
	}

	if len(body) > maxErrorBodyInDetail {
		return string(body[:maxErrorBodyInDetail]) + "..."
	}
	return string(body)
}
