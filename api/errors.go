package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFoundLocal means data expected on this machine (for example a booking
// QR payload) is missing or unreadable.
var ErrNotFoundLocal = errors.New("not found locally")

// NetworkError is a request that never produced a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network failure: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Code and Message come from the backend's
// {"status","error","message"} body when it sends one.
type ServerError struct {
	StatusCode int
	Status     string
	Code       string
	Message    string
	Body       string
}

func (e *ServerError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = e.Body
	}
	if detail == "" {
		return fmt.Sprintf("request failed: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %s: %s", e.Status, detail)
}

func newServerError(code int, status string, body []byte) *ServerError {
	serr := &ServerError{
		StatusCode: code,
		Status:     status,
		Body:       strings.TrimSpace(string(body)),
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		serr.Code = payload.Error
		serr.Message = payload.Message
	}
	return serr
}

// ValidationError is raised before a request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func statusIs(err error, code int) bool {
	var serr *ServerError
	return errors.As(err, &serr) && serr.StatusCode == code
}

func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

func IsNotFound(err error) bool {
	return statusIs(err, http.StatusNotFound) || errors.Is(err, ErrNotFoundLocal)
}

func IsNetwork(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}
