package internal

import (
	"errors"
	"net/http"
)

// Error kinds surfaced by the core. Wrap them with %w so callers can use errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrRetrieval       = errors.New("retrieval failed")
	ErrExternalService = errors.New("external service failed")
	ErrResource        = errors.New("resource error")
)

// ErrorKind names the kind of err, or "internal" if it carries none of the known kinds
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrRetrieval):
		return "retrieval"
	case errors.Is(err, ErrExternalService):
		return "external_service"
	case errors.Is(err, ErrResource):
		return "resource"
	default:
		return "internal"
	}
}

// HTTPStatus maps an error to the status code the API answers with
func HTTPStatus(err error) int {
	switch ErrorKind(err) {
	case "":
		return http.StatusOK
	case "invalid_input":
		return http.StatusBadRequest
	case "retrieval", "external_service":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
