package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frage-dev/frage/pkg/api"
)

// HTTPStatusFromError maps an APIError type to the corresponding HTTP
// status code. Conflicts map to 400 rather than 409: a duplicate
// registration is reported as a bad request, matching the public API
// contract.
func HTTPStatusFromError(err *api.APIError) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest, api.ErrorTypeConflict:
		return http.StatusBadRequest
	case api.ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case api.ErrorTypeNotFound:
		return http.StatusNotFound
	case api.ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.APIError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an APIError response, deriving the HTTP status
// code from the error type. Unauthenticated responses carry the
// WWW-Authenticate challenge required by the bearer token scheme.
func WriteAPIError(w http.ResponseWriter, apiErr *api.APIError) {
	if apiErr.Type == api.ErrorTypeUnauthenticated {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}

// WriteError writes any handler error. APIErrors keep their type and
// message; everything else is reported as an opaque server error so
// internal details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		apiErr = api.NewServerError("internal server error")
	}
	WriteAPIError(w, apiErr)
}

// WriteJSON writes a JSON success response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
