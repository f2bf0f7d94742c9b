package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobportal/internal/api"
)

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteBackendError relays a failed backend call. Backend answers keep their
// status and detail; transport failures become 502/504.
func WriteBackendError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		WriteError(w, apiErr.StatusCode, "backend_error", apiErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, "backend_timeout", "backend did not answer in time")
	default:
		slog.Error("backend call failed", "error", err)
		WriteError(w, http.StatusBadGateway, "backend_unavailable", "backend unavailable")
	}
}
