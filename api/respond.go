package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/defistate/oracle-registry-go/registry"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeRegistryError maps the registry's error taxonomy onto HTTP status
// codes so off-chain tooling can branch on cause.
func writeRegistryError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case registry.IsUnauthorized(err):
		status = http.StatusForbidden
	case errors.Is(err, registry.ErrCallToDeployerFailed):
		status = http.StatusBadGateway
	case registry.IsNotFound(err):
		status = http.StatusNotFound
	case registry.IsConflict(err):
		status = http.StatusConflict
	case registry.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, registry.ErrAlreadyInitialized), errors.Is(err, registry.ErrNotInitialized):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
