package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"vantagecrm.io/internal/authz"
	"vantagecrm.io/internal/crm"
	"vantagecrm.io/internal/obs"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondGuardError maps the authorization error taxonomy onto HTTP statuses.
// By-id scope denials arrive here already converted to ErrNotFound, so no
// branch below can leak a record's existence.
func respondGuardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, authz.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, authz.ErrPrincipalMisconfigured):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error: "your account has no company assigned; contact an administrator",
			Code:  "principal_misconfigured",
		})
	case errors.Is(err, authz.ErrTenantReassignment):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: "tenant id cannot be changed",
			Code:  "tenant_reassignment_rejected",
		})
	case errors.Is(err, crm.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		obs.LogRequest(map[string]any{
			"level": "error",
			"msg":   "request failed",
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
