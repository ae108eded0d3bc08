package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"vantagecrm.io/internal/authn"
	"vantagecrm.io/internal/directory"
)

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// IssueToken verifies directory credentials and mints an access token
// carrying the user's role, tenant and team. Lookup failures and password
// mismatches produce the same response so the endpoint confirms nothing
// about which accounts exist.
func (a *API) IssueToken(w http.ResponseWriter, r *http.Request) {
	if a.users == nil {
		respondError(w, http.StatusServiceUnavailable, "token issuance is not configured")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.Status != directory.StatusActive {
		respondError(w, http.StatusForbidden, "account disabled")
		return
	}
	if err := directory.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := authn.GenerateToken(user.Principal(), a.tokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(a.tokenTTL.Seconds()),
	})
}
