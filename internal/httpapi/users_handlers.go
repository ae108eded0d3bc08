package httpapi

import (
	"net/http"

	"vantagecrm.io/internal/authz"
)

// ListUsers returns the company directory. CompanyAdmins see their own
// tenant; a SuperAdmin, bound to no tenant, sees all users.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	if a.users == nil {
		respondError(w, http.StatusServiceUnavailable, "directory is not configured")
		return
	}
	p, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		respondGuardError(w, authz.ErrUnauthenticated)
		return
	}
	if !a.catalog.Allows(p, authz.PermManageCompanyUsers) {
		respondGuardError(w, authz.ErrForbidden)
		return
	}

	tenantID := p.TenantID
	if p.Role != authz.RoleSuperAdmin && tenantID == "" {
		respondGuardError(w, authz.ErrPrincipalMisconfigured)
		return
	}

	users, err := a.users.List(r.Context(), tenantID)
	if err != nil {
		respondGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
