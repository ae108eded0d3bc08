package authz

import (
	"fmt"
	"strings"
)

// Role is the closed set of principal roles. The catalog maps each role to a
// fixed permission set and per-resource scope ceilings; there is no way to
// define additional roles at runtime.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleSalesManager Role = "sales_manager"
	RoleSalesRep     Role = "sales_rep"
)

var allRoles = []Role{RoleSuperAdmin, RoleCompanyAdmin, RoleSalesManager, RoleSalesRep}

// ParseRole normalizes and validates a role name. Unknown names are rejected
// so that a forged or stale token never resolves to a usable role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range allRoles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, s)
}

func (r Role) String() string { return string(r) }

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}
