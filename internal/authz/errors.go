package authz

import "errors"

var (
	// ErrUnauthenticated means no valid principal reached the guard.
	ErrUnauthenticated = errors.New("authz: unauthenticated")

	// ErrForbidden means the catalog denies a permission the operation
	// requires. Used for collection-level operations only; by-id denials
	// surface as ErrNotFound to avoid confirming a record exists.
	ErrForbidden = errors.New("authz: forbidden")

	// ErrNotFound covers both genuinely missing records and records outside
	// the caller's scope.
	ErrNotFound = errors.New("authz: not found")

	// ErrPrincipalMisconfigured means a company-scoped operation was requested
	// by a principal that carries no tenant id. Surfaced distinctly so the
	// user can be told to contact an administrator.
	ErrPrincipalMisconfigured = errors.New("authz: principal has no tenant")

	// ErrTenantReassignment means an update payload attempted to change a
	// record's tenant id. The whole request is rejected; tenant is immutable
	// once set.
	ErrTenantReassignment = errors.New("authz: tenant reassignment rejected")
)
