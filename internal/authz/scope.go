package authz

import (
	"fmt"
	"strings"
)

// ScopeDecision is the maximum record-set visibility a role has for one
// resource operation.
type ScopeDecision int

const (
	ScopeNone ScopeDecision = iota
	ScopeOwn
	ScopeTeam
	ScopeCompany
	ScopeAll
)

func (s ScopeDecision) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeOwn:
		return "own"
	case ScopeTeam:
		return "team"
	case ScopeCompany:
		return "company"
	case ScopeAll:
		return "all"
	default:
		return "none"
	}
}

// Scoped is the narrow structural interface every guarded record implements.
// The scope resolver consumes it generically instead of per-type field checks.
type Scoped interface {
	// RecordOwnerID is the owning user's id.
	RecordOwnerID() string
	// RecordTenantID returns the tenant id and whether one is assigned.
	// Unassigned records are pre-tenancy legacy data.
	RecordTenantID() (string, bool)
	// RecordTeamID is the owning team's id, empty when none.
	RecordTeamID() string
}

// Predicate bounds the set of records an operation may touch. The zero value
// matches nothing, so a predicate that was never resolved cannot leak records.
// It is consumable both as an in-memory filter (Matches) and as a SQL
// constraint (SQL).
type Predicate struct {
	all bool

	// Each non-empty clause is OR'ed into the match.
	tenantID      string
	teamID        string
	ownerID       string
	legacyOwnerID string

	// requireAssigned excludes legacy (tenant-less) records entirely. Set on
	// write predicates: an unassigned record must be claimed by the backfill
	// before it can be mutated.
	requireAssigned bool
}

// MatchAll is the unbounded predicate (SuperAdmin only).
func MatchAll() Predicate { return Predicate{all: true} }

// Matches applies the predicate to a record in memory.
func (p Predicate) Matches(r Scoped) bool {
	if p.all {
		return true
	}
	tenant, assigned := r.RecordTenantID()
	if p.requireAssigned && !assigned {
		return false
	}
	if p.tenantID != "" && assigned && tenant == p.tenantID {
		return true
	}
	// Team membership only reaches tenant-tagged records; a legacy record
	// stays visible to its original owner alone.
	if p.teamID != "" && assigned && r.RecordTeamID() == p.teamID {
		return true
	}
	if p.ownerID != "" && r.RecordOwnerID() == p.ownerID {
		return true
	}
	if p.legacyOwnerID != "" && !assigned && r.RecordOwnerID() == p.legacyOwnerID {
		return true
	}
	return false
}

// SQL renders the predicate as a WHERE fragment over the canonical
// tenant_id/team_id/owner_id columns. Placeholders are numbered starting at
// next, matching pgx positional arguments. The fragment for the zero
// predicate is FALSE: an unresolved predicate selects no rows.
func (p Predicate) SQL(next int) (string, []any) {
	if p.all {
		return "TRUE", nil
	}
	var clauses []string
	var args []any
	if p.tenantID != "" {
		clauses = append(clauses, fmt.Sprintf("tenant_id = $%d", next+len(args)))
		args = append(args, p.tenantID)
	}
	if p.teamID != "" {
		clauses = append(clauses, fmt.Sprintf("(tenant_id IS NOT NULL AND team_id = $%d)", next+len(args)))
		args = append(args, p.teamID)
	}
	if p.ownerID != "" {
		clauses = append(clauses, fmt.Sprintf("owner_id = $%d", next+len(args)))
		args = append(args, p.ownerID)
	}
	if p.legacyOwnerID != "" {
		clauses = append(clauses, fmt.Sprintf("(tenant_id IS NULL AND owner_id = $%d)", next+len(args)))
		args = append(args, p.legacyOwnerID)
	}
	if len(clauses) == 0 {
		return "FALSE", nil
	}
	frag := "(" + strings.Join(clauses, " OR ") + ")"
	if p.requireAssigned {
		frag = "(tenant_id IS NOT NULL AND " + frag + ")"
	}
	return frag, args
}

// ResolveScope computes the record-set predicate for one operation. The guard
// calls Allows first; reaching here with a ScopeNone ceiling is a programming
// error and fails closed.
//
// The same predicate gates collection listing and by-id fetches, so a record
// invisible in a list is reported as not-found when fetched directly.
func (c *Catalog) ResolveScope(p Principal, rt ResourceType, op Operation) (Predicate, error) {
	var pred Predicate

	switch c.ScopeFor(p.Role, rt, op) {
	case ScopeAll:
		pred = MatchAll()
	case ScopeCompany:
		if p.TenantID == "" {
			return Predicate{}, fmt.Errorf("%w: company scope for user %s", ErrPrincipalMisconfigured, p.UserID)
		}
		pred.tenantID = p.TenantID
	case ScopeTeam:
		pred.teamID = p.TeamID
		pred.ownerID = p.UserID
	case ScopeOwn:
		pred.ownerID = p.UserID
		if c.OwnIncludesTeam(rt) {
			pred.teamID = p.TeamID
		}
	default:
		return Predicate{}, ErrForbidden
	}

	// Legacy records (no tenant yet) stay readable by their original owner.
	// Never for writes: legacy rows must be claimed by the backfill before
	// they can be mutated through the normal path.
	if !pred.all {
		if op == OpRead {
			pred.legacyOwnerID = p.UserID
		} else {
			pred.requireAssigned = true
		}
	}

	return pred, nil
}
