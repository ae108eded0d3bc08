package authz

// ResourceType identifies one guarded resource collection.
type ResourceType string

const (
	ResourceContacts       ResourceType = "contacts"
	ResourceDeals          ResourceType = "deals"
	ResourceActivities     ResourceType = "activities"
	ResourceCommunications ResourceType = "communications"
	ResourceDocuments      ResourceType = "documents"
	ResourceWorkflows      ResourceType = "workflows"
)

// ResourceTypes lists every guarded collection, in route order.
var ResourceTypes = []ResourceType{
	ResourceContacts,
	ResourceDeals,
	ResourceActivities,
	ResourceCommunications,
	ResourceDocuments,
	ResourceWorkflows,
}

// Operation is the kind of access being performed against a collection.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

type scopeKey struct {
	role     Role
	resource ResourceType
	op       Operation
}

type routeKey struct {
	resource ResourceType
	op       Operation
}

// Catalog is the static source of truth for authorization: role permission
// sets, scope ceilings per (role, resource, operation), and the permission
// token each route requires. It is built once at startup and never mutated;
// privilege changes ship as a new deployment, not an API call.
type Catalog struct {
	grants          map[Role]map[string]struct{}
	scopes          map[scopeKey]ScopeDecision
	routes          map[routeKey]string
	ownIncludesTeam map[ResourceType]bool
}

// resourcePerms pairs the view/manage tokens guarding one collection.
var resourcePerms = map[ResourceType]struct{ view, manage string }{
	ResourceContacts:       {PermViewContacts, PermManageContacts},
	ResourceDeals:          {PermViewDeals, PermManageDeals},
	ResourceActivities:     {PermViewActivities, PermManageActivities},
	ResourceCommunications: {PermViewCommunications, PermManageCommunications},
	ResourceDocuments:      {PermViewDocuments, PermManageDocuments},
	ResourceWorkflows:      {PermViewWorkflows, PermManageWorkflows},
}

// roleGrants is the full capability set of each role, visible in one place.
var roleGrants = map[Role][]string{
	RoleSuperAdmin: {
		PermViewContacts, PermManageContacts,
		PermViewDeals, PermManageDeals,
		PermViewActivities, PermManageActivities,
		PermViewCommunications, PermManageCommunications,
		PermViewDocuments, PermManageDocuments,
		PermViewWorkflows, PermManageWorkflows,
		PermManageCompanyUsers,
		PermManageBilling,
	},
	RoleCompanyAdmin: {
		PermViewContacts, PermManageContacts,
		PermViewDeals, PermManageDeals,
		PermViewActivities, PermManageActivities,
		PermViewCommunications, PermManageCommunications,
		PermViewDocuments, PermManageDocuments,
		PermViewWorkflows, PermManageWorkflows,
		PermManageCompanyUsers,
	},
	RoleSalesManager: {
		PermViewContacts, PermManageContacts,
		PermViewDeals, PermManageDeals,
		PermViewActivities, PermManageActivities,
		PermViewCommunications, PermManageCommunications,
		PermViewDocuments, PermManageDocuments,
		PermViewWorkflows,
	},
	RoleSalesRep: {
		PermViewContacts, PermManageContacts,
		PermViewDeals, PermManageDeals,
		PermViewActivities, PermManageActivities,
		PermViewCommunications, PermManageCommunications,
		PermViewDocuments,
		PermViewWorkflows,
	},
}

// roleCeilings is the default scope ceiling per role, applied to every
// (resource, operation) the role's tokens admit.
var roleCeilings = map[Role]ScopeDecision{
	RoleSuperAdmin:   ScopeAll,
	RoleCompanyAdmin: ScopeCompany,
	RoleSalesManager: ScopeTeam,
	RoleSalesRep:     ScopeOwn,
}

// scopeOverrides widens or narrows specific cells of the ceiling table.
// Workflows are company-wide automation: every role that can read them reads
// the whole tenant's set.
var scopeOverrides = map[scopeKey]ScopeDecision{
	{RoleSalesManager, ResourceWorkflows, OpRead}: ScopeCompany,
	{RoleSalesRep, ResourceWorkflows, OpRead}:     ScopeCompany,
}

// DefaultCatalog builds the embedded policy tables. Call once at startup and
// share the result; concurrent reads need no synchronization.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		grants: make(map[Role]map[string]struct{}, len(roleGrants)),
		scopes: make(map[scopeKey]ScopeDecision),
		routes: make(map[routeKey]string),
		// Activities and communications stay visible to reps across
		// reassignments inside the same team; contacts and deals do not.
		ownIncludesTeam: map[ResourceType]bool{
			ResourceActivities:     true,
			ResourceCommunications: true,
		},
	}

	for role, tokens := range roleGrants {
		set := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			set[tok] = struct{}{}
		}
		c.grants[role] = set
	}

	for rt, perms := range resourcePerms {
		c.routes[routeKey{rt, OpRead}] = perms.view
		c.routes[routeKey{rt, OpCreate}] = perms.manage
		c.routes[routeKey{rt, OpUpdate}] = perms.manage
		c.routes[routeKey{rt, OpDelete}] = perms.manage
	}

	for _, role := range allRoles {
		for rt := range resourcePerms {
			for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete} {
				key := scopeKey{role, rt, op}
				token := c.routes[routeKey{rt, op}]
				if _, granted := c.grants[role][token]; !granted {
					c.scopes[key] = ScopeNone
					continue
				}
				if scope, ok := scopeOverrides[key]; ok {
					c.scopes[key] = scope
					continue
				}
				c.scopes[key] = roleCeilings[role]
			}
		}
	}

	return c
}

// Allows is the access decision point: a pure O(1) set-membership lookup.
// Unknown roles, unknown tokens, and missing entries all resolve to deny.
func (c *Catalog) Allows(p Principal, token string) bool {
	if token == "" {
		return false
	}
	set, ok := c.grants[p.Role]
	if !ok {
		return false
	}
	_, ok = set[token]
	return ok
}

// RequiredToken maps a route to the permission token it demands. An empty
// result means no route exists; the guard treats that as deny.
func (c *Catalog) RequiredToken(rt ResourceType, op Operation) string {
	return c.routes[routeKey{rt, op}]
}

// ScopeFor returns the scope ceiling for a role on one resource operation.
// Missing cells resolve to ScopeNone.
func (c *Catalog) ScopeFor(role Role, rt ResourceType, op Operation) ScopeDecision {
	return c.scopes[scopeKey{role, rt, op}]
}

// OwnIncludesTeam reports whether Own-scoped visibility for this resource
// type extends to the principal's team. This settles what happens to a rep's
// record after it is reassigned within the team: for collaborative resource
// types the rep keeps seeing it, for pipeline-owned types they do not.
func (c *Catalog) OwnIncludesTeam(rt ResourceType) bool {
	return c.ownIncludesTeam[rt]
}
