package authz

// Permission tokens are atomic capability names. They are never composed or
// parameterized at runtime; the catalog either grants a token to a role or it
// does not.
const (
	PermViewContacts         = "view_contacts"
	PermManageContacts       = "manage_contacts"
	PermViewDeals            = "view_deals"
	PermManageDeals          = "manage_deals"
	PermViewActivities       = "view_activities"
	PermManageActivities     = "manage_activities"
	PermViewCommunications   = "view_communications"
	PermManageCommunications = "manage_communications"
	PermViewDocuments        = "view_documents"
	PermManageDocuments      = "manage_documents"
	PermViewWorkflows        = "view_workflows"
	PermManageWorkflows      = "manage_workflows"

	PermManageCompanyUsers = "manage_company_users"
	PermManageBilling      = "manage_billing"
)
