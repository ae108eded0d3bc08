package authz

// Ownership is the tenant/owner pair stamped onto a freshly created record.
type Ownership struct {
	TenantID string
	Assigned bool
	OwnerID  string
}

// Stamp derives a new record's ownership from the creating principal. The
// result always wins over client-supplied tenant/owner fields, so a payload
// can never plant a foreign tenant id on create.
func Stamp(p Principal) Ownership {
	return Ownership{
		TenantID: p.TenantID,
		Assigned: p.TenantID != "",
		OwnerID:  p.UserID,
	}
}
