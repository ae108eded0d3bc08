// Package crm holds the guarded resource types and their persistence
// contracts. Authorization decisions never live here; stores apply the
// guard's predicate and nothing else.
package crm

import "time"

// Meta carries the fields common to every guarded record. Resource types
// embed it and thereby satisfy authz.Record. A nil TenantID marks a legacy
// record created before tenant tagging; the backfill assigns it exactly once.
type Meta struct {
	ID        string     `json:"id"`
	TenantID  *string    `json:"tenant_id,omitempty"`
	OwnerID   string     `json:"owner_id"`
	TeamID    string     `json:"team_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (m *Meta) RecordID() string       { return m.ID }
func (m *Meta) SetRecordID(id string)  { m.ID = id }
func (m *Meta) RecordOwnerID() string  { return m.OwnerID }
func (m *Meta) SetOwner(id string)     { m.OwnerID = id }
func (m *Meta) RecordTeamID() string   { return m.TeamID }
func (m *Meta) SetTeam(id string)      { m.TeamID = id }

func (m *Meta) RecordTenantID() (string, bool) {
	if m.TenantID == nil {
		return "", false
	}
	return *m.TenantID, true
}

func (m *Meta) SetTenant(id string, assigned bool) {
	if !assigned {
		m.TenantID = nil
		return
	}
	v := id
	m.TenantID = &v
}

func (m *Meta) MarkDeleted(at time.Time) {
	if m.DeletedAt != nil {
		return
	}
	t := at
	m.DeletedAt = &t
}

func (m *Meta) IsDeleted() bool { return m.DeletedAt != nil }

func (m *Meta) CreatedTime() time.Time   { return m.CreatedAt }
func (m *Meta) SetCreated(at time.Time)  { m.CreatedAt = at }

// Touch updates the modification timestamp, initializing the creation
// timestamp on first use.
func (m *Meta) Touch(at time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = at
	}
	m.UpdatedAt = at
}
