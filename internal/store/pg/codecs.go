package pg

import (
	"database/sql"
	"time"

	"vantagecrm.io/internal/crm"
)

var metaColumns = []string{"id", "tenant_id", "owner_id", "team_id", "created_at", "updated_at", "deleted_at"}

func metaArgs(m *crm.Meta) []any {
	return []any{m.ID, m.TenantID, m.OwnerID, m.TeamID, m.CreatedAt, m.UpdatedAt, m.DeletedAt}
}

func applyMeta(m *crm.Meta, tenant sql.NullString, deleted sql.NullTime) {
	if tenant.Valid {
		v := tenant.String
		m.TenantID = &v
	}
	if deleted.Valid {
		t := deleted.Time
		m.DeletedAt = &t
	}
}

func withMeta(extra ...string) []string {
	return append(append([]string{}, metaColumns...), extra...)
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Contacts returns the guarded contact collection's store.
func (s *Store) Contacts() *Resources[*crm.Contact] {
	return newResources(s.db, codec[*crm.Contact]{
		table:   "contacts",
		columns: withMeta("first_name", "last_name", "email", "phone", "company_name"),
		scan: func(r rowScanner) (*crm.Contact, error) {
			var c crm.Contact
			var tenant sql.NullString
			var deleted sql.NullTime
			if err := r.Scan(
				&c.ID, &tenant, &c.OwnerID, &c.TeamID, &c.CreatedAt, &c.UpdatedAt, &deleted,
				&c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CompanyName,
			); err != nil {
				return nil, err
			}
			applyMeta(&c.Meta, tenant, deleted)
			return &c, nil
		},
		args: func(c *crm.Contact) []any {
			return append(metaArgs(&c.Meta), c.FirstName, c.LastName, c.Email, c.Phone, c.CompanyName)
		},
	})
}

// Deals returns the deal collection's store.
func (s *Store) Deals() *Resources[*crm.Deal] {
	return newResources(s.db, codec[*crm.Deal]{
		table:   "deals",
		columns: withMeta("title", "stage", "amount_cents", "currency", "contact_id", "expected_close"),
		scan: func(r rowScanner) (*crm.Deal, error) {
			var d crm.Deal
			var tenant sql.NullString
			var deleted, close sql.NullTime
			if err := r.Scan(
				&d.ID, &tenant, &d.OwnerID, &d.TeamID, &d.CreatedAt, &d.UpdatedAt, &deleted,
				&d.Title, &d.Stage, &d.AmountCents, &d.Currency, &d.ContactID, &close,
			); err != nil {
				return nil, err
			}
			applyMeta(&d.Meta, tenant, deleted)
			d.ExpectedClose = timePtr(close)
			return &d, nil
		},
		args: func(d *crm.Deal) []any {
			return append(metaArgs(&d.Meta), d.Title, d.Stage, d.AmountCents, d.Currency, d.ContactID, d.ExpectedClose)
		},
	})
}

// Activities returns the activity collection's store.
func (s *Store) Activities() *Resources[*crm.Activity] {
	return newResources(s.db, codec[*crm.Activity]{
		table:   "activities",
		columns: withMeta("kind", "subject", "notes", "contact_id", "deal_id", "due_at", "completed_at"),
		scan: func(r rowScanner) (*crm.Activity, error) {
			var a crm.Activity
			var tenant sql.NullString
			var deleted, due, completed sql.NullTime
			if err := r.Scan(
				&a.ID, &tenant, &a.OwnerID, &a.TeamID, &a.CreatedAt, &a.UpdatedAt, &deleted,
				&a.Kind, &a.Subject, &a.Notes, &a.ContactID, &a.DealID, &due, &completed,
			); err != nil {
				return nil, err
			}
			applyMeta(&a.Meta, tenant, deleted)
			a.DueAt = timePtr(due)
			a.CompletedAt = timePtr(completed)
			return &a, nil
		},
		args: func(a *crm.Activity) []any {
			return append(metaArgs(&a.Meta), a.Kind, a.Subject, a.Notes, a.ContactID, a.DealID, a.DueAt, a.CompletedAt)
		},
	})
}

// Communications returns the communication log's store.
func (s *Store) Communications() *Resources[*crm.Communication] {
	return newResources(s.db, codec[*crm.Communication]{
		table:   "communications",
		columns: withMeta("channel", "direction", "subject", "body", "contact_id", "occurred_at"),
		scan: func(r rowScanner) (*crm.Communication, error) {
			var c crm.Communication
			var tenant sql.NullString
			var deleted sql.NullTime
			if err := r.Scan(
				&c.ID, &tenant, &c.OwnerID, &c.TeamID, &c.CreatedAt, &c.UpdatedAt, &deleted,
				&c.Channel, &c.Direction, &c.Subject, &c.Body, &c.ContactID, &c.OccurredAt,
			); err != nil {
				return nil, err
			}
			applyMeta(&c.Meta, tenant, deleted)
			return &c, nil
		},
		args: func(c *crm.Communication) []any {
			return append(metaArgs(&c.Meta), c.Channel, c.Direction, c.Subject, c.Body, c.ContactID, c.OccurredAt)
		},
	})
}

// Documents returns the document metadata store.
func (s *Store) Documents() *Resources[*crm.Document] {
	return newResources(s.db, codec[*crm.Document]{
		table:   "documents",
		columns: withMeta("title", "mime_type", "storage_key", "size_bytes", "deal_id"),
		scan: func(r rowScanner) (*crm.Document, error) {
			var d crm.Document
			var tenant sql.NullString
			var deleted sql.NullTime
			if err := r.Scan(
				&d.ID, &tenant, &d.OwnerID, &d.TeamID, &d.CreatedAt, &d.UpdatedAt, &deleted,
				&d.Title, &d.MimeType, &d.StorageKey, &d.SizeBytes, &d.DealID,
			); err != nil {
				return nil, err
			}
			applyMeta(&d.Meta, tenant, deleted)
			return &d, nil
		},
		args: func(d *crm.Document) []any {
			return append(metaArgs(&d.Meta), d.Title, d.MimeType, d.StorageKey, d.SizeBytes, d.DealID)
		},
	})
}

// Workflows returns the workflow definition store.
func (s *Store) Workflows() *Resources[*crm.Workflow] {
	return newResources(s.db, codec[*crm.Workflow]{
		table:   "workflows",
		columns: withMeta("name", "trigger_event", "definition", "enabled"),
		scan: func(r rowScanner) (*crm.Workflow, error) {
			var w crm.Workflow
			var tenant sql.NullString
			var deleted sql.NullTime
			var def []byte
			if err := r.Scan(
				&w.ID, &tenant, &w.OwnerID, &w.TeamID, &w.CreatedAt, &w.UpdatedAt, &deleted,
				&w.Name, &w.TriggerEvent, &def, &w.Enabled,
			); err != nil {
				return nil, err
			}
			applyMeta(&w.Meta, tenant, deleted)
			if len(def) > 0 {
				w.Definition = def
			}
			return &w, nil
		},
		args: func(w *crm.Workflow) []any {
			var def any
			if len(w.Definition) > 0 {
				def = []byte(w.Definition)
			}
			return append(metaArgs(&w.Meta), w.Name, w.TriggerEvent, def, w.Enabled)
		},
	})
}
