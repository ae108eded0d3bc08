package pg

import (
	"context"
	"database/sql"

	"vantagecrm.io/internal/audit"
)

// AuditSink returns the durable audit log writer.
func (s *Store) AuditSink() *AuditSink { return &AuditSink{db: s.db} }

// AuditSink appends entries to the audit_log table. The table carries no
// update or delete path; history is immutable.
type AuditSink struct {
	db *sql.DB
}

var _ audit.Sink = (*AuditSink)(nil)

func (a *AuditSink) Append(ctx context.Context, e audit.Entry) error {
	var before, after any
	if len(e.Before) > 0 {
		before = []byte(e.Before)
	}
	if len(e.After) > 0 {
		after = []byte(e.After)
	}
	_, err := a.db.ExecContext(ctx, `
		insert into audit_log (id, actor_id, action, resource_type, resource_id, before_state, after_state, occurred_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.ActorID, e.Action, e.ResourceType, e.ResourceID, before, after, e.OccurredAt)
	return err
}
