package pg

import (
	"context"
	"fmt"

	"vantagecrm.io/internal/backfill"
)

// resourceTables is the allowlist of backfillable tables; resource type names
// reach SQL only through it.
var resourceTables = map[string]bool{
	"contacts":       true,
	"deals":          true,
	"activities":     true,
	"communications": true,
	"documents":      true,
	"workflows":      true,
}

// BackfillSource returns the batch source for the tenant backfill job.
func (s *Store) BackfillSource() *BackfillSource { return &BackfillSource{store: s} }

// BackfillSource implements backfill.Source with keyset pagination and one
// transaction per batch, so row locks never outlive a batch.
type BackfillSource struct {
	store *Store
}

var _ backfill.Source = (*BackfillSource)(nil)

func (b *BackfillSource) ListUnassigned(ctx context.Context, resourceType, afterID string, limit int) ([]backfill.Row, error) {
	if !resourceTables[resourceType] {
		return nil, fmt.Errorf("unknown resource table %q", resourceType)
	}
	query := fmt.Sprintf(
		`select id, owner_id from %s where tenant_id is null and id > $1 order by id limit $2`,
		resourceType,
	)
	rows, err := b.store.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backfill.Row
	for rows.Next() {
		row := backfill.Row{ResourceType: resourceType}
		if err := rows.Scan(&row.ID, &row.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (b *BackfillSource) AssignTenants(ctx context.Context, resourceType string, tenants map[string]string) (int, error) {
	if !resourceTables[resourceType] {
		return 0, fmt.Errorf("unknown resource table %q", resourceType)
	}
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// tenant_id is null guards idempotence: a row claimed since the batch was
	// listed is left untouched.
	query := fmt.Sprintf(
		`update %s set tenant_id = $1 where id = $2 and tenant_id is null`,
		resourceType,
	)
	updated := 0
	for id, tenant := range tenants {
		res, err := tx.ExecContext(ctx, query, tenant, id)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		updated += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return updated, nil
}
