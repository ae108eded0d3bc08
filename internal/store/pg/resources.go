package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vantagecrm.io/internal/authz"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// codec binds one resource type to its table. columns lists every column with
// id first; scan and args must stay aligned with that order.
type codec[T authz.Record] struct {
	table   string
	columns []string
	scan    func(s rowScanner) (T, error)
	args    func(rec T) []any
}

// Resources is the Postgres store for one guarded collection. The guard's
// predicate is the only filter applied beyond soft-delete exclusion; no
// authorization logic lives here.
type Resources[T authz.Record] struct {
	db *sql.DB
	c  codec[T]
}

func newResources[T authz.Record](db *sql.DB, c codec[T]) *Resources[T] {
	return &Resources[T]{db: db, c: c}
}

func (r *Resources[T]) List(ctx context.Context, pred authz.Predicate) ([]T, error) {
	where, args := pred.SQL(1)
	query := fmt.Sprintf(
		`select %s from %s where deleted_at is null and %s order by id`,
		strings.Join(r.c.columns, ", "), r.c.table, where,
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := r.c.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Resources[T]) Get(ctx context.Context, id string, pred authz.Predicate) (T, error) {
	var zero T
	where, args := pred.SQL(2)
	query := fmt.Sprintf(
		`select %s from %s where id = $1 and deleted_at is null and %s`,
		strings.Join(r.c.columns, ", "), r.c.table, where,
	)
	rec, err := r.c.scan(r.db.QueryRowContext(ctx, query, append([]any{id}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%w: %s", authz.ErrNotFound, id)
	}
	if err != nil {
		return zero, err
	}
	return rec, nil
}

func (r *Resources[T]) Insert(ctx context.Context, rec T) error {
	placeholders := make([]string, len(r.c.columns))
	for i := range r.c.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		`insert into %s (%s) values (%s)`,
		r.c.table, strings.Join(r.c.columns, ", "), strings.Join(placeholders, ", "),
	)
	_, err := r.db.ExecContext(ctx, query, r.c.args(rec)...)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return fmt.Errorf("duplicate id %s: %w", rec.RecordID(), err)
		}
		return err
	}
	return nil
}

// Update writes every column except id, tenant_id and created_at. Keeping
// tenant_id out of the SET list enforces tenant immutability at the storage
// layer as well as in the guard.
func (r *Resources[T]) Update(ctx context.Context, rec T) error {
	values := r.c.args(rec)
	var sets []string
	var args []any
	args = append(args, values[0]) // id is always $1
	for i, col := range r.c.columns {
		if col == "id" || col == "tenant_id" || col == "created_at" {
			continue
		}
		args = append(args, values[i])
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	query := fmt.Sprintf(`update %s set %s where id = $1`, r.c.table, strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", authz.ErrNotFound, rec.RecordID())
	}
	return nil
}
