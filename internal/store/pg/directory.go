package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vantagecrm.io/internal/authz"
	"vantagecrm.io/internal/directory"
)

// Directory returns the Postgres-backed user directory.
func (s *Store) Directory() *DirectoryStore { return &DirectoryStore{db: s.db} }

// DirectoryStore implements directory.Store over the users table.
type DirectoryStore struct {
	db *sql.DB
}

var _ directory.Store = (*DirectoryStore)(nil)

const userColumns = `id, email, password_hash, role, tenant_id, team_id, status, created_at, updated_at`

func scanUser(r rowScanner) (directory.User, error) {
	var u directory.User
	var role string
	var tenant sql.NullString
	err := r.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &tenant, &u.TeamID, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return directory.User{}, err
	}
	u.Role = authz.Role(role)
	if tenant.Valid {
		v := tenant.String
		u.TenantID = &v
	}
	return u, nil
}

func (d *DirectoryStore) Find(ctx context.Context, id string) (directory.User, error) {
	row := d.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.User{}, fmt.Errorf("%w: user %s", directory.ErrNotFound, id)
	}
	return u, err
}

func (d *DirectoryStore) FindByEmail(ctx context.Context, email string) (directory.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := d.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.User{}, fmt.Errorf("%w: email %s", directory.ErrNotFound, email)
	}
	return u, err
}

func (d *DirectoryStore) List(ctx context.Context, tenantID string) ([]directory.User, error) {
	query := `select ` + userColumns + ` from users order by id`
	args := []any{}
	if tenantID != "" {
		query = `select ` + userColumns + ` from users where tenant_id = $1 order by id`
		args = append(args, tenantID)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []directory.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DirectoryStore) TenantForOwner(ctx context.Context, ownerID string) (string, bool, error) {
	var tenant sql.NullString
	err := d.db.QueryRowContext(ctx,
		`select tenant_id from users where id = $1`, ownerID).Scan(&tenant)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !tenant.Valid || tenant.String == "" {
		return "", false, nil
	}
	return tenant.String, true, nil
}
