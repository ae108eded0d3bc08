// Package directory holds user and team records: credential verification for
// token issuance and owner-to-tenant resolution for the backfill job.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"vantagecrm.io/internal/authz"
)

var (
	ErrNotFound = errors.New("directory: not found")
	ErrDisabled = errors.New("directory: user disabled")
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is an operator account. TenantID is nil for accounts predating tenant
// assignment and for super admins, who are not bound to any company.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         authz.Role `json:"role"`
	TenantID     *string    `json:"tenant_id,omitempty"`
	TeamID       string     `json:"team_id,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Principal builds the per-request authorization context for this user.
func (u User) Principal() authz.Principal {
	p := authz.Principal{
		UserID: u.ID,
		Role:   u.Role,
		TeamID: u.TeamID,
	}
	if u.TenantID != nil {
		p.TenantID = *u.TenantID
	}
	return p
}

// Team groups sales reps under one manager within a tenant.
type Team struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the directory persistence contract.
type Store interface {
	Find(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	// List returns users of one tenant, or every user when tenantID is empty.
	List(ctx context.Context, tenantID string) ([]User, error)
	// TenantForOwner resolves a record owner to their tenant. The second
	// result is false when the owner is unknown or has no tenant, which the
	// backfill reports as a skipped row.
	TenantForOwner(ctx context.Context, ownerID string) (string, bool, error)
}

// MemStore is the in-process directory used by tests and local development.
type MemStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemStore() *MemStore {
	return &MemStore{users: make(map[string]User)}
}

func (s *MemStore) Put(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemStore) Find(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u, nil
}

func (s *MemStore) FindByEmail(_ context.Context, email string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: email %s", ErrNotFound, email)
}

func (s *MemStore) List(_ context.Context, tenantID string) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []User
	for _, u := range s.users {
		if tenantID != "" && (u.TenantID == nil || *u.TenantID != tenantID) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) TenantForOwner(_ context.Context, ownerID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[ownerID]
	if !ok || u.TenantID == nil || *u.TenantID == "" {
		return "", false, nil
	}
	return *u.TenantID, true, nil
}
