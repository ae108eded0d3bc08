package authz

import (
	"context"
	"fmt"
	"time"

	"vantagecrm.io/internal/audit"
	"vantagecrm.io/internal/ids"
	"vantagecrm.io/internal/obs"
)

// Record is what a guarded resource type must expose beyond its scope
// fields. Resource structs satisfy it by embedding crm.Meta.
type Record interface {
	Scoped
	RecordID() string
	SetRecordID(id string)
	SetOwner(ownerID string)
	SetTenant(tenantID string, assigned bool)
	SetTeam(teamID string)
	MarkDeleted(at time.Time)
	IsDeleted() bool
	CreatedTime() time.Time
	SetCreated(at time.Time)
	Touch(at time.Time)
}

// Store is the persistence collaborator the guard wraps. Implementations are
// responsible only for storage and domain validation, never for authorization:
// every read takes the guard's predicate, and Get must report a record the
// predicate excludes with ErrNotFound.
type Store[T Record] interface {
	List(ctx context.Context, pred Predicate) ([]T, error)
	Get(ctx context.Context, id string, pred Predicate) (T, error)
	Insert(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
}

// Auditor receives one entry per successful mutation.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry)
}

// Guard is the enforcement point every resource endpoint delegates to. It
// holds no cross-request state; all methods are safe for concurrent use.
type Guard[T Record] struct {
	catalog  *Catalog
	resource ResourceType
	store    Store[T]
	auditor  Auditor
	now      func() time.Time
}

// NewGuard wires one resource collection to the shared catalog.
func NewGuard[T Record](catalog *Catalog, resource ResourceType, store Store[T], auditor Auditor) *Guard[T] {
	return &Guard[T]{
		catalog:  catalog,
		resource: resource,
		store:    store,
		auditor:  auditor,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Resource returns the guarded collection's type.
func (g *Guard[T]) Resource() ResourceType { return g.resource }

// List returns every record the principal may see.
func (g *Guard[T]) List(ctx context.Context) ([]T, error) {
	pred, err := g.admit(ctx, OpRead, false)
	if err != nil {
		return nil, err
	}
	recs, err := g.store.List(ctx, pred)
	if err != nil {
		return nil, err
	}
	g.decide(OpRead, "allow")
	return recs, nil
}

// Get fetches one record through the same predicate as List, so a record
// invisible in a listing is not-found here as well.
func (g *Guard[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	pred, err := g.admit(ctx, OpRead, true)
	if err != nil {
		return zero, err
	}
	rec, err := g.store.Get(ctx, id, pred)
	if err != nil {
		return zero, err
	}
	g.decide(OpRead, "allow")
	return rec, nil
}

// Create stamps the record with the principal's tenant and owner, discarding
// any client-supplied identifiers, and emits one audit entry.
func (g *Guard[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if _, err := g.admit(ctx, OpCreate, false); err != nil {
		return zero, err
	}
	p, _ := PrincipalFromContext(ctx)

	own := Stamp(p)
	// A null tenant is reserved for rows predating tenant tagging; new
	// records must carry the creator's tenant.
	if !own.Assigned {
		g.decide(OpCreate, "error")
		return zero, fmt.Errorf("%w: principal %s has no tenant to stamp", ErrPrincipalMisconfigured, p.UserID)
	}
	rec.SetRecordID(ids.New())
	rec.SetOwner(own.OwnerID)
	rec.SetTenant(own.TenantID, own.Assigned)
	if rec.RecordTeamID() == "" {
		rec.SetTeam(p.TeamID)
	}
	rec.Touch(g.now())

	if err := g.store.Insert(ctx, rec); err != nil {
		return zero, err
	}
	g.decide(OpCreate, "allow")
	g.emit(ctx, p, OpCreate, rec.RecordID(), nil, audit.Snapshot(rec))
	return rec, nil
}

// Update replaces a record the principal can already see. A payload carrying
// a different tenant id is rejected outright: once assigned, tenant is
// immutable for the record's lifetime.
func (g *Guard[T]) Update(ctx context.Context, id string, incoming T) (T, error) {
	var zero T
	pred, err := g.admit(ctx, OpUpdate, true)
	if err != nil {
		return zero, err
	}
	existing, err := g.store.Get(ctx, id, pred)
	if err != nil {
		return zero, err
	}

	curTenant, curAssigned := existing.RecordTenantID()
	if inTenant, inAssigned := incoming.RecordTenantID(); inAssigned {
		if !curAssigned || inTenant != curTenant {
			g.decide(OpUpdate, "deny")
			return zero, fmt.Errorf("%w: %s %s", ErrTenantReassignment, g.resource, id)
		}
	}

	incoming.SetRecordID(id)
	incoming.SetTenant(curTenant, curAssigned)
	if incoming.RecordOwnerID() == "" {
		incoming.SetOwner(existing.RecordOwnerID())
	}
	incoming.SetCreated(existing.CreatedTime())
	incoming.Touch(g.now())

	if err := g.store.Update(ctx, incoming); err != nil {
		return zero, err
	}
	g.decide(OpUpdate, "allow")
	p, _ := PrincipalFromContext(ctx)
	g.emit(ctx, p, OpUpdate, id, audit.Snapshot(existing), audit.Snapshot(incoming))
	return incoming, nil
}

// Delete soft-deletes a record the principal can see. The row survives for
// audit continuity; reads exclude it from then on.
func (g *Guard[T]) Delete(ctx context.Context, id string) error {
	pred, err := g.admit(ctx, OpDelete, true)
	if err != nil {
		return err
	}
	rec, err := g.store.Get(ctx, id, pred)
	if err != nil {
		return err
	}

	before := audit.Snapshot(rec)
	rec.MarkDeleted(g.now())
	rec.Touch(g.now())
	if err := g.store.Update(ctx, rec); err != nil {
		return err
	}
	g.decide(OpDelete, "allow")
	p, _ := PrincipalFromContext(ctx)
	g.emit(ctx, p, OpDelete, id, before, audit.Snapshot(rec))
	return nil
}

// admit runs the permission gate and the scope resolver for one operation.
// For by-id operations a permission denial maps to ErrNotFound so that an
// unauthorized caller cannot confirm a record exists.
func (g *Guard[T]) admit(ctx context.Context, op Operation, byID bool) (Predicate, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		g.decide(op, "deny")
		return Predicate{}, ErrUnauthenticated
	}

	token := g.catalog.RequiredToken(g.resource, op)
	if !g.catalog.Allows(p, token) {
		g.decide(op, "deny")
		if byID {
			return Predicate{}, ErrNotFound
		}
		return Predicate{}, ErrForbidden
	}

	pred, err := g.catalog.ResolveScope(p, g.resource, op)
	if err != nil {
		g.decide(op, "error")
		return Predicate{}, err
	}
	return pred, nil
}

func (g *Guard[T]) decide(op Operation, outcome string) {
	obs.AuthzDecision(string(g.resource), string(op), outcome)
}

func (g *Guard[T]) emit(ctx context.Context, p Principal, op Operation, id string, before, after []byte) {
	if g.auditor == nil {
		return
	}
	g.auditor.Record(ctx, audit.Entry{
		ActorID:      p.UserID,
		Action:       string(g.resource) + "." + string(op),
		ResourceType: string(g.resource),
		ResourceID:   id,
		Before:       before,
		After:        after,
		OccurredAt:   g.now(),
	})
}
