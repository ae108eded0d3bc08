package crm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vantagecrm.io/internal/authz"
)

// MemStore is an in-process store implementing authz.Store for one resource
// type. Used by tests and local development; replace with the pg store for
// durable storage.
type MemStore[T authz.Record] struct {
	mu    sync.RWMutex
	recs  map[string]T
	clone func(T) T
}

// NewMemStore builds an empty store. clone must return an independent copy so
// callers cannot mutate stored state in place.
func NewMemStore[T authz.Record](clone func(T) T) *MemStore[T] {
	return &MemStore[T]{
		recs:  make(map[string]T),
		clone: clone,
	}
}

func (s *MemStore[T]) List(_ context.Context, pred authz.Predicate) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, rec := range s.recs {
		if rec.IsDeleted() || !pred.Matches(rec) {
			continue
		}
		out = append(out, s.clone(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID() < out[j].RecordID() })
	return out, nil
}

func (s *MemStore[T]) Get(_ context.Context, id string, pred authz.Predicate) (T, error) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok || rec.IsDeleted() || !pred.Matches(rec) {
		return zero, fmt.Errorf("%w: %s", authz.ErrNotFound, id)
	}
	return s.clone(rec), nil
}

func (s *MemStore[T]) Insert(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.RecordID()] = s.clone(rec)
	return nil
}

func (s *MemStore[T]) Update(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.RecordID()]; !ok {
		return fmt.Errorf("%w: %s", authz.ErrNotFound, rec.RecordID())
	}
	s.recs[rec.RecordID()] = s.clone(rec)
	return nil
}

// Seed inserts a record verbatim, bypassing the guard. Test and backfill
// fixtures only.
func (s *MemStore[T]) Seed(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.RecordID()] = s.clone(rec)
}

// CloneContact and friends give MemStore its per-type copy functions.
func CloneContact(c *Contact) *Contact { cp := *c; return &cp }
func CloneDeal(d *Deal) *Deal          { cp := *d; return &cp }
func CloneActivity(a *Activity) *Activity {
	cp := *a
	return &cp
}
func CloneCommunication(c *Communication) *Communication { cp := *c; return &cp }
func CloneDocument(d *Document) *Document                { cp := *d; return &cp }
func CloneWorkflow(w *Workflow) *Workflow                { cp := *w; return &cp }
