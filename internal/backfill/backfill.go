// Package backfill assigns tenant ids to legacy records created before
// tenant tagging existed. A record moves from unassigned to assigned exactly
// once, either here or through the first qualifying guarded write; there is
// no reverse transition.
package backfill

import (
	"context"
	"fmt"

	"vantagecrm.io/internal/obs"
)

const defaultBatchSize = 500

// Row is one unassigned record awaiting a tenant.
type Row struct {
	ResourceType string
	ID           string
	OwnerID      string
}

// Source is the datastore side of the job. Batching keeps row locks short so
// normal traffic outside the active batch proceeds unimpeded.
type Source interface {
	// ListUnassigned returns up to limit tenant-less rows of one resource
	// type with id greater than afterID, ordered by id.
	ListUnassigned(ctx context.Context, resourceType, afterID string, limit int) ([]Row, error)
	// AssignTenants applies the id-to-tenant mapping in a single transaction,
	// touching only rows whose tenant is still unassigned, and returns the
	// number of rows updated.
	AssignTenants(ctx context.Context, resourceType string, tenants map[string]string) (int, error)
}

// Resolver maps a record owner to their tenant. directory.Store satisfies it.
type Resolver interface {
	TenantForOwner(ctx context.Context, ownerID string) (string, bool, error)
}

// Report summarizes one run. SkippedIDs lists rows whose owner could not be
// resolved to a tenant, for manual follow-up.
type Report struct {
	Updated    int
	Skipped    int
	SkippedIDs []string
}

// Job is the batch backfill. Re-running is safe: only still-unassigned rows
// are selected, so a second run reports zero updates for rows the first run
// assigned.
type Job struct {
	source    Source
	resolver  Resolver
	resources []string
	batchSize int
}

// Option configures Job.
type Option func(*Job)

// WithBatchSize overrides the default batch of 500 rows per transaction.
func WithBatchSize(n int) Option {
	return func(j *Job) {
		if n > 0 {
			j.batchSize = n
		}
	}
}

// NewJob builds a backfill over the given resource tables.
func NewJob(source Source, resolver Resolver, resources []string, opts ...Option) *Job {
	j := &Job{
		source:    source,
		resolver:  resolver,
		resources: resources,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run processes every resource type to completion. A single row's resolution
// failure is logged and skipped; only a datastore-level error aborts the run.
// The cursor advances per committed batch, so an interrupted job resumes
// without reprocessing assigned rows.
func (j *Job) Run(ctx context.Context) (Report, error) {
	var report Report
	// Owner lookups repeat heavily across batches; cache them per run.
	tenants := make(map[string]string)
	unresolved := make(map[string]bool)

	for _, rt := range j.resources {
		if err := j.runResource(ctx, rt, tenants, unresolved, &report); err != nil {
			return report, fmt.Errorf("backfill %s: %w", rt, err)
		}
	}
	return report, nil
}

func (j *Job) runResource(ctx context.Context, rt string, tenants map[string]string, unresolved map[string]bool, report *Report) error {
	cursor := ""
	for {
		rows, err := j.source.ListUnassigned(ctx, rt, cursor, j.batchSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		cursor = rows[len(rows)-1].ID

		assign := make(map[string]string, len(rows))
		for _, row := range rows {
			tenant, ok, err := j.resolveOwner(ctx, row.OwnerID, tenants, unresolved)
			if err != nil {
				// Row-level failure: report and move on.
				j.skip(rt, row, report, err.Error())
				continue
			}
			if !ok {
				j.skip(rt, row, report, "owner has no tenant")
				continue
			}
			assign[row.ID] = tenant
		}

		if len(assign) > 0 {
			updated, err := j.source.AssignTenants(ctx, rt, assign)
			if err != nil {
				return err
			}
			report.Updated += updated
			obs.BackfillRows("updated", updated)
		}
	}
}

func (j *Job) resolveOwner(ctx context.Context, ownerID string, tenants map[string]string, unresolved map[string]bool) (string, bool, error) {
	if t, ok := tenants[ownerID]; ok {
		return t, true, nil
	}
	if unresolved[ownerID] {
		return "", false, nil
	}
	tenant, ok, err := j.resolver.TenantForOwner(ctx, ownerID)
	if err != nil {
		return "", false, err
	}
	if !ok {
		unresolved[ownerID] = true
		return "", false, nil
	}
	tenants[ownerID] = tenant
	return tenant, true, nil
}

func (j *Job) skip(rt string, row Row, report *Report, reason string) {
	report.Skipped++
	report.SkippedIDs = append(report.SkippedIDs, row.ID)
	obs.BackfillRows("skipped", 1)
	obs.LogRequest(map[string]any{
		"level":         "warn",
		"msg":           "backfill row skipped",
		"resource_type": rt,
		"record_id":     row.ID,
		"owner_id":      row.OwnerID,
		"reason":        reason,
	})
}
