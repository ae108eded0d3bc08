// Package audit provides the append-only record of every mutating
// authorization decision.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one immutable audit record. Before is nil for creates; After
// reflects the stored state including soft-delete markers.
type Entry struct {
	ID           string          `json:"id"`
	ActorID      string          `json:"actor_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Before       json.RawMessage `json:"before,omitempty"`
	After        json.RawMessage `json:"after,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// Sink is the append-only store for audit entries. Write contract only;
// reporting over the log is out of scope here.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Snapshot marshals a record state for the before/after fields. Records are
// plain structs, so a marshal failure indicates a programming error and maps
// to a null snapshot rather than blocking the mutation.
func Snapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
