package audit

import (
	"context"
	"encoding/json"

	"vantagecrm.io/internal/obs"
)

// LogSink appends audit entries as JSON lines through the shared logger.
// Used when no durable sink is configured (development, tests).
type LogSink struct{}

func (LogSink) Append(_ context.Context, e Entry) error {
	line := map[string]any{
		"type":          "audit",
		"id":            e.ID,
		"actor_id":      e.ActorID,
		"action":        e.Action,
		"resource_type": e.ResourceType,
		"resource_id":   e.ResourceID,
		"occurred_at":   e.OccurredAt,
	}
	if len(e.Before) > 0 {
		line["before"] = json.RawMessage(e.Before)
	}
	if len(e.After) > 0 {
		line["after"] = json.RawMessage(e.After)
	}
	data, err := json.Marshal(line)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
