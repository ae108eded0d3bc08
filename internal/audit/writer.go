package audit

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"vantagecrm.io/internal/ids"
	"vantagecrm.io/internal/obs"
)

const defaultShards = 8

// Writer appends entries asynchronously relative to the triggering request.
// Entries for the same resource id always land on the same shard, so the
// before/after history of one record stays ordered; no ordering holds across
// different resources.
type Writer struct {
	sink   Sink
	name   string
	shards []chan Entry
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewWriter starts the shard workers. Name labels the sink in metrics.
func NewWriter(sink Sink, name string) *Writer {
	w := &Writer{
		sink:   sink,
		name:   name,
		shards: make([]chan Entry, defaultShards),
	}
	for i := range w.shards {
		ch := make(chan Entry, 64)
		w.shards[i] = ch
		w.wg.Add(1)
		go w.drain(ch)
	}
	return w
}

// Record enqueues one entry, filling in id and timestamp when absent. It
// never blocks the caller on sink latency beyond the shard buffer.
func (w *Writer) Record(ctx context.Context, e Entry) {
	if e.ID == "" {
		e.ID = ids.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	// The send runs under the read lock: concurrent callers only contend
	// per shard, and Close waits for in-flight sends before closing the
	// channels.
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		// Late entries during shutdown go straight to the sink.
		w.append(e)
		return
	}
	w.shards[shardFor(e.ResourceID, len(w.shards))] <- e
	w.mu.RUnlock()
}

// Close flushes all pending entries and stops the workers.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for _, ch := range w.shards {
		close(ch)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Writer) drain(ch <-chan Entry) {
	defer w.wg.Done()
	for e := range ch {
		w.append(e)
	}
}

func (w *Writer) append(e Entry) {
	// The request context may be gone by the time the entry is written;
	// bound the sink call independently.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.sink.Append(ctx, e); err != nil {
		obs.AuditEntry(w.name, "error")
		obs.LogRequest(map[string]any{
			"level":       "error",
			"msg":         "audit append failed",
			"audit_id":    e.ID,
			"resource_id": e.ResourceID,
			"error":       err.Error(),
		})
		return
	}
	obs.AuditEntry(w.name, "ok")
}

func shardFor(resourceID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(resourceID))
	return int(h.Sum32() % uint32(n))
}
