package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// Journal appends the events of one run. A nil or store-less Journal
// discards everything, so callers never check.
type Journal struct {
	store Store
	runID string
}

// New returns a Journal writing to store under a fresh run ID.
func New(store Store) *Journal {
	return &Journal{store: store, runID: uuid.NewString()}
}

// Open creates the database directory and opens a journal at path. An empty
// path yields a discarding Journal.
func Open(path string) (*Journal, error) {
	if path == "" {
		return &Journal{runID: uuid.NewString()}, nil
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return New(store), nil
}

// RunID identifies the current run.
func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID
}

// Store returns the backing store, or nil when discarding.
func (j *Journal) Store() Store {
	if j == nil {
		return nil
	}
	return j.store
}

// Record appends a typed event. Journal failures are logged and never
// interrupt the run.
func (j *Journal) Record(ctx context.Context, event any) {
	if j == nil || j.store == nil {
		return
	}
	typ := eventType(event)
	if typ == "" {
		slog.Warn("Unknown journal event", slog.String("type", fmt.Sprintf("%T", event)))
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("Failed to encode journal event", slog.String("type", typ), logfields.Error(err))
		return
	}
	if err := j.store.Append(ctx, j.runID, typ, payload, nil); err != nil {
		slog.Warn("Failed to append journal event", slog.String("type", typ), logfields.RunID(j.runID), logfields.Error(err))
	}
}

// Close releases the store.
func (j *Journal) Close() error {
	if j == nil || j.store == nil {
		return nil
	}
	return j.store.Close()
}
