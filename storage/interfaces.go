package storage

import (
	"context"

	"github.com/taxentia/ingest/core"
)

// CheckpointRepository persists per-document run state so an aborted
// ingestion run can resume at the failed batch.
// Implementations must be thread-safe and support concurrent access.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint for its document key,
	// overwriting any previous state. Sets UpdatedAt.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a document key.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, documentKey string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a document key.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, documentKey string) error

	// ListCheckpoints returns all saved checkpoints ordered by document key.
	ListCheckpoints(ctx context.Context) ([]*core.Checkpoint, error)

	// Close releases repository resources. The underlying backend is
	// closed by whoever opened it.
	Close() error
}
