// Copyright 2025 Taxentia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/storage"
)

// CheckpointRepository implements storage.CheckpointRepository for BadgerDB.
type CheckpointRepository struct {
	backend *Backend
}

var _ storage.CheckpointRepository = (*CheckpointRepository)(nil)

// NewCheckpointRepository creates a new CheckpointRepository.
// Returns storage.CheckpointRepository interface (not *CheckpointRepository)
// to enforce abstraction.
func NewCheckpointRepository(backend *Backend) (storage.CheckpointRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &CheckpointRepository{
		backend: backend,
	}, nil
}

// SaveCheckpoint persists a checkpoint keyed by its document key.
func (r *CheckpointRepository) SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		checkpoint.UpdatedAt = time.Now().UTC()
		key := makeCheckpointKey(checkpoint.DocumentKey)
		value := storage.MarshalCheckpoint(checkpoint)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint retrieves the checkpoint for a document key.
// Returns nil, nil if no checkpoint exists.
func (r *CheckpointRepository) LoadCheckpoint(ctx context.Context, documentKey string) (*core.Checkpoint, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var checkpoint *core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckpointKey(documentKey)
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)

	return checkpoint, err
}

// DeleteCheckpoint removes the checkpoint for a document key.
// Deleting a missing checkpoint is not an error.
func (r *CheckpointRepository) DeleteCheckpoint(ctx context.Context, documentKey string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCheckpointKey(documentKey)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListCheckpoints returns all saved checkpoints ordered by document key.
func (r *CheckpointRepository) ListCheckpoints(ctx context.Context) ([]*core.Checkpoint, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var checkpoints []*core.Checkpoint
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(checkpointPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				checkpoint, unmarshalErr := storage.UnmarshalCheckpoint(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				checkpoints = append(checkpoints, checkpoint)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(checkpoints, func(a, b *core.Checkpoint) int {
		return strings.Compare(a.DocumentKey, b.DocumentKey)
	})

	return checkpoints, nil
}

// Close releases repository resources. The backend is closed by its opener.
func (r *CheckpointRepository) Close() error {
	return nil
}
