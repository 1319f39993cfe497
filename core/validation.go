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


package core

import "fmt"

// ValidateMetadata validates ChunkMetadata according to domain rules.
//
// Validation rules:
//   - SourceType must be a known value
//   - Citation must not be empty
//   - ChunkIndex must be >= 0 and < TotalChunks
//   - TotalChunks must be >= 1
//
// NOT validated (optional provenance):
//   - Title, Section, URL, VersionDate, Extra
func ValidateMetadata(meta ChunkMetadata) error {
	if err := ValidateSourceType(meta.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if meta.Citation == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrEmptyCitation)
	}

	if meta.TotalChunks < 1 {
		return fmt.Errorf("%w: total chunks must be at least 1, got %d", ErrInvalidMetadata, meta.TotalChunks)
	}

	if meta.ChunkIndex < 0 || meta.ChunkIndex >= meta.TotalChunks {
		return fmt.Errorf("%w: %w: index %d of %d", ErrInvalidMetadata, ErrChunkIndexRange, meta.ChunkIndex, meta.TotalChunks)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Metadata must pass ValidateMetadata
//   - StringID must equal ChunkID(source type, citation, index)
//
// The last rule holds because StringID is a pure function of the metadata;
// a mismatch means the chunk was assembled by hand or its metadata was
// edited after creation.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if err := ValidateMetadata(chunk.Metadata); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	want := ChunkID(chunk.Metadata.SourceType, chunk.Metadata.Citation, chunk.Metadata.ChunkIndex)
	if chunk.StringID != want {
		return fmt.Errorf("%w: %w: have %q, want %q", ErrInvalidChunk, ErrIdentifierMismatch, chunk.StringID, want)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a known value.
func ValidateSourceType(sourceType SourceType) error {
	switch sourceType {
	case SourceTypeStatute, SourceTypeRegulation, SourceTypeBulletin:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidSourceType, sourceType)
	}
}

// ParseSourceType parses a source type from its name or wire code.
func ParseSourceType(s string) (SourceType, error) {
	switch s {
	case "statute", "usc":
		return SourceTypeStatute, nil
	case "regulation", "cfr":
		return SourceTypeRegulation, nil
	case "bulletin", "irb":
		return SourceTypeBulletin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSourceType, s)
	}
}
