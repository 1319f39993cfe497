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

import "errors"

// Domain validation errors
var (
	// ErrInvalidMetadata indicates a ChunkMetadata failed validation.
	ErrInvalidMetadata = errors.New("invalid chunk metadata")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidSourceType indicates an invalid SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyCitation indicates the Citation field is empty.
	ErrEmptyCitation = errors.New("citation cannot be empty")

	// ErrChunkIndexRange indicates ChunkIndex is negative or not below TotalChunks.
	ErrChunkIndexRange = errors.New("chunk index out of range")

	// ErrIdentifierMismatch indicates a chunk's StringID does not match its metadata.
	ErrIdentifierMismatch = errors.New("string id does not match metadata")

	// ErrDimensionMismatch indicates an embedding's length disagrees with the
	// configured dimension. Always fatal for the whole run.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
