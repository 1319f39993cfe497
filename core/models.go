package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for storage-level entities such as checkpoints.
// It is generated using content-based hashing and is distinct from the
// legacy numeric chunk id (see NumericID).
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint returns a hex-encoded BLAKE2b digest of text.
// It is stored in checkpoints to detect source document drift between runs.
func Fingerprint(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// SourceType identifies the kind of legal authority a document comes from.
type SourceType int

const (
	// SourceTypeStatute represents a United States Code section.
	SourceTypeStatute SourceType = iota + 1
	// SourceTypeRegulation represents a Code of Federal Regulations section.
	SourceTypeRegulation
	// SourceTypeBulletin represents an Internal Revenue Bulletin document.
	SourceTypeBulletin
)

// Code returns the short wire code used in chunk identifiers.
// These codes are frozen: a downstream vector index is keyed by
// identifiers built from them.
func (s SourceType) Code() string {
	switch s {
	case SourceTypeStatute:
		return "usc"
	case SourceTypeRegulation:
		return "cfr"
	case SourceTypeBulletin:
		return "irb"
	default:
		return "unknown"
	}
}

// String returns the human-readable name of the source type.
func (s SourceType) String() string {
	switch s {
	case SourceTypeStatute:
		return "statute"
	case SourceTypeRegulation:
		return "regulation"
	case SourceTypeBulletin:
		return "bulletin"
	default:
		return "unknown"
	}
}

// ChunkMetadata carries the provenance of a chunk within its source document.
type ChunkMetadata struct {
	SourceType  SourceType
	Citation    string
	ChunkIndex  int
	TotalChunks int
	Title       string            // Optional document title
	Section     string            // Optional section/regulation number
	URL         string            // Optional URL to the original source
	VersionDate string            // Optional last-modified date
	Extra       map[string]string // Additional open-ended metadata
}

// DocumentKey returns the stable key identifying the source document,
// shared by all chunks of that document.
func (m ChunkMetadata) DocumentKey() string {
	return m.SourceType.Code() + ":" + m.Citation
}

// Chunk is a bounded text segment of a source document, ready for embedding.
type Chunk struct {
	Text     string
	Metadata ChunkMetadata
	StringID string
}

// EmbeddedChunk is a chunk paired with its vector embedding.
type EmbeddedChunk struct {
	Chunk      Chunk
	Embedding  []float32
	NumericID  int64 // Legacy-compatible id derived from StringID
	TokenCount int
}

// NewEmbeddedChunk builds an EmbeddedChunk, verifying the embedding length
// against the expected dimension. A mismatch means the provider broke its
// model contract; the record is never constructed in that case.
func NewEmbeddedChunk(chunk Chunk, embedding []float32, dimension, tokenCount int) (EmbeddedChunk, error) {
	if len(embedding) != dimension {
		return EmbeddedChunk{}, fmt.Errorf("%w: expected %d, received %d for %s",
			ErrDimensionMismatch, dimension, len(embedding), chunk.StringID)
	}
	return EmbeddedChunk{
		Chunk:      chunk,
		Embedding:  embedding,
		NumericID:  NumericID(chunk.StringID),
		TokenCount: tokenCount,
	}, nil
}

// Batch is an ordered group of chunks sent to the embedding provider in one
// request. Batches are consumed exactly once and never persisted.
type Batch struct {
	Chunks      []Chunk
	TokenCounts []int // Per-chunk token counts, parallel to Chunks
	TokenCount  int   // Sum of TokenCounts
	Index       int
}

// Size returns the number of chunks in the batch.
func (b *Batch) Size() int {
	return len(b.Chunks)
}

// CostEstimate returns the embedding cost for the batch at the given price
// per million tokens.
func (b *Batch) CostEstimate(pricePerMillion float64) float64 {
	return float64(b.TokenCount) / 1_000_000 * pricePerMillion
}

// RunTotals tracks cumulative progress across an embedding run.
type RunTotals struct {
	Chunks  int
	Batches int
	Tokens  int
	CostUSD float64
}

// Checkpoint records per-document run state so an aborted ingestion can
// resume at the failed batch. It never contains embedding vectors.
type Checkpoint struct {
	DocumentKey string
	Fingerprint string // BLAKE2b digest of the normalized document text
	TotalChunks int
	NextBatch   int
	TokensUsed  int
	UpdatedAt   time.Time
}
