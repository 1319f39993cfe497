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


package chunk

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/taxentia/ingest/core"
)

const (
	// DefaultMaxChunkSize is the default chunk capacity in bytes.
	DefaultMaxChunkSize = 2000

	// DefaultOverlapSize is the default number of trailing bytes carried
	// from one chunk into the next.
	DefaultOverlapSize = 200
)

// Chunker splits documents into size-bounded, overlapping chunks.
//
// Splitting is paragraph-first: paragraphs are accumulated greedily until
// the next one would overflow the chunk capacity. A paragraph that alone
// exceeds the capacity is broken into sentences and those are accumulated
// the same way. Every emitted chunk except the first starts with a
// word-aligned tail of its predecessor.
//
// A Chunker is stateless across calls and safe for concurrent use.
type Chunker struct {
	maxChunkSize int
	overlapSize  int
	splitter     SentenceSplitter
	logger       *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithMaxChunkSize sets the chunk capacity in bytes.
func WithMaxChunkSize(n int) Option {
	return func(c *Chunker) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidChunkSize, n)
		}
		c.maxChunkSize = n
		return nil
	}
}

// WithOverlapSize sets how many trailing bytes of a chunk seed the next one.
// Zero disables overlap.
func WithOverlapSize(n int) Option {
	return func(c *Chunker) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidOverlap, n)
		}
		c.overlapSize = n
		return nil
	}
}

// WithSentenceSplitter sets the splitter used for paragraphs that exceed
// the chunk capacity.
func WithSentenceSplitter(s SentenceSplitter) Option {
	return func(c *Chunker) error {
		if s == nil {
			return ErrSplitterRequired
		}
		c.splitter = s
		return nil
	}
}

// WithLogger sets the logger used by the Chunker.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		c.logger = logger
		return nil
	}
}

// NewChunker creates a Chunker. Without options it uses the default sizes,
// the ProseSplitter, and slog.Default().
func NewChunker(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxChunkSize: DefaultMaxChunkSize,
		overlapSize:  DefaultOverlapSize,
		splitter:     ProseSplitter{},
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.overlapSize >= c.maxChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than max chunk size %d",
			ErrInvalidOverlap, c.overlapSize, c.maxChunkSize)
	}

	c.logger = c.logger.With("component", "chunker")
	return c, nil
}

// Split divides a document into chunks and stamps each with positional
// metadata. The caller supplies the source type and citation; chunk index,
// total count, and the string identifier are filled in here.
//
// Empty text after normalization yields zero chunks and no error.
func (c *Chunker) Split(text string, meta core.ChunkMetadata) ([]core.Chunk, error) {
	if err := core.ValidateSourceType(meta.SourceType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(meta.Citation) == "" {
		return nil, core.ErrEmptyCitation
	}

	text = Normalize(text)
	if text == "" {
		c.logger.Warn("empty text provided to chunker", "citation", meta.Citation)
		return nil, nil
	}

	var pieces []string
	if len(text) <= c.maxChunkSize {
		pieces = []string{text}
	} else {
		pieces = c.pack(text)
	}

	chunks := make([]core.Chunk, len(pieces))
	for i, piece := range pieces {
		m := meta
		m.ChunkIndex = i
		m.TotalChunks = len(pieces)
		chunks[i] = core.Chunk{
			Text:     piece,
			Metadata: m,
			StringID: core.ChunkID(m.SourceType, m.Citation, i),
		}
	}

	c.logger.Debug("split document",
		"citation", meta.Citation,
		"characters", len(text),
		"chunks", len(chunks))
	return chunks, nil
}

// pack runs the greedy accumulation over paragraphs, dropping to sentence
// granularity for paragraphs that exceed the chunk capacity.
func (c *Chunker) pack(text string) []string {
	p := &packer{max: c.maxChunkSize, overlap: c.overlapSize}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= c.maxChunkSize {
			p.add(para, "\n\n")
			continue
		}
		for _, sentence := range c.splitter.Split(para) {
			if len(sentence) > c.maxChunkSize {
				c.logger.Warn("sentence exceeds max chunk size, accepting oversized chunk",
					"characters", len(sentence),
					"max", c.maxChunkSize)
			}
			p.add(sentence, " ")
		}
	}

	return p.finish()
}

// Document pairs raw text with the metadata identifying its source.
type Document struct {
	Text     string
	Metadata core.ChunkMetadata
}

// SplitAll chunks documents in order and concatenates the results. Chunk
// indices restart at zero for each document.
func (c *Chunker) SplitAll(docs []Document) ([]core.Chunk, error) {
	var all []core.Chunk
	for i, doc := range docs {
		chunks, err := c.Split(doc.Text, doc.Metadata)
		if err != nil {
			return nil, fmt.Errorf("document %d (%s): %w", i, doc.Metadata.Citation, err)
		}
		all = append(all, chunks...)
	}
	return all, nil
}

// packer accumulates units (paragraphs or sentences) into chunks, carrying
// a word-aligned overlap from the tail of each flushed chunk into the next.
//
// Emitted chunks never exceed max+overlap bytes unless a single unit alone
// is larger than max.
type packer struct {
	max     int
	overlap int
	pieces  []string
	buf     string
	seeded  bool
}

// add appends a unit to the buffer, flushing first when the unit no longer
// fits. sep joins units of the same kind; an overlap seed joins its first
// unit with a single space regardless of unit kind.
func (p *packer) add(unit, sep string) {
	switch {
	case p.buf == "":
		p.buf = unit
	case p.seeded:
		p.buf += " " + unit
		p.seeded = false
	case len(p.buf)+len(sep)+len(unit) <= p.max:
		p.buf += sep + unit
	default:
		p.flush()
		p.add(unit, sep)
	}
}

func (p *packer) flush() {
	piece := strings.TrimSpace(p.buf)
	if piece != "" {
		p.pieces = append(p.pieces, piece)
	}
	p.buf = p.overlapTail(piece)
	p.seeded = p.buf != ""
}

func (p *packer) finish() []string {
	if piece := strings.TrimSpace(p.buf); piece != "" {
		p.pieces = append(p.pieces, piece)
	}
	return p.pieces
}

// overlapTail returns the seed for the chunk after piece: the last overlap
// bytes with any leading partial word removed. A window holding no space
// yields no seed rather than a cut mid-word. The seed is always shorter
// than the overlap window, so a seeded chunk stays within max+overlap.
func (p *packer) overlapTail(piece string) string {
	if p.overlap <= 0 {
		return ""
	}
	if len(piece) < p.overlap {
		return piece
	}

	tail := piece[len(piece)-p.overlap:]
	idx := strings.IndexByte(tail, ' ')
	if idx < 0 {
		return ""
	}
	return tail[idx+1:]
}
