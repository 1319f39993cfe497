// Package chunk splits legal authority documents into bounded, overlapping
// text segments ready for embedding.
//
// The Chunker works paragraph-first: paragraphs are greedily packed into
// chunks up to a size limit, and a paragraph that alone exceeds the limit is
// re-split at sentence granularity using a pluggable SentenceSplitter. Each
// chunk after the first starts with a word-aligned overlap tail carried over
// from its predecessor for context continuity.
//
// Chunking is deterministic and stateless: the same input always produces
// the same chunks, and no state is shared across calls.
package chunk
