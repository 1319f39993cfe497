// Package ingestion provides pipeline orchestration for embedding legal text.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Chunking documents concurrently on a worker pool
//   - Grouping chunks into batches bounded by count and token budget
//   - Embedding batches strictly sequentially through a provider
//   - Saving checkpoints so an interrupted run resumes at the failed batch
//
// Chunking is concurrent; embedding is sequential so token and rate
// accounting stay simple. A rate-limited request is retried exactly once
// after a fixed wait. Any other provider failure aborts the run.
package ingestion
