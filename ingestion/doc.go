// Package ingestion provides pipeline orchestration for adding legal
// documents to the store.
//
// The Pipeline type manages the ingestion workflow, including:
//   - Validating and adding documents to storage
//   - Generating summary and content embeddings asynchronously
//   - Invalidating cached hierarchy statistics for affected paths
//
// Embedding is performed concurrently using a worker pool to maximize
// throughput. Errors during async processing are logged but do not fail the
// ingestion operation; the affected documents remain stored and reachable by
// path until a later re-embedding run repairs them.
package ingestion
