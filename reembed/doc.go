// Package reembed provides functionality for reembedding existing documents
// with new or updated embedding models.
//
// This package regenerates both the summary and content embedding aspects,
// supports batch processing with progress tracking, retry logic with
// exponential backoff, and vector normalization to ensure compatibility
// with cosine similarity search.
package reembed
