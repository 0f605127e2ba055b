// Package stats caches aggregate statistics (document counts, direct-child
// distributions) per taxonomy path.
//
// Entries go stale after a configurable TTL and are recomputed lazily on the
// next access. Recomputation is serialized per path via a single-flight
// group, so a burst of concurrent requests for one uncached path costs
// exactly one call to the aggregation backend. The cache is the only shared
// mutable state in the retrieval layer and is constructed and owned
// explicitly — there is no package-level singleton.
package stats
