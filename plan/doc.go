// Package plan derives search-stage parameters from a retrieval request:
// per-level and per-aspect weight vectors, stage rebalancing for cascading
// fallbacks, and drill-down target selection. Everything here is pure
// computation over a request and static tables; no backend calls happen in
// this package.
package plan
