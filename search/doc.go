// Copyright 2025 Poiesic Systems
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


// Package search executes hierarchical retrieval: staged, fallback-aware
// searches against the similarity backend, hierarchical-distance re-ranking,
// and facet tree construction.
//
// The Coordinator supports three strategies:
//
//   - Bottom-up cascade: most specific to general. Stages walk from the full
//     requested path toward the taxonomy root, merging deduplicated results
//     until a sufficiency threshold is met. Partial results at the root are a
//     valid terminal state.
//   - Top-down drill: general to specific. Probe stages analyze the value
//     distribution of the next taxonomy level and pick the most frequent
//     value when the caller left the level unspecified.
//   - Cross-hierarchy: a single stage constraining jurisdiction and practice
//     area at once, with an optional recency aspect weight.
//
// A failed stage (transport error, timeout) counts as zero results and the
// cascade proceeds; the request fails only when every stage fails.
//
// Note on temporal hints: a "historical" hint sets a negative weight on the
// recency aspect, deliberately inverting recency preference. Whether a
// negative aspect weight reliably inverts preference is a property of the
// similarity backend; the local badger backend honors it, and the contract
// is covered by tests so a substituted backend can be verified.
package search
