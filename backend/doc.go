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


// Package backend defines the contracts the retrieval core consumes:
// a weighted similarity searcher and a path-statistics aggregator.
//
// The core never talks to a concrete store directly — the coordinator plans
// stages against SimilaritySearcher and the stats cache recomputes against
// StatsAggregator. The storage/badger package provides a local implementation
// of both; deployments may substitute any vector-search service that honors
// the same semantics (empty result set is not an error; transport failures
// are errors and are handled per stage by the coordinator).
package backend
