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


package juris

import (
	"context"
	"fmt"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/search"
)

// DefaultLimit is the result count used when a request leaves Limit at zero.
const DefaultLimit = 10

// Request is one retrieval request. Taxonomy paths are raw strings and may
// use aliases ("US/TX" resolves to "united_states/texas"). When both paths
// are empty, the query classifier infers placement and hints from Text.
type Request struct {
	Text         string
	Jurisdiction string
	PracticeArea string
	Intent       core.SearchIntent
	DepthHint    core.DepthHint
	Temporal     core.TemporalHint
	Limit        int

	// DrillDepth > 0 selects the top-down strategy and drills to that
	// taxonomy depth, inferring unspecified levels from result distribution.
	DrillDepth int

	// IncludeFacets adds per-taxonomy facet trees to the response.
	IncludeFacets bool
	MinFacetDocs  int

	// SkipClassifier disables query classification even when no explicit
	// paths are given.
	SkipClassifier bool

	// Monitor receives per-stage callbacks. Nil means no observation.
	Monitor search.SearchMonitor
}

// Response carries ranked results plus everything a caller needs to judge
// their completeness.
type Response struct {
	Results []core.RankedResult

	// Facets maps taxonomy name to its facet tree root. Nil unless requested.
	Facets map[string]*core.FacetNode

	// Report summarizes stage execution. Report.Partial() means some stages
	// failed and Results may be incomplete.
	Report *search.Report

	// Analysis is set when the query classifier was consulted.
	Analysis *ai.QueryAnalysis
}

// Retrieve runs the full retrieval pipeline: classification (when no paths
// are given), query embedding, staged cascading search, hierarchical
// re-ranking, and facet construction. Results are deterministic for equal
// inputs against equal store state.
func (e *Engine) Retrieve(ctx context.Context, req Request) (*Response, error) {
	if req.Text == "" && req.Jurisdiction == "" && req.PracticeArea == "" {
		return nil, ErrEmptyRequest
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	resp := &Response{}

	if req.Jurisdiction == "" && req.PracticeArea == "" && !req.SkipClassifier {
		analysis, err := e.provider.QueryClassifier().ClassifyQuery(ctx, req.Text)
		if err != nil {
			// Classification is an optimization. Fall back to an
			// unclassified full-corpus search.
			e.logger.Warn("query classification failed", "err", err)
		} else {
			resp.Analysis = &analysis
			req.Jurisdiction = analysis.Jurisdiction
			req.PracticeArea = analysis.PracticeArea
			req.Intent = intentFromLabel(analysis.Intent)
			req.DepthHint = depthHintFromLabel(analysis.Depth)
			req.Temporal = temporalFromLabel(analysis.Temporal)
		}
	}

	jurisdiction, err := core.ParsePathWithAliases(req.Jurisdiction, core.DefaultJurisdictionAliases())
	if err != nil {
		return nil, fmt.Errorf("jurisdiction %q: %w", req.Jurisdiction, err)
	}
	practice, err := core.ParsePathWithAliases(req.PracticeArea, core.DefaultPracticeAreaAliases())
	if err != nil {
		return nil, fmt.Errorf("practice area %q: %w", req.PracticeArea, err)
	}

	searchReq := search.Request{
		Text:         req.Text,
		Jurisdiction: jurisdiction,
		PracticeArea: practice,
		Intent:       req.Intent,
		DepthHint:    req.DepthHint,
		Temporal:     req.Temporal,
		Limit:        req.Limit,
		DrillDepth:   req.DrillDepth,
	}

	if req.Text != "" {
		vector, err := e.provider.Embedder().EmbedText(ctx, req.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		searchReq.Vector = vector
	}

	monitor := req.Monitor
	if monitor == nil {
		monitor = search.NoopMonitor()
	}

	var hits []search.StageHit
	switch {
	case jurisdiction.Depth() > 0 && practice.Depth() > 0:
		hits, resp.Report, err = e.coordinator.CrossHierarchy(ctx, searchReq, monitor)
	case req.DrillDepth > 0:
		hits, resp.Report, err = e.coordinator.DrillTopDown(ctx, searchReq, monitor)
	default:
		hits, resp.Report, err = e.coordinator.CascadeBottomUp(ctx, searchReq, monitor)
	}
	if err != nil {
		return nil, err
	}

	resp.Results = e.ranker.Rank(hits, jurisdiction, practice)
	if len(resp.Results) > req.Limit {
		resp.Results = resp.Results[:req.Limit]
	}
	monitor.Finish(resp.Results)

	if req.IncludeFacets {
		resp.Facets = search.BuildFacetTrees(resp.Results,
			[]core.Taxonomy{core.JurisdictionTaxonomy(), core.PracticeAreaTaxonomy()},
			req.MinFacetDocs)
	}

	return resp, nil
}

func intentFromLabel(label string) core.SearchIntent {
	switch label {
	case "discovery":
		return core.IntentDiscovery
	case "deep_dive":
		return core.IntentDeepDive
	default:
		return core.IntentGeneral
	}
}

func depthHintFromLabel(label string) core.DepthHint {
	switch label {
	case "shallow":
		return core.DepthHintShallow
	case "deep":
		return core.DepthHintDeep
	default:
		return core.DepthHintAuto
	}
}

func temporalFromLabel(label string) core.TemporalHint {
	switch label {
	case "recent":
		return core.TemporalRecent
	case "historical":
		return core.TemporalHistorical
	default:
		return core.TemporalNone
	}
}
