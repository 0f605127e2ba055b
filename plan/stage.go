package plan

import (
	"github.com/poiesic/juris/core"
)

// SearchStage is a single planned call to the similarity backend within a
// cascading search. Stages are ordered; later stages execute only when
// earlier ones under-deliver.
type SearchStage struct {
	// Label identifies the stage in logs and failure reports,
	// e.g. "bottom-up depth=2".
	Label string

	// Filters restrict candidates per taxonomy; possibly an ancestor of the
	// originally requested path.
	Filters map[string]core.HierarchyPath

	// Boosts carry the originally requested full paths for level-weight
	// scoring.
	Boosts map[string]core.HierarchyPath

	// Weights is the weight vector for this stage.
	Weights core.WeightVector

	// Limit is the result-count ceiling for this stage.
	Limit int

	// Probe marks a distribution-analysis stage whose hits are never merged
	// into the caller-facing result set.
	Probe bool
}

// RebalanceForDepth adapts a stage weight vector after truncating the filter
// path to filterDepth: the new deepest constrained level is boosted and every
// level below it is retained at a reduced weight, not zeroed, so documents
// matching the full original path keep ranking highest.
func RebalanceForDepth(weights core.WeightVector, tax core.Taxonomy, filterDepth int, boost, retain float64) core.WeightVector {
	out := weights.Clone()
	for level := 0; level < tax.MaxDepth(); level++ {
		name := tax.LevelName(level)
		if _, ok := out.Levels[name]; !ok {
			continue
		}
		switch {
		case level == filterDepth-1:
			out.Levels[name] *= boost
		case level >= filterDepth:
			out.Levels[name] *= retain
		}
	}
	return out
}
