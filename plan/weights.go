package plan

import (
	"fmt"
	"math"

	"github.com/poiesic/juris/core"
)

const baseLevelWeight = 1.0

// AspectTable maps content-aspect names to static weights for one intent.
type AspectTable map[string]float64

// DefaultAspectTables returns the standard intent-to-aspect weight tables.
// These are configuration, not derived values: discovery favors summaries,
// deep-dive favors full body content.
func DefaultAspectTables() map[core.SearchIntent]AspectTable {
	return map[core.SearchIntent]AspectTable{
		core.IntentGeneral: {
			core.AspectSummary: 1.0,
			core.AspectBody:    1.0,
		},
		core.IntentDiscovery: {
			core.AspectSummary: 1.5,
			core.AspectBody:    0.6,
		},
		core.IntentDeepDive: {
			core.AspectSummary: 0.6,
			core.AspectBody:    1.5,
		},
	}
}

// Computer derives per-level and per-aspect weight vectors from a request's
// depth hint, explicit path, and intent. It owns only static tables and is
// safe for concurrent use.
type Computer struct {
	aspectTables map[core.SearchIntent]AspectTable
}

// NewComputer creates a weight computer. A nil table map falls back to
// DefaultAspectTables.
func NewComputer(aspectTables map[core.SearchIntent]AspectTable) *Computer {
	if aspectTables == nil {
		aspectTables = DefaultAspectTables()
	}
	return &Computer{aspectTables: aspectTables}
}

// ComputeWeights produces the weight vector for one taxonomy.
//
// Level multipliers by hint:
//   - shallow: 1.5x at the top level falling linearly to 0.5x at the leaf
//   - deep: the inverse ramp
//   - auto: 1.0 + 0.5*min(explicitDepth, levelIndex+1)/maxDepth, so deeper
//     explicit context biases weight toward the deepest specified level and an
//     empty path flattens to uniform 1.0
//
// Fails with core.ErrInvalidPathDepth when the explicit path is deeper than
// the taxonomy allows.
func (c *Computer) ComputeWeights(hint core.DepthHint, explicit core.HierarchyPath, intent core.SearchIntent, tax core.Taxonomy) (core.WeightVector, error) {
	maxDepth := tax.MaxDepth()
	if explicit.Depth() > maxDepth {
		return core.WeightVector{}, fmt.Errorf("%w: %q has depth %d, %s allows %d",
			core.ErrInvalidPathDepth, explicit.String(), explicit.Depth(), tax.Name, maxDepth)
	}

	weights := core.WeightVector{
		Levels:  make(map[string]float64, maxDepth),
		Aspects: make(map[string]float64),
	}

	for level := 0; level < maxDepth; level++ {
		weights.Levels[tax.LevelName(level)] = baseLevelWeight * c.levelMultiplier(hint, explicit.Depth(), level, maxDepth)
	}

	for aspect, weight := range c.aspectTable(intent) {
		weights.Aspects[aspect] = weight
	}

	return weights, nil
}

func (c *Computer) levelMultiplier(hint core.DepthHint, explicitDepth, level, maxDepth int) float64 {
	switch hint {
	case core.DepthHintShallow:
		return rampMultiplier(level, maxDepth, 1.5, 0.5)
	case core.DepthHintDeep:
		return rampMultiplier(level, maxDepth, 0.5, 1.5)
	default:
		effective := math.Min(float64(explicitDepth), float64(level+1))
		return 1.0 + 0.5*effective/float64(maxDepth)
	}
}

// rampMultiplier interpolates linearly from `top` at level 0 to `leaf` at the
// deepest level. A single-level taxonomy gets the top multiplier.
func rampMultiplier(level, maxDepth int, top, leaf float64) float64 {
	if maxDepth <= 1 {
		return top
	}
	fraction := float64(level) / float64(maxDepth-1)
	return top + (leaf-top)*fraction
}

func (c *Computer) aspectTable(intent core.SearchIntent) AspectTable {
	if table, ok := c.aspectTables[intent]; ok {
		return table
	}
	return c.aspectTables[core.IntentGeneral]
}
