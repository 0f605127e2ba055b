package search

import (
	"sort"

	"github.com/poiesic/juris/core"
)

// UnclassifiedFacet is the bucket for results that carry no path for a
// taxonomy. Keeping them in a reserved bucket preserves count conservation:
// the counts of a root's children always sum to the number of results.
const UnclassifiedFacet = "(unclassified)"

// BuildFacetTrees groups a flat result set into one facet tree per taxonomy
// for drill-down UIs. A node appears only when its document count is at
// least minDocsPerNode; recursion stops at each taxonomy's max depth, and
// absent deeper levels are omitted rather than zero-filled. This is pure
// aggregation over results already in hand — no backend calls.
//
// The returned root node per taxonomy carries the taxonomy name and the
// total result count; its children are the level-0 facets.
func BuildFacetTrees(results []core.RankedResult, taxonomies []core.Taxonomy, minDocsPerNode int) map[string]*core.FacetNode {
	trees := make(map[string]*core.FacetNode, len(taxonomies))

	for _, tax := range taxonomies {
		root := &core.FacetNode{
			Value: tax.Name,
			Count: len(results),
		}

		paths := make([]core.HierarchyPath, 0, len(results))
		for _, result := range results {
			paths = append(paths, pathForTaxonomy(result, tax.Name))
		}

		root.Children = buildFacetLevel(paths, 0, tax.MaxDepth(), minDocsPerNode)
		trees[tax.Name] = root
	}

	return trees
}

// buildFacetLevel groups paths by their segment at the given level and
// recurses one level down within each group.
func buildFacetLevel(paths []core.HierarchyPath, level, maxDepth, minDocs int) []*core.FacetNode {
	if level >= maxDepth {
		return nil
	}

	groups := make(map[string][]core.HierarchyPath)
	for _, path := range paths {
		if path.Depth() <= level {
			if level == 0 && path.IsZero() {
				groups[UnclassifiedFacet] = append(groups[UnclassifiedFacet], path)
			}
			// Paths ending at this level count toward the parent node only.
			continue
		}
		value := path.Segment(level)
		groups[value] = append(groups[value], path)
	}

	nodes := make([]*core.FacetNode, 0, len(groups))
	for value, group := range groups {
		if len(group) < minDocs {
			continue
		}
		node := &core.FacetNode{
			Value: value,
			Count: len(group),
		}
		if value != UnclassifiedFacet {
			node.Children = buildFacetLevel(group, level+1, maxDepth, minDocs)
		}
		nodes = append(nodes, node)
	}

	// Count descending, ties by value, so trees are deterministic.
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Count != nodes[j].Count {
			return nodes[i].Count > nodes[j].Count
		}
		return nodes[i].Value < nodes[j].Value
	})

	return nodes
}

func pathForTaxonomy(result core.RankedResult, taxonomy string) core.HierarchyPath {
	if taxonomy == core.TaxonomyPracticeArea {
		return result.PracticeArea
	}
	return result.Jurisdiction
}
