package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/plan"
	"github.com/poiesic/juris/stats"
)

// Request is one retrieval request as seen by the coordinator. The embedding
// vector is computed once by the caller and reused across every stage.
type Request struct {
	Text         string
	Vector       []float32
	Jurisdiction core.HierarchyPath
	PracticeArea core.HierarchyPath
	Intent       core.SearchIntent
	DepthHint    core.DepthHint
	Temporal     core.TemporalHint
	Limit        int

	// DrillDepth is the target depth for top-down drill-down. Zero means
	// "the depth of the explicit path".
	DrillDepth int
}

// StageHit is a backend hit annotated with the stage that produced it.
// Stage indices are 0-based in execution order.
type StageHit struct {
	backend.Hit
	Stage int
}

// StageFailure records a failed stage for observability. A failed stage is
// treated as zero results, not as a request failure, unless every stage
// fails.
type StageFailure struct {
	Stage int
	Label string
	Err   error
}

// Report summarizes stage execution for one request.
type Report struct {
	StagesRun int

	// Probes counts how many of StagesRun were distribution-analysis
	// probes, whose hits never reach the caller.
	Probes  int
	Skipped int

	Failures []StageFailure
}

// recordStage counts one executed stage.
func (r *Report) recordStage(stage plan.SearchStage) {
	r.StagesRun++
	if stage.Probe {
		r.Probes++
	}
}

// Partial reports whether some, but not all, stages failed.
func (r *Report) Partial() bool {
	return len(r.Failures) > 0 && len(r.Failures) < r.StagesRun
}

// CoordinatorConfig tunes cascade behavior.
type CoordinatorConfig struct {
	// SufficiencyThreshold is the result count at which a bottom-up cascade
	// stops escalating. Grows by ThresholdGrowth per extra stage.
	SufficiencyThreshold int
	ThresholdGrowth      float64

	// StageCeiling is the per-stage result ceiling for cascade stages.
	StageCeiling int

	// ProbeCeiling is the ceiling for top-down distribution probes.
	ProbeCeiling int

	// StageTimeout bounds each backend call; a timed-out stage counts as
	// failed and the cascade moves on.
	StageTimeout time.Duration

	// RebalanceBoost and RebalanceRetain adjust level weights when a cascade
	// truncates its filter path: the new deepest filter level is multiplied
	// by RebalanceBoost, levels below it by RebalanceRetain.
	RebalanceBoost  float64
	RebalanceRetain float64

	// RecencyWeight is the magnitude applied to the recency aspect for
	// temporal hints. Historical hints negate it.
	RecencyWeight float64
}

// DefaultCoordinatorConfig returns defaults suitable for interactive use.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		SufficiencyThreshold: 10,
		ThresholdGrowth:      1.5,
		StageCeiling:         50,
		ProbeCeiling:         100,
		StageTimeout:         3 * time.Second,
		RebalanceBoost:       1.5,
		RebalanceRetain:      0.5,
		RecencyWeight:        1.0,
	}
}

// Coordinator plans and executes staged searches against the similarity
// backend. Each request owns its own stage list and result buffers; the
// coordinator itself holds no per-request state and is safe for concurrent
// use.
type Coordinator struct {
	searcher     backend.SimilaritySearcher
	weights      *plan.Computer
	statsCache   *stats.Cache
	jurisdiction core.Taxonomy
	practice     core.Taxonomy
	cfg          CoordinatorConfig
	logger       *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator) error

// WithConfig overrides the default coordinator configuration.
func WithConfig(cfg CoordinatorConfig) CoordinatorOption {
	return func(c *Coordinator) error {
		c.cfg = cfg
		return nil
	}
}

// WithWeightComputer sets a custom weight computer.
func WithWeightComputer(computer *plan.Computer) CoordinatorOption {
	return func(c *Coordinator) error {
		if computer == nil {
			computer = plan.NewComputer(nil)
		}
		c.weights = computer
		return nil
	}
}

// WithStatsCache lets the coordinator consult cached path statistics to skip
// cascade stages whose filter path provably holds no documents. Without a
// cache every planned stage is issued.
func WithStatsCache(cache *stats.Cache) CoordinatorOption {
	return func(c *Coordinator) error {
		c.statsCache = cache
		return nil
	}
}

// WithTaxonomies overrides the standard jurisdiction/practice taxonomies.
func WithTaxonomies(jurisdiction, practice core.Taxonomy) CoordinatorOption {
	return func(c *Coordinator) error {
		c.jurisdiction = jurisdiction
		c.practice = practice
		return nil
	}
}

// WithCoordinatorLogger sets a custom logger.
// Default is slog.Default().
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a cascading search coordinator.
func NewCoordinator(searcher backend.SimilaritySearcher, opts ...CoordinatorOption) (*Coordinator, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	c := &Coordinator{
		searcher:     searcher,
		weights:      plan.NewComputer(nil),
		jurisdiction: core.JurisdictionTaxonomy(),
		practice:     core.PracticeAreaTaxonomy(),
		cfg:          DefaultCoordinatorConfig(),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// cascadeAxis picks the taxonomy the cascade walks: jurisdiction when given,
// otherwise practice area. The other path, if any, stays a fixed filter on
// every stage.
func (c *Coordinator) cascadeAxis(req Request) (tax core.Taxonomy, target core.HierarchyPath, fixedTax core.Taxonomy, fixed core.HierarchyPath) {
	if !req.Jurisdiction.IsZero() || req.PracticeArea.IsZero() {
		return c.jurisdiction, req.Jurisdiction, c.practice, req.PracticeArea
	}
	return c.practice, req.PracticeArea, c.jurisdiction, req.Jurisdiction
}

// CascadeBottomUp runs the most-specific-to-general strategy: the first
// stage targets the full requested path; each following stage truncates the
// filter by one level with rebalanced weights and merges deduplicated
// results until the sufficiency threshold is met or the taxonomy root is
// reached. Partial results at the root are a valid terminal state.
func (c *Coordinator) CascadeBottomUp(ctx context.Context, req Request, monitor SearchMonitor) ([]StageHit, *Report, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(req)

	tax, target, fixedTax, fixed := c.cascadeAxis(req)

	baseWeights, err := c.weights.ComputeWeights(req.DepthHint, target, req.Intent, tax)
	if err != nil {
		return nil, nil, err
	}
	if !fixed.IsZero() {
		fixedWeights, werr := c.weights.ComputeWeights(core.DepthHintAuto, fixed, req.Intent, fixedTax)
		if werr != nil {
			return nil, nil, werr
		}
		baseWeights = baseWeights.Merge(fixedWeights)
	}

	var merged []StageHit
	seen := make(map[core.ID]struct{})
	report := &Report{}
	threshold := float64(c.cfg.SufficiencyThreshold)

	for depth := target.Depth(); depth >= 0; depth-- {
		filter := target.Truncate(depth)

		stageWeights := baseWeights
		if depth < target.Depth() {
			stageWeights = plan.RebalanceForDepth(baseWeights, tax, depth, c.cfg.RebalanceBoost, c.cfg.RebalanceRetain)
		}

		stage := plan.SearchStage{
			Label:   fmt.Sprintf("bottom-up depth=%d", depth),
			Filters: c.stageFilters(tax.Name, filter, fixedTax.Name, fixed),
			Boosts:  c.stageFilters(tax.Name, target, fixedTax.Name, fixed),
			Weights: stageWeights,
			Limit:   max(c.cfg.StageCeiling, req.Limit),
		}
		monitor.StagePlanned(stage)

		if depth > 0 && c.skipEmptyPath(ctx, tax.Name, filter) {
			monitor.StageSkipped(stage.Label, "no documents under path")
			report.Skipped++
			continue
		}

		hits, stageErr := c.runStage(ctx, req, stage)
		report.recordStage(stage)
		if stageErr != nil {
			if ctx.Err() != nil {
				return nil, report, ctx.Err()
			}
			c.logger.Warn("search stage failed", "stage", stage.Label, "err", stageErr)
			monitor.StageFailed(stage.Label, stageErr)
			report.Failures = append(report.Failures, StageFailure{Stage: report.StagesRun - 1, Label: stage.Label, Err: stageErr})
			continue
		}
		monitor.StageCompleted(stage.Label, len(hits))

		merged = mergeHits(merged, hits, report.StagesRun-1, seen)
		if len(merged) >= int(threshold) {
			break
		}
		threshold *= c.cfg.ThresholdGrowth
	}

	if report.StagesRun > 0 && len(report.Failures) == report.StagesRun {
		return nil, report, fmt.Errorf("%w: all %d stages failed", core.ErrBackendUnavailable, report.StagesRun)
	}

	monitor.AfterMerge(merged)
	return merged, report, nil
}

// DrillTopDown runs the general-to-specific strategy. Probe stages analyze
// the distribution of the next taxonomy level among broadly matching
// documents; when the caller did not specify that level, the most frequent
// value becomes the implicit drill-down target. The caller-facing search is
// issued once the target depth is reached.
func (c *Coordinator) DrillTopDown(ctx context.Context, req Request, monitor SearchMonitor) ([]StageHit, *Report, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(req)

	tax, target, fixedTax, fixed := c.cascadeAxis(req)
	report := &Report{}

	drillDepth := req.DrillDepth
	if drillDepth <= 0 {
		drillDepth = target.Depth()
	}
	if drillDepth > tax.MaxDepth() {
		drillDepth = tax.MaxDepth()
	}

	// Levels the caller specified are taken as-is; probes fill in the rest
	// one level at a time, each analyzing the distribution at the depth
	// directly below the path established so far.
	current := target
	if current.Depth() > drillDepth {
		current = current.Truncate(drillDepth)
	}

	for current.Depth() < drillDepth {
		probe := plan.SearchStage{
			Label:   fmt.Sprintf("top-down probe depth=%d", current.Depth()),
			Filters: c.stageFilters(tax.Name, current, fixedTax.Name, fixed),
			Weights: core.WeightVector{Levels: map[string]float64{}, Aspects: c.probeAspects(req.Intent)},
			Limit:   c.cfg.ProbeCeiling,
			Probe:   true,
		}
		monitor.StagePlanned(probe)

		hits, probeErr := c.runStage(ctx, req, probe)
		report.recordStage(probe)
		if probeErr != nil {
			if ctx.Err() != nil {
				return nil, report, ctx.Err()
			}
			c.logger.Warn("probe stage failed", "stage", probe.Label, "err", probeErr)
			monitor.StageFailed(probe.Label, probeErr)
			report.Failures = append(report.Failures, StageFailure{Stage: report.StagesRun - 1, Label: probe.Label, Err: probeErr})
			break
		}
		monitor.StageCompleted(probe.Label, len(hits))

		value, ok := plan.MostFrequentValue(levelDistribution(hits, tax.Name, current.Depth()))
		if !ok {
			break
		}
		child, err := current.Child(value)
		if err != nil {
			break
		}
		current = child
	}

	weights, err := c.weights.ComputeWeights(req.DepthHint, current, req.Intent, tax)
	if err != nil {
		return nil, report, err
	}
	if !fixed.IsZero() {
		fixedWeights, werr := c.weights.ComputeWeights(core.DepthHintAuto, fixed, req.Intent, fixedTax)
		if werr != nil {
			return nil, report, werr
		}
		weights = weights.Merge(fixedWeights)
	}

	final := plan.SearchStage{
		Label:   fmt.Sprintf("top-down final depth=%d", current.Depth()),
		Filters: c.stageFilters(tax.Name, current, fixedTax.Name, fixed),
		Boosts:  c.stageFilters(tax.Name, current, fixedTax.Name, fixed),
		Weights: weights,
		Limit:   req.Limit,
	}
	monitor.StagePlanned(final)

	hits, stageErr := c.runStage(ctx, req, final)
	report.recordStage(final)
	if stageErr != nil {
		if ctx.Err() != nil {
			return nil, report, ctx.Err()
		}
		monitor.StageFailed(final.Label, stageErr)
		report.Failures = append(report.Failures, StageFailure{Stage: report.StagesRun - 1, Label: final.Label, Err: stageErr})
		if len(report.Failures) == report.StagesRun {
			return nil, report, fmt.Errorf("%w: all %d stages failed", core.ErrBackendUnavailable, report.StagesRun)
		}
		return nil, report, nil
	}
	monitor.StageCompleted(final.Label, len(hits))

	merged := mergeHits(nil, hits, report.StagesRun-1, make(map[core.ID]struct{}))
	monitor.AfterMerge(merged)
	return merged, report, nil
}

// CrossHierarchy issues exactly one stage constraining both taxonomies at
// once. The weight vector is the union of both taxonomies' depth-proportional
// (auto) weights; a temporal hint adds a recency aspect weight — positive for
// recent, negative for historical. The negative weight intentionally inverts
// recency preference; see the package documentation.
func (c *Coordinator) CrossHierarchy(ctx context.Context, req Request, monitor SearchMonitor) ([]StageHit, *Report, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(req)

	jurWeights, err := c.weights.ComputeWeights(core.DepthHintAuto, req.Jurisdiction, req.Intent, c.jurisdiction)
	if err != nil {
		return nil, nil, err
	}
	praWeights, err := c.weights.ComputeWeights(core.DepthHintAuto, req.PracticeArea, req.Intent, c.practice)
	if err != nil {
		return nil, nil, err
	}

	weights := jurWeights.Merge(praWeights)
	switch req.Temporal {
	case core.TemporalRecent:
		weights.Aspects[core.AspectRecency] = c.cfg.RecencyWeight
	case core.TemporalHistorical:
		weights.Aspects[core.AspectRecency] = -c.cfg.RecencyWeight
	}

	stage := plan.SearchStage{
		Label:   "cross-hierarchy",
		Filters: c.stageFilters(c.jurisdiction.Name, req.Jurisdiction, c.practice.Name, req.PracticeArea),
		Boosts:  c.stageFilters(c.jurisdiction.Name, req.Jurisdiction, c.practice.Name, req.PracticeArea),
		Weights: weights,
		Limit:   req.Limit,
	}
	monitor.StagePlanned(stage)

	report := &Report{}
	hits, stageErr := c.runStage(ctx, req, stage)
	report.recordStage(stage)
	if stageErr != nil {
		if ctx.Err() != nil {
			return nil, report, ctx.Err()
		}
		monitor.StageFailed(stage.Label, stageErr)
		report.Failures = append(report.Failures, StageFailure{Stage: 0, Label: stage.Label, Err: stageErr})
		return nil, report, fmt.Errorf("%w: all 1 stages failed", core.ErrBackendUnavailable)
	}
	monitor.StageCompleted(stage.Label, len(hits))

	merged := mergeHits(nil, hits, 0, make(map[core.ID]struct{}))
	monitor.AfterMerge(merged)
	return merged, report, nil
}

// runStage executes one backend call under the per-stage timeout.
func (c *Coordinator) runStage(ctx context.Context, req Request, stage plan.SearchStage) ([]backend.Hit, error) {
	stageCtx := ctx
	if c.cfg.StageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, c.cfg.StageTimeout)
		defer cancel()
	}

	return c.searcher.Search(stageCtx, backend.SearchRequest{
		TextQuery:   req.Text,
		Vector:      req.Vector,
		Weights:     stage.Weights,
		PathFilters: stage.Filters,
		Boosts:      stage.Boosts,
		Limit:       stage.Limit,
	})
}

// skipEmptyPath consults the stats cache, when present, to avoid issuing a
// stage against a path that holds no documents. Cache errors never block a
// stage.
func (c *Coordinator) skipEmptyPath(ctx context.Context, taxonomy string, path core.HierarchyPath) bool {
	if c.statsCache == nil || path.IsZero() {
		return false
	}
	entry, err := c.statsCache.Get(ctx, taxonomy, path)
	if err != nil {
		c.logger.Debug("stats lookup failed, issuing stage anyway", "taxonomy", taxonomy, "path", path.String(), "err", err)
		return false
	}
	return entry.Count == 0
}

func (c *Coordinator) stageFilters(taxName string, path core.HierarchyPath, otherName string, other core.HierarchyPath) map[string]core.HierarchyPath {
	filters := make(map[string]core.HierarchyPath, 2)
	if !path.IsZero() {
		filters[taxName] = path
	}
	if !other.IsZero() {
		filters[otherName] = other
	}
	return filters
}

// probeAspects returns aspect weights for a distribution probe: intent
// aspects are kept so the probe surfaces the documents the caller would
// actually see, but no level weights apply.
func (c *Coordinator) probeAspects(intent core.SearchIntent) map[string]float64 {
	weights, err := c.weights.ComputeWeights(core.DepthHintAuto, core.HierarchyPath{}, intent, c.jurisdiction)
	if err != nil {
		return map[string]float64{}
	}
	return weights.Aspects
}

// mergeHits appends new hits to merged, deduplicating by document ID.
// Earlier-stage entries always win duplicates, which keeps them above
// later-stage entries at equal score.
func mergeHits(merged []StageHit, hits []backend.Hit, stage int, seen map[core.ID]struct{}) []StageHit {
	for _, hit := range hits {
		if _, dup := seen[hit.DocumentId]; dup {
			continue
		}
		seen[hit.DocumentId] = struct{}{}
		merged = append(merged, StageHit{Hit: hit, Stage: stage})
	}
	return merged
}

// levelDistribution counts the values at the given level index among hits'
// paths for one taxonomy.
func levelDistribution(hits []backend.Hit, taxonomy string, level int) map[string]int {
	freq := make(map[string]int)
	for _, hit := range hits {
		var path core.HierarchyPath
		switch taxonomy {
		case core.TaxonomyPracticeArea:
			path = hit.PracticeArea
		default:
			path = hit.Jurisdiction
		}
		if path.Depth() > level {
			freq[path.Segment(level)]++
		}
	}
	return freq
}
