package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/stats"
	"github.com/poiesic/juris/storage"
)

// Pipeline orchestrates the ingestion of legal documents: synchronous
// validation and storage, asynchronous embedding enrichment, and stats-cache
// invalidation for every taxonomy path the batch touches.
type Pipeline struct {
	repository storage.DocumentRepository
	pool       *ants.Pool
	proc       *embeddingProcessor
	statsCache *stats.Cache
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding work.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithStatsCache lets the pipeline invalidate cached hierarchy statistics
// for the paths touched by each ingested batch. Without a cache ingestion
// still works; stale stats simply age out by TTL.
func WithStatsCache(cache *stats.Cache) Option {
	return func(p *Pipeline) error {
		p.statsCache = cache
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.DocumentRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	proc, err := newEmbeddingProcessor(repository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.proc = proc

	return p, nil
}

// Ingest validates and stores documents, then submits them for asynchronous
// embedding. Documents are searchable by path immediately; similarity hits
// appear once embedding completes. Errors during async processing are logged
// but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	added, err := p.repository.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	if len(added) == 0 {
		return added, nil
	}

	p.invalidateStats(added)

	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id
	}

	p.wg.Add(1)
	submitErr := p.pool.Submit(func() {
		defer p.wg.Done()
		if err := p.proc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
	if submitErr != nil {
		p.wg.Done()
		return added, submitErr
	}

	return added, nil
}

// Wait blocks until all submitted embedding work has completed.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// invalidateStats drops cached aggregates for every ancestor of every path
// in the batch, on both taxonomies.
func (p *Pipeline) invalidateStats(docs []*core.Document) {
	if p.statsCache == nil {
		return
	}
	for _, doc := range docs {
		invalidatePath(p.statsCache, core.TaxonomyJurisdiction, doc.Jurisdiction)
		invalidatePath(p.statsCache, core.TaxonomyPracticeArea, doc.PracticeArea)
	}
}

func invalidatePath(cache *stats.Cache, taxonomy string, path core.HierarchyPath) {
	for depth := path.Depth(); depth >= 0; depth-- {
		cache.Invalidate(taxonomy, path.Truncate(depth))
	}
}

// Release releases the worker pool after draining outstanding work.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}
