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
	"io"
	"log/slog"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/ai/openai"
	"github.com/poiesic/juris/ingestion"
	"github.com/poiesic/juris/reembed"
	"github.com/poiesic/juris/search"
	"github.com/poiesic/juris/stats"
	"github.com/poiesic/juris/storage"
	"github.com/poiesic/juris/storage/badger"
)

// Engine is the top-level retrieval engine. It owns the document store, the
// AI provider, the stats cache, and the search pipeline.
type Engine struct {
	backend     *badger.Backend
	repo        storage.DocumentRepository
	provider    ai.AIProvider
	statsCache  *stats.Cache
	coordinator *search.Coordinator
	ranker      *search.Ranker
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig          *ai.Config
	provider          ai.AIProvider
	coordinatorConfig *search.CoordinatorConfig
	rankerConfig      *search.RankerConfig
	inMemory          bool
	logger            *slog.Logger
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects an AI provider, replacing the default
// OpenAI-compatible one. The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithCoordinatorConfig overrides the cascade tuning parameters.
func WithCoordinatorConfig(config search.CoordinatorConfig) EngineOption {
	return func(o *engineOptions) {
		o.coordinatorConfig = &config
	}
}

// WithRankerConfig overrides the hierarchical ranking weights.
func WithRankerConfig(config search.RankerConfig) EngineOption {
	return func(o *engineOptions) {
		o.rankerConfig = &config
	}
}

// WithInMemory stores documents in memory instead of on disk. The file path
// passed to New is ignored. Intended for tests and scratch work.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger used by the engine and its components.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// New creates an Engine backed by a BadgerDB store at filePath.
func New(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo := badger.NewDocumentRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	statsCache, err := stats.NewCache(repo, stats.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		repo.Close()
		backend.Close()
		return nil, err
	}

	coordinatorOpts := []search.CoordinatorOption{
		search.WithStatsCache(statsCache),
		search.WithCoordinatorLogger(options.logger),
	}
	if options.coordinatorConfig != nil {
		coordinatorOpts = append(coordinatorOpts, search.WithConfig(*options.coordinatorConfig))
	}
	coordinator, err := search.NewCoordinator(repo, coordinatorOpts...)
	if err != nil {
		provider.Close()
		repo.Close()
		backend.Close()
		return nil, err
	}

	rankerConfig := search.DefaultRankerConfig()
	if options.rankerConfig != nil {
		rankerConfig = *options.rankerConfig
	}

	return &Engine{
		backend:     backend,
		repo:        repo,
		provider:    provider,
		statsCache:  statsCache,
		coordinator: coordinator,
		ranker:      search.NewRanker(rankerConfig),
		logger:      options.logger,
	}, nil
}

// Close releases the AI provider and the document store.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.repo.Close(); err != nil {
		e.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// DocumentRepository exposes the underlying document store.
func (e *Engine) DocumentRepository() storage.DocumentRepository {
	return e.repo
}

// StatsCache exposes the hierarchy stats cache.
func (e *Engine) StatsCache() *stats.Cache {
	return e.statsCache
}

// NewIngestionPipeline creates an ingestion pipeline bound to this engine's
// store, AI provider, and stats cache.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithStatsCache(e.statsCache)}, opts...)
	return ingestion.NewPipeline(e.repo, e.provider, opts...)
}

// NewReembedder creates a reembedder bound to this engine's store and
// embedding provider. progress is typically os.Stderr.
func (e *Engine) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(e.repo, e.provider.Embedder(), config, progress)
}
