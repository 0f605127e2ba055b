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


package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/juris"
	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/ai/openai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/ingestion"
	"github.com/poiesic/juris/reembed"
	"github.com/poiesic/juris/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "juris",
		Usage: "Hierarchical legal document retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest documents from a JSONL file",
				ArgsUsage: "FILE",
				Action:    ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Embedding worker pool size (0 = half the CPUs)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search documents by text and taxonomy placement",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags:     append(storeFlags(), searchFlags()...),
			},
			{
				Name:      "facets",
				Usage:     "Search and print facet trees instead of results",
				ArgsUsage: "QUERY",
				Action:    facetsCommand,
				Flags: append(append(storeFlags(), searchFlags()...),
					&cli.IntFlag{
						Name:  "min-docs",
						Usage: "Minimum documents for a facet node to appear",
						Value: 1,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all documents with new embeddings",
				Action: reembedCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB store directory",
			Required: true,
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "jurisdiction",
			Aliases: []string{"j"},
			Usage:   "Jurisdiction path, aliases allowed (e.g. US/TX/Austin)",
		},
		&cli.StringFlag{
			Name:    "practice",
			Aliases: []string{"p"},
			Usage:   "Practice-area path (e.g. litigation/commercial)",
		},
		&cli.StringFlag{
			Name:  "depth",
			Usage: "Depth hint: auto, shallow, deep",
			Value: "auto",
		},
		&cli.StringFlag{
			Name:  "temporal",
			Usage: "Temporal hint: none, recent, historical",
			Value: "none",
		},
		&cli.StringFlag{
			Name:  "intent",
			Usage: "Search intent: general, discovery, deep_dive",
			Value: "general",
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"n"},
			Usage:   "Maximum number of results",
			Value:   juris.DefaultLimit,
		},
		&cli.IntFlag{
			Name:  "drill-depth",
			Usage: "Top-down drill target depth (0 disables drill-down)",
		},
		&cli.BoolFlag{
			Name:  "no-classify",
			Usage: "Skip LLM query classification",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "classifier-host",
			Usage: "Classifier service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "classifier-model",
			Usage: "Classifier model name",
			Value: "qwen2.5:3b",
		},
	}
}

// document mirrors the JSONL ingest format, one object per line.
type document struct {
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	Contents     string            `json:"contents"`
	Jurisdiction string            `json:"jurisdiction"`
	PracticeArea string            `json:"practice_area"`
	DecidedAt    string            `json:"decided_at"`
	Metadata     map[string]string `json:"metadata"`
}

func (d document) toCore() (*core.Document, error) {
	doc := &core.Document{
		Title:    d.Title,
		Summary:  d.Summary,
		Contents: d.Contents,
		Metadata: d.Metadata,
	}

	var err error
	if d.Jurisdiction != "" {
		doc.Jurisdiction, err = core.ParsePathWithAliases(d.Jurisdiction, core.DefaultJurisdictionAliases())
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %q: %w", d.Jurisdiction, err)
		}
	}
	if d.PracticeArea != "" {
		doc.PracticeArea, err = core.ParsePathWithAliases(d.PracticeArea, core.DefaultPracticeAreaAliases())
		if err != nil {
			return nil, fmt.Errorf("practice area %q: %w", d.PracticeArea, err)
		}
	}
	if d.DecidedAt != "" {
		doc.DecidedAt, err = time.Parse(time.RFC3339, d.DecidedAt)
		if err != nil {
			return nil, fmt.Errorf("decided_at %q: %w", d.DecidedAt, err)
		}
	}
	return doc, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one JSONL file argument")
	}

	file, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	docs, err := readDocuments(file.Name(), bufio.NewScanner(file))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "No documents in input")
		return nil
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	engine, err := juris.New(c.String("db"), juris.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	var pipelineOpts []ingestion.Option
	if workers := c.Int("workers"); workers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(workers))
	}
	pipeline, err := engine.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(context.Background(), docs...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	pipeline.Wait()

	fmt.Fprintf(os.Stderr, "Ingested %d documents\n", len(added))
	return nil
}

func readDocuments(name string, scanner *bufio.Scanner) ([]*core.Document, error) {
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var docs []*core.Document
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var record document
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		doc, err := record.toCore()
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return docs, nil
}

func searchCommand(c *cli.Context) error {
	engine, req, err := searchSetup(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	resp, err := engine.Retrieve(context.Background(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.Analysis != nil {
		fmt.Printf("Classified: jurisdiction=%q practice=%q intent=%s\n",
			resp.Analysis.Jurisdiction, resp.Analysis.PracticeArea, resp.Analysis.Intent)
	}
	if resp.Report.Partial() {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d stages failed; results may be incomplete\n",
			len(resp.Report.Failures), resp.Report.StagesRun)
	}

	fmt.Printf("Found %d hits (%d stages, %d probes)\n",
		len(resp.Results), resp.Report.StagesRun, resp.Report.Probes)
	for i, result := range resp.Results {
		fmt.Printf("%d: %d [%0.3f] jurisdiction=%s practice=%s\n",
			i+1, result.DocumentId, result.CombinedScore,
			pathOrDash(result.Jurisdiction), pathOrDash(result.PracticeArea))
	}
	return nil
}

func facetsCommand(c *cli.Context) error {
	engine, req, err := searchSetup(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	req.IncludeFacets = true
	req.MinFacetDocs = c.Int("min-docs")

	resp, err := engine.Retrieve(context.Background(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, taxonomy := range []string{core.TaxonomyJurisdiction, core.TaxonomyPracticeArea} {
		root := resp.Facets[taxonomy]
		if root == nil {
			continue
		}
		printFacetNode(root, 0)
	}
	return nil
}

func printFacetNode(node *core.FacetNode, indent int) {
	fmt.Printf("%s%s (%d)\n", strings.Repeat("  ", indent), node.Value, node.Count)
	for _, child := range node.Children {
		printFacetNode(child, indent+1)
	}
}

// searchSetup builds the engine and retrieval request shared by the search
// and facets commands.
func searchSetup(c *cli.Context) (*juris.Engine, juris.Request, error) {
	query := strings.Join(c.Args().Slice(), " ")

	classifierHost := c.String("classifier-host")
	if classifierHost == "" {
		classifierHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithClassifierHost(classifierHost),
		ai.WithClassifierModel(c.String("classifier-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, juris.Request{}, fmt.Errorf("invalid AI configuration: %w", err)
	}

	depthHint, err := parseDepthHint(c.String("depth"))
	if err != nil {
		return nil, juris.Request{}, err
	}
	temporal, err := parseTemporalHint(c.String("temporal"))
	if err != nil {
		return nil, juris.Request{}, err
	}
	intent, err := parseIntent(c.String("intent"))
	if err != nil {
		return nil, juris.Request{}, err
	}

	engine, err := juris.New(c.String("db"), juris.WithAIConfig(aiConfig))
	if err != nil {
		return nil, juris.Request{}, fmt.Errorf("failed to open store: %w", err)
	}

	return engine, juris.Request{
		Text:           query,
		Jurisdiction:   c.String("jurisdiction"),
		PracticeArea:   c.String("practice"),
		DepthHint:      depthHint,
		Temporal:       temporal,
		Intent:         intent,
		Limit:          c.Int("limit"),
		DrillDepth:     c.Int("drill-depth"),
		SkipClassifier: c.Bool("no-classify"),
	}, nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer backend.Close()

	repo := badger.NewDocumentRepository(backend)
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Store: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func parseDepthHint(value string) (core.DepthHint, error) {
	switch strings.ToLower(value) {
	case "auto", "":
		return core.DepthHintAuto, nil
	case "shallow":
		return core.DepthHintShallow, nil
	case "deep":
		return core.DepthHintDeep, nil
	default:
		return 0, fmt.Errorf("invalid depth hint %q: must be one of auto, shallow, deep", value)
	}
}

func parseTemporalHint(value string) (core.TemporalHint, error) {
	switch strings.ToLower(value) {
	case "none", "":
		return core.TemporalNone, nil
	case "recent":
		return core.TemporalRecent, nil
	case "historical":
		return core.TemporalHistorical, nil
	default:
		return 0, fmt.Errorf("invalid temporal hint %q: must be one of none, recent, historical", value)
	}
}

func parseIntent(value string) (core.SearchIntent, error) {
	switch strings.ToLower(value) {
	case "general", "":
		return core.IntentGeneral, nil
	case "discovery":
		return core.IntentDiscovery, nil
	case "deep_dive":
		return core.IntentDeepDive, nil
	default:
		return 0, fmt.Errorf("invalid intent %q: must be one of general, discovery, deep_dive", value)
	}
}

func pathOrDash(path core.HierarchyPath) string {
	if path.IsZero() {
		return "-"
	}
	return path.String()
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
