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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/juris/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryClassifier implements ai.QueryClassifier using OpenAI-compatible chat APIs.
type QueryClassifier struct {
	client        llms.Model
	minConfidence int
	logger        *slog.Logger
}

// classification is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type classification struct {
	Jurisdiction string `json:"jurisdiction"`
	PracticeArea string `json:"practice_area"`
	Intent       string `json:"intent"`
	Depth        string `json:"depth"`
	Temporal     string `json:"temporal"`
	Confidence   int    `json:"confidence"`
}

// newQueryClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryClassifier(config *ai.Config) (*QueryClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken("none"),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryClassifier{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewQueryClassifier creates a new query classifier using the provided configuration.
//
// Returns ai.QueryClassifier interface to enforce abstraction.
func NewQueryClassifier(config *ai.Config) (ai.QueryClassifier, error) {
	return newQueryClassifier(config)
}

// ClassifyQuery derives taxonomy placements and planning hints from a query
// using an LLM. Placements below the minimum confidence are discarded, so a
// vague query degrades to an unrestricted search instead of a wrong one.
func (c *QueryClassifier) ClassifyQuery(ctx context.Context, query string) (ai.QueryAnalysis, error) {
	query = scrubString(query)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(query),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result classification
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return ai.QueryAnalysis{}, err
		}

		if len(response.Choices) < 1 {
			c.logger.Debug("no choices returned from model")
			return ai.QueryAnalysis{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
		return ai.QueryAnalysis{}, lastErr
	}

	analysis := ai.QueryAnalysis{
		Jurisdiction: strings.TrimSpace(result.Jurisdiction),
		PracticeArea: strings.TrimSpace(result.PracticeArea),
		Intent:       normalizeLabel(result.Intent, ai.IntentLabels),
		Depth:        normalizeLabel(result.Depth, ai.DepthLabels),
		Temporal:     normalizeLabel(result.Temporal, ai.TemporalLabels),
		Confidence:   result.Confidence,
	}

	// Low-confidence taxonomy placements are worse than none.
	if analysis.Confidence < c.minConfidence {
		c.logger.Debug("discarding low-confidence placements",
			"confidence", analysis.Confidence,
			"jurisdiction", analysis.Jurisdiction,
			"practice_area", analysis.PracticeArea)
		analysis.Jurisdiction = ""
		analysis.PracticeArea = ""
	}

	return analysis, nil
}

// normalizeLabel lowercases a label and falls back to the vocabulary's first
// (default) entry when the model produced something outside it.
func normalizeLabel(value string, vocabulary []string) string {
	value = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "_")
	if slices.Contains(vocabulary, value) {
		return value
	}
	return vocabulary[0]
}
