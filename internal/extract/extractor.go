/*
 * This file is part of EduVox (https://github.com/eduvoxlabs/eduvox).
 * Copyright (C) 2025 EduVox Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
)

// Extractor defines the text-generation capability used to derive
// structured lecture notes from a transcript.
type Extractor interface {
	// Generate sends a prompt and returns the model's raw text response
	Generate(ctx context.Context, prompt string) (string, error)
}

// GroqExtractor calls an OpenAI-compatible chat-completions endpoint.
// Decoding favors determinism over creativity: low temperature, bounded
// output length.
type GroqExtractor struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewGroqExtractor creates the extraction client. Constructed once at
// startup and reused across all requests.
func NewGroqExtractor(creds config.GroqCredentials, cfg config.ExtractionConfig) (*GroqExtractor, error) {
	if creds.APIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required for extraction")
	}

	client := openai.NewClient(
		option.WithAPIKey(creds.APIKey),
		option.WithBaseURL(creds.BaseURL),
	)

	return &GroqExtractor{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate implements the Extractor interface
func (g *GroqExtractor) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(g.temperature),
		MaxTokens:   openai.Int(int64(g.maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("extraction request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("extraction API returned no choices")
	}

	response := strings.TrimSpace(completion.Choices[0].Message.Content)

	logging.LogPipelineStage("", "extract",
		zap.String("model", g.model),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("response_chars", len(response)))

	return response, nil
}
