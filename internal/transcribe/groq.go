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

package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
)

// GroqTranscriber transcribes audio through any OpenAI-compatible
// transcription endpoint. Groq serves whisper models behind the same API.
type GroqTranscriber struct {
	client   openai.Client
	model    string
	language string
}

// NewGroqTranscriber creates the hosted transcription backend. The client
// is constructed once and reused across all requests.
func NewGroqTranscriber(creds config.GroqCredentials, model, language string) (*GroqTranscriber, error) {
	if creds.APIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required for the groq backend")
	}
	if model == "" {
		model = "whisper-large-v3-turbo"
	}

	client := openai.NewClient(
		option.WithAPIKey(creds.APIKey),
		option.WithBaseURL(creds.BaseURL),
	)

	return &GroqTranscriber{
		client:   client,
		model:    model,
		language: language,
	}, nil
}

// TranscribeFile implements the Transcriber interface
func (g *GroqTranscriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	start := time.Now()

	params := openai.AudioTranscriptionNewParams{
		File:           file,
		Model:          openai.AudioModel(g.model),
		ResponseFormat: openai.AudioResponseFormatJSON,
	}
	if g.language != "" {
		params.Language = param.NewOpt(g.language)
	}

	response, err := g.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	if response == nil {
		return "", fmt.Errorf("transcription API returned nil response")
	}

	transcript := strings.TrimSpace(response.Text)

	logging.LogPipelineStage("", "transcribe",
		zap.String("backend", "groq"),
		zap.String("model", g.model),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("transcript_chars", len(transcript)))

	return transcript, nil
}

// Close cleans up resources
func (g *GroqTranscriber) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
