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

//go:build whisper

package transcribe

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
)

// WhisperTranscriber handles speech-to-text using a local whisper.cpp model.
// The model is loaded once at startup and reused across all requests.
type WhisperTranscriber struct {
	model     whisper.Model
	modelPath string
	language  string
}

// NewWhisperTranscriber loads the local whisper model
func NewWhisperTranscriber(modelPath, language string) (*WhisperTranscriber, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("whisper model not found at %s", modelPath)
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}

	logging.Sugar.Infow("🧠 Whisper model loaded", "model_path", modelPath)
	return &WhisperTranscriber{
		model:     model,
		modelPath: modelPath,
		language:  language,
	}, nil
}

// TranscribeFile implements the Transcriber interface. The local backend
// accepts 16 kHz mono WAV input only.
func (wt *WhisperTranscriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	if wt.model == nil {
		return "", fmt.Errorf("whisper model not initialized")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	samples, err := decodeWAV(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode audio: %w", err)
	}

	wctx, err := wt.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}

	if wt.language != "" {
		if err := wctx.SetLanguage(wt.language); err != nil {
			logging.LogWarn("Whisper language not supported, using auto-detect",
				zap.String("language", wt.language))
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("failed to process audio: %w", err)
	}

	// Concatenate segments, trimming each
	var transcript strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		if transcript.Len() > 0 {
			transcript.WriteString(" ")
		}
		transcript.WriteString(strings.TrimSpace(segment.Text))
	}

	return strings.TrimSpace(transcript.String()), nil
}

// Close cleans up the whisper model
func (wt *WhisperTranscriber) Close() error {
	if wt.model != nil {
		wt.model.Close()
	}
	return nil
}

// decodeWAV extracts float32 mono samples from a RIFF/WAVE payload.
// Supports 16-bit PCM and 32-bit IEEE float; stereo is downmixed.
func decodeWAV(data []byte) ([]float32, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a WAV file")
	}

	var (
		audioFormat uint16
		numChannels uint16
		haveFormat  bool
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("malformed fmt chunk")
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			numChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			haveFormat = true
		case "data":
			if !haveFormat {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			return decodeSamples(data[body:body+chunkSize], audioFormat, int(numChannels))
		}

		// Chunks are word-aligned
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	return nil, fmt.Errorf("no data chunk found")
}

func decodeSamples(raw []byte, format uint16, channels int) ([]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	var frames []float32
	switch format {
	case 1: // PCM16
		count := len(raw) / 2
		frames = make([]float32, 0, count/channels)
		for i := 0; i+2*channels <= len(raw); i += 2 * channels {
			var sum float32
			for c := 0; c < channels; c++ {
				sample := int16(binary.LittleEndian.Uint16(raw[i+2*c : i+2*c+2]))
				sum += float32(sample) / 32768.0
			}
			frames = append(frames, sum/float32(channels))
		}
	case 3: // IEEE float32
		count := len(raw) / 4
		frames = make([]float32, 0, count/channels)
		for i := 0; i+4*channels <= len(raw); i += 4 * channels {
			var sum float32
			for c := 0; c < channels; c++ {
				bits := binary.LittleEndian.Uint32(raw[i+4*c : i+4*c+4])
				sum += math.Float32frombits(bits)
			}
			frames = append(frames, sum/float32(channels))
		}
	default:
		return nil, fmt.Errorf("unsupported WAV audio format: %d", format)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("empty audio data")
	}
	return frames, nil
}
