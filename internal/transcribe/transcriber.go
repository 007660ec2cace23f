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

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
)

// Transcriber defines the interface for speech-to-text backends. The
// backend choice is a configuration decision, not a forked codebase.
type Transcriber interface {
	// TranscribeFile converts the audio file at path to text
	TranscribeFile(ctx context.Context, path string) (string, error)

	// Close cleans up resources
	Close() error
}

// Error marks a transcription failure. Transcription failures are fatal
// for the request, unlike extraction failures which degrade to defaults.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New selects and constructs the configured transcription backend.
func New(cfg config.STTConfig, creds config.GroqCredentials) (Transcriber, error) {
	switch cfg.Backend {
	case config.BackendGroq:
		return NewGroqTranscriber(creds, cfg.Model, cfg.Language)
	case config.BackendWhisper:
		return NewWhisperTranscriber(cfg.WhisperModelPath, cfg.Language)
	default:
		return nil, fmt.Errorf("unknown STT backend: %q", cfg.Backend)
	}
}
