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

// Package pipeline orchestrates the lecture processing flow: uploaded
// audio through transcription and note extraction, and edited notes
// through persistence and PDF export.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
	"github.com/eduvoxlabs/eduvox-hub/internal/events"
	"github.com/eduvoxlabs/eduvox-hub/internal/export"
	"github.com/eduvoxlabs/eduvox-hub/internal/extract"
	"github.com/eduvoxlabs/eduvox-hub/internal/lectures"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
	"github.com/eduvoxlabs/eduvox-hub/internal/storage"
	"github.com/eduvoxlabs/eduvox-hub/internal/transcribe"
)

// EventPublisher publishes lecture lifecycle events. Publishing is
// best-effort: the pipeline logs failures and carries on.
type EventPublisher interface {
	PublishLectureProcessed(event *events.LectureEvent) error
	PublishLectureExported(lectureID int64, title, artifact string) error
}

// Pipeline wires the transcriber, extractor, store and renderer into
// the operations the HTTP handlers expose. One Pipeline is shared by
// all requests.
type Pipeline struct {
	transcriber transcribe.Transcriber
	extractor   extract.Extractor
	store       *storage.LectureStore
	renderer    *export.PDFRenderer
	publisher   EventPublisher // nil when messaging is disabled
	cfg         *config.Config
}

// New assembles a Pipeline from already-constructed components.
// publisher may be nil.
func New(cfg *config.Config, transcriber transcribe.Transcriber, extractor extract.Extractor,
	store *storage.LectureStore, renderer *export.PDFRenderer, publisher EventPublisher) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		extractor:   extractor,
		store:       store,
		renderer:    renderer,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// TranscribeAndExtract transcribes the uploaded audio and extracts
// structured lecture notes from the transcript.
//
// Transcription failure is fatal for the call and is returned as a
// *transcribe.Error. Extraction failure is not: the full transcript is
// still returned, with the note fields defaulted so the user can edit
// them by hand.
func (p *Pipeline) TranscribeAndExtract(ctx context.Context, audio []byte, filename string) (*lectures.ExtractionResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("arquivo de áudio vazio")
	}

	event := events.NewLectureEvent(events.NewID(), filename)
	event.SetAudio(audio)

	tempPath, err := p.writeTempAudio(audio)
	if err != nil {
		return nil, fmt.Errorf("failed to stage audio for transcription: %w", err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logging.LogWarn("Failed to remove temp audio file",
				zap.String("path", tempPath), zap.Error(err))
		}
	}()

	logging.LogPipelineStage(event.RequestID, "transcribe",
		zap.String("filename", filename),
		zap.Int("audio_bytes", len(audio)),
	)
	transcript, err := p.transcriber.TranscribeFile(ctx, tempPath)
	if err != nil {
		event.SetError(err)
		return nil, &transcribe.Error{Err: err}
	}

	logging.LogPipelineStage(event.RequestID, "extract",
		zap.Int("transcript_chars", len(transcript)),
	)
	prompt := extract.BuildNotesPrompt(truncateRunes(transcript, p.cfg.Extraction.MaxPromptChars))

	var notes lectures.Notes
	response, err := p.extractor.Generate(ctx, prompt)
	if err != nil {
		logging.LogError(err, "Note extraction failed, falling back to defaults",
			zap.String("request_id", event.RequestID))
		notes = extract.DefaultNotes(filename)
	} else {
		notes = extract.ParseNotes(response, filename)
	}

	event.SetResult(transcript, notes.Title)
	p.publishProcessed(event)

	return &lectures.ExtractionResult{
		Transcript: transcript,
		Notes:      notes,
	}, nil
}

// Export persists the edited lecture notes and renders them as a PDF.
// The document is written first; a lecture only reaches the database
// once its artifact exists. Returns the new row id and the generated
// file name.
func (p *Pipeline) Export(rec *lectures.Record) (int64, string, error) {
	if rec == nil {
		return 0, "", fmt.Errorf("lecture record is required")
	}
	rec.Normalize()

	artifact, err := p.renderer.Render(rec)
	if err != nil {
		return 0, "", fmt.Errorf("failed to generate pdf: %w", err)
	}

	id, err := p.store.Insert(rec)
	if err != nil {
		return 0, "", fmt.Errorf("failed to save lecture: %w", err)
	}

	p.publishExported(id, rec.Title, artifact)
	return id, artifact, nil
}

// FindByTitle returns all stored lectures whose title matches exactly,
// oldest first. An empty slice means no match.
func (p *Pipeline) FindByTitle(title string) ([]*lectures.Record, error) {
	return p.store.FindByTitle(title)
}

// Highlights asks the extractor for a final plain-text summary of the
// most important points, given the user-edited topics and summary.
func (p *Pipeline) Highlights(ctx context.Context, topics, summary string) (string, error) {
	response, err := p.extractor.Generate(ctx, extract.BuildHighlightsPrompt(topics, summary))
	if err != nil {
		return "", fmt.Errorf("failed to generate final summary: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// writeTempAudio stages uploaded audio under a unique name so
// concurrent uploads never collide.
func (p *Pipeline) writeTempAudio(audio []byte) (string, error) {
	name := fmt.Sprintf("eduvox_%s.wav", events.NewID())
	path := filepath.Join(p.cfg.STT.TempDir, name)
	if err := os.WriteFile(path, audio, 0600); err != nil {
		return "", err
	}
	return path, nil
}

func (p *Pipeline) publishProcessed(event *events.LectureEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishLectureProcessed(event); err != nil {
		logging.LogWarn("Failed to publish lecture processed event", zap.Error(err))
	}
}

func (p *Pipeline) publishExported(id int64, title, artifact string) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishLectureExported(id, title, artifact); err != nil {
		logging.LogWarn("Failed to publish lecture exported event", zap.Error(err))
	}
}

// truncateRunes limits the transcript handed to the extraction prompt.
// Rune-based so a multibyte character is never split.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
