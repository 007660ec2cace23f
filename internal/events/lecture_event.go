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

package events

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// LectureEvent records one pass of a lecture recording through the
// processing pipeline, from upload to extracted notes.
type LectureEvent struct {
	UUID      string    `json:"uuid"`
	RequestID string    `json:"request_id"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`

	// Audio metadata
	AudioHash  string `json:"audio_hash"`
	AudioBytes int    `json:"audio_bytes"`

	// Processing results
	Transcript string `json:"transcricao"`
	Title      string `json:"titulo"`

	ProcessingTime int64  `json:"processing_time_ms"`
	Success        bool   `json:"success"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// NewLectureEvent creates a LectureEvent with a generated UUID and the
// current timestamp.
func NewLectureEvent(requestID, filename string) *LectureEvent {
	return &LectureEvent{
		UUID:      NewID(),
		RequestID: requestID,
		Filename:  filename,
		Timestamp: time.Now(),
		Success:   true,
	}
}

// NewID generates a simple UUID without external dependencies.
func NewID() string {
	b := make([]byte, 16)
	_, err := io.ReadFull(rand.Reader, b)
	if err != nil {
		// Fallback to timestamp-based ID if random fails
		return fmt.Sprintf("eduvox-%d", time.Now().UnixNano())
	}

	// Set version (4) and variant bits
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}

// SetAudio records the size and a SHA-256 hash of the uploaded audio
// for duplicate detection.
func (le *LectureEvent) SetAudio(audio []byte) {
	sum := sha256.Sum256(audio)
	le.AudioHash = hex.EncodeToString(sum[:])
	le.AudioBytes = len(audio)
}

// SetResult marks the event as processed and records how long it took.
func (le *LectureEvent) SetResult(transcript, title string) {
	le.Transcript = transcript
	le.Title = title
	le.ProcessingTime = time.Since(le.Timestamp).Milliseconds()
}

// SetError marks the event as failed with an error message.
func (le *LectureEvent) SetError(err error) {
	le.Success = false
	le.ErrorMessage = err.Error()
	le.ProcessingTime = time.Since(le.Timestamp).Milliseconds()
}

// String returns a human-readable representation of the event.
func (le *LectureEvent) String() string {
	return fmt.Sprintf("LectureEvent{UUID: %s, Filename: %s, Title: %q, Success: %t}",
		le.UUID, le.Filename, le.Title, le.Success)
}
