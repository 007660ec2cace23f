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

package lectures

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTitle is used whenever a lecture has no usable title at all.
const DefaultTitle = "Aula_Sem_Titulo"

const (
	derivedTitlePrefix = "Aula - "
	derivedTitleMaxLen = 20
)

// Record is the durable five-field summary of one processed lecture.
// The wire field names stay Portuguese to match the browser layer.
type Record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"titulo"`
	Presenter string    `json:"professor"`
	Topics    string    `json:"topicos"`
	Summary   string    `json:"resumo"`
	Notes     string    `json:"notas"`
	CreatedAt time.Time `json:"data_criacao"`
}

// Normalize fills defaults so a record is always fully populated before it
// is rendered or persisted. Identity and timestamp are store-assigned.
func (r *Record) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = DefaultTitle
	}
}

// String returns a human-readable representation of the record
func (r *Record) String() string {
	return fmt.Sprintf("Record{ID: %d, Title: %q, Presenter: %q}", r.ID, r.Title, r.Presenter)
}

// Notes is the structured payload extracted from one transcript. Every
// field has a defined fallback so the struct is always fully populated,
// even when the model output could not be parsed.
type Notes struct {
	Title     string   `json:"titulo"`
	Presenter string   `json:"professor"`
	Topics    string   `json:"topicos"`
	Summary   string   `json:"resumo"`
	Notes     string   `json:"notas"`
	Materials []string `json:"materiais"`
}

// Record converts extracted notes into a persistable lecture record.
func (n Notes) Record() *Record {
	rec := &Record{
		Title:     n.Title,
		Presenter: n.Presenter,
		Topics:    n.Topics,
		Summary:   n.Summary,
		Notes:     n.Notes,
	}
	rec.Normalize()
	return rec
}

// ExtractionResult is the transient output of one transcription+extraction
// call. It is never persisted; the browser holds it until the user edits
// the fields and triggers export.
type ExtractionResult struct {
	Transcript string `json:"transcricao"`
	Notes      Notes  `json:"dados"`
}

// DeriveTitle builds a fallback lecture title from an uploaded file name,
// used when extraction is unavailable or returned nothing usable.
func DeriveTitle(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return DefaultTitle
	}

	runes := []rune(base)
	if len(runes) > derivedTitleMaxLen {
		base = string(runes[:derivedTitleMaxLen])
	}
	return derivedTitlePrefix + base
}
