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
	"encoding/json"
	"strings"

	"github.com/eduvoxlabs/eduvox-hub/internal/lectures"
)

// unavailableNote is surfaced when the extraction service itself could
// not be reached; the transcript is still returned to the caller.
const unavailableNote = "Resumo automático indisponível no momento. Edite os campos manualmente."

// DefaultNotes returns the fully-populated fallback used when the
// extraction call fails outright. The title is derived from the uploaded
// file name so the user always has something to edit.
func DefaultNotes(filename string) lectures.Notes {
	return lectures.Notes{
		Title:     lectures.DeriveTitle(filename),
		Notes:     unavailableNote,
		Materials: []string{},
	}
}

// ParseNotes parses a model response into lecture notes. The response is
// untrusted input: it may wrap the JSON in prose, nest it under a "dados"
// key, omit fields, or not be JSON at all. ParseNotes never fails — a
// syntactically invalid response falls back to defaults with the raw text
// surfaced as a best-effort summary, and missing fields default
// individually so a partially-correct extraction is not thrown away.
func ParseNotes(response, filename string) lectures.Notes {
	response = strings.TrimSpace(response)

	// Models sometimes wrap the object in prose; keep only the outermost braces
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || start >= end {
		notes := DefaultNotes(filename)
		if response != "" {
			notes.Summary = response
		}
		return notes
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response[start:end+1]), &fields); err != nil {
		notes := DefaultNotes(filename)
		notes.Summary = response
		return notes
	}

	// Some models answer {"dados": {...}} instead of a flat object
	if inner, ok := fields["dados"]; ok {
		var unwrapped map[string]json.RawMessage
		if err := json.Unmarshal(inner, &unwrapped); err == nil {
			fields = unwrapped
		}
	}

	notes := lectures.Notes{
		Title:     stringField(fields, "titulo"),
		Presenter: stringField(fields, "professor"),
		Topics:    stringField(fields, "topicos"),
		Summary:   stringField(fields, "resumo"),
		Notes:     stringField(fields, "notas"),
		Materials: flattenStrings(fields["materiais"]),
	}
	if notes.Title == "" {
		notes.Title = lectures.DeriveTitle(filename)
	}
	return notes
}

// stringField reads one expected field with an empty-string default. A
// field the model returned as a list of strings is joined rather than
// discarded.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	if parts := flattenStrings(raw); len(parts) > 0 {
		return strings.Join(parts, "; ")
	}
	return ""
}

// flattenStrings normalizes a value that should be a flat list of strings
// but may arrive nested one or more levels deep. Never an error: anything
// unrecognized is dropped.
func flattenStrings(raw json.RawMessage) []string {
	flat := []string{}
	if len(raw) == 0 {
		return flat
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return flat
	}

	var walk func(v interface{})
	walk = func(v interface{}) {
		switch item := v.(type) {
		case string:
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				flat = append(flat, trimmed)
			}
		case []interface{}:
			for _, inner := range item {
				walk(inner)
			}
		}
	}
	walk(value)

	return flat
}
