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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvoxlabs/eduvox-hub/internal/lectures"
)

func TestParseNotesValidResponse(t *testing.T) {
	response := `{
		"titulo": "Tempos Verbais",
		"professor": "Prof. Silva",
		"topicos": "presente; passado",
		"resumo": "Resumo detalhado da aula.",
		"notas": "Revisar exercícios.",
		"materiais": ["[Vídeo](https://example.com/v)", "[Artigo](https://example.com/a)"]
	}`

	notes := ParseNotes(response, "aula.wav")

	assert.Equal(t, "Tempos Verbais", notes.Title)
	assert.Equal(t, "Prof. Silva", notes.Presenter)
	assert.Equal(t, "presente; passado", notes.Topics)
	assert.Equal(t, "Resumo detalhado da aula.", notes.Summary)
	assert.Equal(t, "Revisar exercícios.", notes.Notes)
	assert.Equal(t, []string{"[Vídeo](https://example.com/v)", "[Artigo](https://example.com/a)"}, notes.Materials)
}

func TestParseNotesProseWrappedJSON(t *testing.T) {
	response := "Claro! Aqui estão os dados extraídos:\n" +
		`{"titulo": "Física Quântica", "resumo": "Conceitos básicos."}` +
		"\nEspero ter ajudado!"

	notes := ParseNotes(response, "aula.wav")

	assert.Equal(t, "Física Quântica", notes.Title)
	assert.Equal(t, "Conceitos básicos.", notes.Summary)
}

func TestParseNotesDadosWrapper(t *testing.T) {
	response := `{"dados": {"titulo": "História do Brasil", "professor": "Prof. Costa"}}`

	notes := ParseNotes(response, "aula.wav")

	assert.Equal(t, "História do Brasil", notes.Title)
	assert.Equal(t, "Prof. Costa", notes.Presenter)
}

func TestParseNotesMissingFieldsDefaultIndividually(t *testing.T) {
	response := `{"titulo": "Só o Título"}`

	notes := ParseNotes(response, "aula.wav")

	assert.Equal(t, "Só o Título", notes.Title)
	assert.Empty(t, notes.Presenter)
	assert.Empty(t, notes.Topics)
	assert.Empty(t, notes.Summary)
	assert.Empty(t, notes.Notes)
	require.NotNil(t, notes.Materials)
	assert.Empty(t, notes.Materials)
}

func TestParseNotesInvalidJSONFallsBackWithRawSummary(t *testing.T) {
	response := "A aula fala sobre { tempos verbais. Não consegui gerar JSON }"

	notes := ParseNotes(response, "gravacao_longa.wav")

	// Fully populated despite malformed output
	assert.Equal(t, "Aula - gravacao_longa", notes.Title)
	assert.Equal(t, response, notes.Summary)
	assert.NotEmpty(t, notes.Notes)
	require.NotNil(t, notes.Materials)
}

func TestParseNotesNonJSONResponse(t *testing.T) {
	notes := ParseNotes("desculpe, não entendi a transcrição", "aula.wav")

	assert.Equal(t, "Aula - aula", notes.Title)
	assert.Equal(t, "desculpe, não entendi a transcrição", notes.Summary)
}

func TestParseNotesEmptyResponse(t *testing.T) {
	notes := ParseNotes("", "aula.wav")

	assert.Equal(t, "Aula - aula", notes.Title)
	assert.Empty(t, notes.Summary)
	assert.NotEmpty(t, notes.Notes)
}

func TestParseNotesEmptyTitleDerivedFromFilename(t *testing.T) {
	response := `{"titulo": "   ", "resumo": "Algum resumo."}`

	notes := ParseNotes(response, "quimica_organica.mp3")

	assert.Equal(t, "Aula - quimica_organica", notes.Title)
	assert.Equal(t, "Algum resumo.", notes.Summary)
}

func TestParseNotesNestedMaterialsFlattened(t *testing.T) {
	response := `{
		"titulo": "Aula",
		"materiais": [
			"[Um](https://example.com/1)",
			["[Dois](https://example.com/2)", ["[Três](https://example.com/3)"]],
			42,
			null
		]
	}`

	notes := ParseNotes(response, "aula.wav")

	assert.Equal(t, []string{
		"[Um](https://example.com/1)",
		"[Dois](https://example.com/2)",
		"[Três](https://example.com/3)",
	}, notes.Materials)
}

func TestParseNotesListValuedTextFieldJoined(t *testing.T) {
	response := `{"titulo": "Aula", "topicos": ["presente", "passado", "futuro"]}`

	notes := ParseNotes(response, "aula.wav")

	assert.Equal(t, "presente; passado; futuro", notes.Topics)
}

func TestDefaultNotesFullyPopulated(t *testing.T) {
	notes := DefaultNotes("palestra.ogg")

	assert.Equal(t, "Aula - palestra", notes.Title)
	assert.Equal(t, unavailableNote, notes.Notes)
	require.NotNil(t, notes.Materials)
	assert.Empty(t, notes.Materials)
}

func TestBuildNotesPromptShape(t *testing.T) {
	transcript := "hoje vamos estudar os tempos verbais"
	prompt := BuildNotesPrompt(transcript)

	for _, field := range []string{`"titulo"`, `"professor"`, `"topicos"`, `"resumo"`, `"notas"`, `"materiais"`} {
		assert.Contains(t, prompt, field)
	}
	assert.Contains(t, prompt, "objeto JSON")
	assert.True(t, strings.HasSuffix(prompt, transcript), "transcript must be embedded verbatim at the end")

	// Deterministic: same input, same instruction
	assert.Equal(t, prompt, BuildNotesPrompt(transcript))
}

func TestBuildHighlightsPrompt(t *testing.T) {
	prompt := BuildHighlightsPrompt("tempos verbais", "resumo da aula")

	assert.Contains(t, prompt, "tempos verbais")
	assert.Contains(t, prompt, "resumo da aula")
	assert.Contains(t, prompt, "resumo final")
}

func TestFlattenStringsEdgeCases(t *testing.T) {
	assert.Empty(t, flattenStrings(nil))
	assert.Equal(t, []string{"not a list"}, flattenStrings([]byte(`"not a list"`)))
	assert.Empty(t, flattenStrings([]byte(`{"objeto": true}`)))
}

func TestParseNotesReturnsLecturesNotes(t *testing.T) {
	var notes lectures.Notes = ParseNotes(`{"titulo": "Aula"}`, "aula.wav")
	rec := notes.Record()

	assert.Equal(t, "Aula", rec.Title)
}
