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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
	"github.com/eduvoxlabs/eduvox-hub/internal/export"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
	"github.com/eduvoxlabs/eduvox-hub/internal/pipeline"
	"github.com/eduvoxlabs/eduvox-hub/internal/storage"
)

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) TranscribeFile(context.Context, string) (string, error) {
	return f.transcript, f.err
}

func (f *fakeTranscriber) Close() error { return nil }

type fakeExtractor struct {
	response string
	err      error
}

func (f *fakeExtractor) Generate(context.Context, string) (string, error) {
	return f.response, f.err
}

func newTestServer(t *testing.T, tr *fakeTranscriber, ex *fakeExtractor) *Server {
	t.Helper()

	require.NoError(t, logging.Initialize())

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
	cfg.STT.Backend = config.BackendGroq
	cfg.STT.TempDir = t.TempDir()
	cfg.Extraction.MaxPromptChars = 3000
	cfg.Export.OutputDir = filepath.Join(t.TempDir(), "documentos")

	db, err := storage.NewDatabase(storage.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "aulas.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	renderer, err := export.NewPDFRenderer(cfg.Export.OutputDir)
	require.NoError(t, err)

	pipe := pipeline.New(cfg, tr, ex, storage.NewLectureStore(db), renderer, nil)
	s := newWithPipeline(cfg, pipe)
	s.db = db
	return s
}

func multipartAudio(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestTranscribeEndpoint(t *testing.T) {
	s := newTestServer(t,
		&fakeTranscriber{transcript: "hoje estudamos frações"},
		&fakeExtractor{response: `{"titulo": "Frações", "professor": "Prof. Dias", "resumo": "Resumo."}`},
	)

	body, contentType := multipartAudio(t, "file", "aula.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcrever", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Transcript string `json:"transcricao"`
		Data       struct {
			Title     string `json:"titulo"`
			Presenter string `json:"professor"`
		} `json:"dados"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "hoje estudamos frações", response.Transcript)
	assert.Equal(t, "Frações", response.Data.Title)
	assert.Equal(t, "Prof. Dias", response.Data.Presenter)
}

func TestTranscribeEndpointMissingFile(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	body, contentType := multipartAudio(t, "wrong_field", "aula.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcrever", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "erro")
}

func TestTranscribeEndpointTranscriptionFailure(t *testing.T) {
	s := newTestServer(t,
		&fakeTranscriber{err: errors.New("stt unavailable")},
		&fakeExtractor{},
	)

	body, contentType := multipartAudio(t, "file", "aula.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcrever", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Contains(t, response["erro"], "stt unavailable")

	// A failed upload must not leave a row behind
	records, err := s.pipeline.FindByTitle("Aula - aula")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTranscribeEndpointExtractionFailureStillOK(t *testing.T) {
	s := newTestServer(t,
		&fakeTranscriber{transcript: "conteúdo"},
		&fakeExtractor{err: errors.New("model overloaded")},
	)

	body, contentType := multipartAudio(t, "file", "aula.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcrever", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response struct {
		Transcript string `json:"transcricao"`
		Data       struct {
			Title string `json:"titulo"`
		} `json:"dados"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "conteúdo", response.Transcript)
	assert.Equal(t, "Aula - aula", response.Data.Title)
}

func TestTranscribeEndpointEmptyUpload(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{transcript: "nunca chamado"}, &fakeExtractor{})

	body, contentType := multipartAudio(t, "file", "aula.wav", nil)
	req := httptest.NewRequest(http.MethodPost, "/transcrever", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.NotEmpty(t, response["erro"])
}

func TestTranscribeEndpointMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/transcrever", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestExportAndQueryRoundTrip(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	payload := `{"titulo": "Aula: Intro?!", "professor": "Prof. Lima", "topicos": "intro", "resumo": "resumo", "notas": "notas"}`
	req := httptest.NewRequest(http.MethodPost, "/exportar", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var exportResponse map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &exportResponse))
	assert.True(t, strings.HasSuffix(exportResponse["pdf_gerado"], "Aula Intro!.pdf"))
	assert.NotEmpty(t, exportResponse["mensagem"])

	// Query the stored row back, twice — idempotent
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/consultar?titulo="+
			"Aula%3A%20Intro%3F%21", nil)
		rr := httptest.NewRecorder()
		s.mux.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var queryResponse struct {
			Lectures []struct {
				Presenter string `json:"professor"`
				Summary   string `json:"resumo"`
			} `json:"aulas"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &queryResponse))
		require.Len(t, queryResponse.Lectures, 1)
		assert.Equal(t, "Prof. Lima", queryResponse.Lectures[0].Presenter)
		assert.Equal(t, "resumo", queryResponse.Lectures[0].Summary)
	}
}

func TestQueryMissingTitle(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/consultar", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQueryNotFound(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/consultar?titulo=Inexistente", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Contains(t, response["mensagem"], "Nenhuma aula encontrada")
}

func TestExportInvalidJSON(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodPost, "/exportar", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHighlightsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{response: "Pontos principais da aula."})

	payload := `{"topicos": "frações", "resumo": "resumo da aula"}`
	req := httptest.NewRequest(http.MethodPost, "/diagnosticar", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "Pontos principais da aula.", response["resumo_final"])
}

func TestHighlightsEndpointFailure(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{err: errors.New("model down")})

	payload := `{"topicos": "t", "resumo": "r"}`
	req := httptest.NewRequest(http.MethodPost, "/diagnosticar", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestWebPages(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "EduVox"},
		{"/app", "EduVox"},
		{"/faq", "FAQ"},
		{"/preco", "Pre"},
		{"/funcionalidades", "Funcionalidades"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			s.mux.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/nao-existe", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeTranscriber{}, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])
}
