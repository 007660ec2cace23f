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
	"io"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/lectures"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
	"github.com/eduvoxlabs/eduvox-hub/internal/security"
)

// exportRequest is the edited-notes payload from the study page.
type exportRequest struct {
	Title     string `json:"titulo"`
	Presenter string `json:"professor"`
	Topics    string `json:"topicos"`
	Summary   string `json:"resumo"`
	Notes     string `json:"notas"`
}

// highlightsRequest asks for a final summary of edited topics and resumo.
type highlightsRequest struct {
	Topics  string `json:"topicos"`
	Summary string `json:"resumo"`
}

// handleTranscribe accepts a multipart audio upload under the "file"
// field and responds with the transcript and extracted notes.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "envio inválido: esperado multipart com o campo 'file'")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "arquivo de áudio não enviado")
		return
	}
	defer func() { _ = file.Close() }()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "falha ao ler o arquivo de áudio")
		return
	}

	filename := security.SanitizeLogInput(header.Filename)
	logging.Sugar.Infow("📼 Audio upload received",
		"filename", filename,
		"bytes", len(audio),
	)

	result, err := s.pipeline.TranscribeAndExtract(r.Context(), audio, header.Filename)
	if err != nil {
		logging.LogError(err, "Transcription pipeline failed", zap.String("filename", filename))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, result); err != nil {
		logging.Sugar.Errorw("Failed to write transcription response", "error", err)
	}
}

// handleExport persists edited notes and generates the PDF document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req exportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	rec := &lectures.Record{
		Title:     req.Title,
		Presenter: req.Presenter,
		Topics:    req.Topics,
		Summary:   req.Summary,
		Notes:     req.Notes,
	}

	id, artifact, err := s.pipeline.Export(rec)
	if err != nil {
		logging.LogError(err, "Export failed", zap.String("titulo", security.SanitizeLogInput(req.Title)))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Sugar.Infow("📄 Lecture exported",
		"id", id,
		"artifact", artifact,
	)

	w.Header().Set("Content-Type", "application/json")
	response := map[string]string{
		"pdf_gerado": filepath.ToSlash(filepath.Join(s.cfg.Export.OutputDir, artifact)),
		"mensagem":   "PDF exportado e dados salvos com sucesso.",
	}
	if err := writeJSON(w, response); err != nil {
		logging.Sugar.Errorw("Failed to write export response", "error", err)
	}
}

// handleQuery returns every stored lecture with the exact given title.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	title := r.URL.Query().Get("titulo")
	if title == "" {
		writeError(w, http.StatusBadRequest, "parâmetro 'titulo' é obrigatório")
		return
	}

	records, err := s.pipeline.FindByTitle(title)
	if err != nil {
		logging.LogError(err, "Query failed", zap.String("titulo", security.SanitizeLogInput(title)))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if len(records) == 0 {
		w.WriteHeader(http.StatusNotFound)
		_ = writeJSON(w, map[string]string{"mensagem": "Nenhuma aula encontrada com esse título."})
		return
	}
	if err := writeJSON(w, map[string]interface{}{"aulas": records}); err != nil {
		logging.Sugar.Errorw("Failed to write query response", "error", err)
	}
}

// handleHighlights generates a final plain-text summary from edited
// topics and resumo.
func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req highlightsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corpo JSON inválido")
		return
	}

	summary, err := s.pipeline.Highlights(r.Context(), req.Topics, req.Summary)
	if err != nil {
		logging.LogError(err, "Highlights generation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, map[string]string{"resumo_final": summary}); err != nil {
		logging.Sugar.Errorw("Failed to write highlights response", "error", err)
	}
}

// writeError sends a JSON error payload with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = writeJSON(w, map[string]string{"erro": message})
}
