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

// Package server exposes the EduVox hub over HTTP: the study web pages
// plus the transcription, export, query and summary API endpoints.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
	"github.com/eduvoxlabs/eduvox-hub/internal/export"
	"github.com/eduvoxlabs/eduvox-hub/internal/extract"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
	"github.com/eduvoxlabs/eduvox-hub/internal/messaging"
	"github.com/eduvoxlabs/eduvox-hub/internal/pipeline"
	"github.com/eduvoxlabs/eduvox-hub/internal/storage"
	"github.com/eduvoxlabs/eduvox-hub/internal/transcribe"
)

//go:embed web/*.html
var webPages embed.FS

// maxUploadBytes caps the multipart memory buffer for audio uploads.
const maxUploadBytes = 32 << 20

// Server represents the EduVox hub HTTP server.
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server

	pipeline    *pipeline.Pipeline
	db          *storage.Database
	transcriber transcribe.Transcriber
	nats        *messaging.NATSService

	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs the full hub: database, transcriber, extractor,
// renderer and (optionally) NATS, wired into one shared pipeline.
func New(cfg *config.Config) (*Server, error) {
	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Database.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	creds := config.LoadGroqCredentials()

	transcriber, err := transcribe.New(cfg.STT, creds)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	extractor, err := extract.NewGroqExtractor(creds, cfg.Extraction)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	renderer, err := export.NewPDFRenderer(cfg.Export.OutputDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	var nats *messaging.NATSService
	var publisher pipeline.EventPublisher
	if cfg.NATS.Enabled {
		nats = messaging.NewNATSService(cfg.NATS)
		if err := nats.Connect(); err != nil {
			// Events are best-effort; the hub works without a broker
			logging.LogWarn("NATS unavailable, lecture events disabled", zap.Error(err))
			nats = nil
		} else {
			publisher = nats
		}
	}

	store := storage.NewLectureStore(db)
	pipe := pipeline.New(cfg, transcriber, extractor, store, renderer, publisher)

	s := newWithPipeline(cfg, pipe)
	s.db = db
	s.transcriber = transcriber
	s.nats = nats
	return s, nil
}

// newWithPipeline wires routing around an already-built pipeline. Tests
// use it to inject fakes.
func newWithPipeline(cfg *config.Config, pipe *pipeline.Pipeline) *Server {
	mux := http.NewServeMux()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:      cfg,
		mux:      mux,
		pipeline: pipe,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.server = &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      s.mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.routes()
	return s
}

// Start runs the HTTP server until Stop is called.
func (s *Server) Start() error {
	logging.Sugar.Infow("🚀 EduVox hub starting",
		"addr", s.server.Addr,
		"stt_backend", s.cfg.STT.Backend,
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server and closes shared resources.
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down EduVox hub")

	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.nats != nil {
		s.nats.Close()
	}
	if s.transcriber != nil {
		if err := s.transcriber.Close(); err != nil {
			logging.LogWarn("Failed to close transcriber", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logging.LogWarn("Failed to close database", zap.Error(err))
		}
	}

	logging.Sugar.Infow("✅ EduVox hub shut down successfully")
	return nil
}

// routes sets up HTTP routing.
func (s *Server) routes() {
	// Web pages
	s.mux.HandleFunc("/", s.pageHandler("web/index.html"))
	s.mux.HandleFunc("/app", s.pageHandler("web/app.html"))
	s.mux.HandleFunc("/faq", s.pageHandler("web/faq.html"))
	s.mux.HandleFunc("/preco", s.pageHandler("web/preco.html"))
	s.mux.HandleFunc("/funcionalidades", s.pageHandler("web/funcionalidades.html"))

	// API
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/transcrever", s.handleTranscribe)
	s.mux.HandleFunc("/exportar", s.handleExport)
	s.mux.HandleFunc("/consultar", s.handleQuery)
	s.mux.HandleFunc("/diagnosticar", s.handleHighlights)
}

// pageHandler serves one embedded HTML page. The root path is strict so
// unknown paths 404 instead of silently falling through to the landing
// page.
func (s *Server) pageHandler(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if page == "web/index.html" && r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := webPages.ReadFile(page)
		if err != nil {
			http.Error(w, "page not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}

// handleHealth provides system health information.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now(),
		"stt_backend": s.cfg.STT.Backend,
	}

	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			health["status"] = "degraded"
			health["database"] = err.Error()
		} else {
			health["database"] = "ok"
		}
	}
	if s.nats != nil {
		health["nats_connected"] = s.nats.IsConnected()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := writeJSON(w, health); err != nil {
		logging.Sugar.Errorw("Failed to write health response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) error {
	return json.NewEncoder(w).Encode(data)
}

func readJSON(r *http.Request, data interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	defer func() { _ = r.Body.Close() }()

	return json.Unmarshal(body, data)
}
