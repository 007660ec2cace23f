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

package logging

import (
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"
)

func TestInitialize(t *testing.T) {
	originalLevel := os.Getenv("LOG_LEVEL")
	originalFormat := os.Getenv("LOG_FORMAT")
	defer func() {
		_ = os.Setenv("LOG_LEVEL", originalLevel)
		_ = os.Setenv("LOG_FORMAT", originalFormat)
	}()

	tests := []struct {
		name      string
		logLevel  string
		logFormat string
	}{
		{name: "Default values", logLevel: "", logFormat: ""},
		{name: "Info level console format", logLevel: "info", logFormat: "console"},
		{name: "Debug level JSON format", logLevel: "debug", logFormat: "json"},
		{name: "Invalid format defaults to console", logLevel: "info", logFormat: "invalid"},
		{name: "Invalid level defaults to info", logLevel: "invalid", logFormat: "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				_ = os.Setenv("LOG_LEVEL", tt.logLevel)
			} else {
				_ = os.Unsetenv("LOG_LEVEL")
			}
			if tt.logFormat != "" {
				_ = os.Setenv("LOG_FORMAT", tt.logFormat)
			} else {
				_ = os.Unsetenv("LOG_FORMAT")
			}

			if err := Initialize(); err != nil {
				t.Errorf("Initialize() unexpected error: %v", err)
				return
			}

			if Logger == nil {
				t.Error("Logger should not be nil after initialization")
			}
			if Sugar == nil {
				t.Error("Sugar should not be nil after initialization")
			}

			Close()
		})
	}
}

func TestHelpersWithNilLogger(t *testing.T) {
	// Helpers must be safe to call before Initialize runs
	saved := Logger
	savedSugar := Sugar
	Logger = nil
	Sugar = nil
	defer func() {
		Logger = saved
		Sugar = savedSugar
	}()

	LogPipelineStage("req-1", "transcribe")
	LogDatabaseOperation("insert", "aulas")
	LogExportOperation("documentos/aula.pdf")
	LogNATSEvent("eduvox.lectures.processed", "publish")
	LogError(errors.New("boom"), "something failed")
	LogWarn("something odd")
	Sync()
}

func TestHelpersWithInitializedLogger(t *testing.T) {
	if err := InitializeWithConfig(LogConfig{Level: "debug", Format: "console"}); err != nil {
		t.Fatalf("InitializeWithConfig() error: %v", err)
	}
	defer Close()

	LogPipelineStage("req-2", "extract", zap.Int("transcript_chars", 42))
	LogDatabaseOperation("query", "aulas", zap.String("titulo", "Aula de Teste"))
	LogExportOperation("documentos/Aula de Teste.pdf", zap.Int64("id", 1))
	LogError(errors.New("boom"), "failure with fields", zap.String("stage", "export"))
}
