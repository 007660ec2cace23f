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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Transcription backend identifiers
const (
	BackendGroq    = "groq"
	BackendWhisper = "whisper"
)

// Config holds all configuration for the EduVox hub
type Config struct {
	Server     ServerConfig
	STT        STTConfig
	Extraction ExtractionConfig
	Export     ExportConfig
	Database   DatabaseConfig
	NATS       NATSConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// STTConfig holds speech-to-text configuration. Backend selects the
// transcription strategy: "groq" calls the hosted OpenAI-compatible API,
// "whisper" runs a local whisper.cpp model (requires the whisper build tag).
type STTConfig struct {
	Backend          string
	Model            string // hosted model name, e.g. "whisper-large-v3-turbo"
	WhisperModelPath string // path to a ggml model file for the local backend
	Language         string
	TempDir          string // where per-request audio artifacts are written
}

// ExtractionConfig holds the text-generation extraction contract settings
type ExtractionConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	MaxPromptChars int // transcript truncation budget for the prompt
}

// ExportConfig holds PDF export configuration
type ExportConfig struct {
	OutputDir string
}

// DatabaseConfig holds the sqlite store configuration
type DatabaseConfig struct {
	Path string
}

// NATSConfig holds NATS messaging configuration; publishing is optional
// and best-effort when Enabled is false or the server is unreachable.
type NATSConfig struct {
	Enabled       bool
	URL           string
	MaxReconnect  int
	ReconnectWait time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GroqCredentials returns the API key and base URL for the hosted
// transcription/extraction provider, read from the environment.
type GroqCredentials struct {
	APIKey  string
	BaseURL string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnvString("EDUVOX_HOST", "0.0.0.0"),
			Port:         getEnvInt("EDUVOX_PORT", 8000),
			ReadTimeout:  getEnvDuration("EDUVOX_READ_TIMEOUT", 120*time.Second),
			WriteTimeout: getEnvDuration("EDUVOX_WRITE_TIMEOUT", 120*time.Second),
		},
		STT: STTConfig{
			Backend:          getEnvString("EDUVOX_STT_BACKEND", BackendGroq),
			Model:            getEnvString("EDUVOX_STT_MODEL", "whisper-large-v3-turbo"),
			WhisperModelPath: getEnvString("EDUVOX_WHISPER_MODEL_PATH", "./models/ggml-base.bin"),
			Language:         getEnvString("EDUVOX_STT_LANGUAGE", "pt"),
			TempDir:          getEnvString("EDUVOX_TEMP_DIR", os.TempDir()),
		},
		Extraction: ExtractionConfig{
			Model:          getEnvString("EDUVOX_EXTRACTION_MODEL", "llama-3.3-70b-versatile"),
			Temperature:    getEnvFloat64("EDUVOX_EXTRACTION_TEMPERATURE", 0.3),
			MaxTokens:      getEnvInt("EDUVOX_EXTRACTION_MAX_TOKENS", 1024),
			MaxPromptChars: getEnvInt("EDUVOX_MAX_PROMPT_CHARS", 3000),
		},
		Export: ExportConfig{
			OutputDir: getEnvString("EDUVOX_PDF_DIR", "./documentos"),
		},
		Database: DatabaseConfig{
			Path: getEnvString("EDUVOX_DB_PATH", "./data/aulas.db"),
		},
		NATS: NATSConfig{
			Enabled:       getEnvBool("EDUVOX_NATS_ENABLED", false),
			URL:           getEnvString("NATS_URL", "nats://localhost:4222"),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadGroqCredentials reads the hosted provider credentials from the
// environment. The key is required only when a hosted backend is in use,
// so this is separate from Load and validated by the caller.
func LoadGroqCredentials() GroqCredentials {
	return GroqCredentials{
		APIKey:  getEnvString("GROQ_API_KEY", ""),
		BaseURL: getEnvString("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
	}
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.STT.Backend {
	case BackendGroq, BackendWhisper:
	default:
		return fmt.Errorf("unknown STT backend: %q", c.STT.Backend)
	}

	if c.STT.Backend == BackendWhisper && c.STT.WhisperModelPath == "" {
		return fmt.Errorf("whisper backend requires a model path")
	}

	if c.Extraction.MaxPromptChars <= 0 {
		return fmt.Errorf("extraction prompt budget must be positive: %d", c.Extraction.MaxPromptChars)
	}

	if c.Extraction.MaxTokens <= 0 {
		return fmt.Errorf("extraction max tokens must be positive: %d", c.Extraction.MaxTokens)
	}

	if c.Export.OutputDir == "" {
		return fmt.Errorf("export output directory must be provided")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path must be provided")
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("NATS URL must be provided when messaging is enabled")
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
