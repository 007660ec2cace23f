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

// Package messaging publishes lecture lifecycle events over NATS so
// other services (search indexers, notification bots) can react to
// processed lectures without polling the database.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/config"
	"github.com/eduvoxlabs/eduvox-hub/internal/events"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
)

// NATS subjects for lecture lifecycle events
const (
	SubjectLecturesProcessed = "eduvox.lectures.processed"
	SubjectLecturesExported  = "eduvox.lectures.exported"
)

// ExportedEvent announces that a lecture was persisted and its PDF written.
type ExportedEvent struct {
	LectureID int64  `json:"lecture_id"`
	Title     string `json:"titulo"`
	Artifact  string `json:"pdf_gerado"`
	Timestamp int64  `json:"timestamp"`
}

// NATSService handles NATS messaging for the EduVox system.
type NATSService struct {
	conn *nats.Conn
	cfg  config.NATSConfig
}

// NewNATSService creates a new NATS service instance. No connection is
// made until Connect is called.
func NewNATSService(cfg config.NATSConfig) *NATSService {
	return &NATSService{cfg: cfg}
}

// Connect establishes connection to the NATS server with retry logic.
func (ns *NATSService) Connect() error {
	opts := []nats.Option{
		nats.Name("eduvox-hub"),
		nats.ReconnectWait(ns.cfg.ReconnectWait),
		nats.MaxReconnects(ns.cfg.MaxReconnect),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.LogWarn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.LogNATSEvent("", "reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logging.LogNATSEvent("", "closed")
		}),
	}

	conn, err := nats.Connect(ns.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	logging.LogNATSEvent("", "connected", zap.String("url", conn.ConnectedUrl()))
	return nil
}

// PublishLectureProcessed publishes a pipeline event after a recording
// has been transcribed and its notes extracted.
func (ns *NATSService) PublishLectureProcessed(event *events.LectureEvent) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lecture event: %w", err)
	}

	if err := ns.conn.Publish(SubjectLecturesProcessed, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectLecturesProcessed, err)
	}

	logging.LogNATSEvent(SubjectLecturesProcessed, "published",
		zap.String("uuid", event.UUID),
		zap.String("titulo", event.Title),
	)
	return nil
}

// PublishLectureExported publishes an event after a lecture has been
// saved to the database and its PDF document written.
func (ns *NATSService) PublishLectureExported(lectureID int64, title, artifact string) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	event := ExportedEvent{
		LectureID: lectureID,
		Title:     title,
		Artifact:  artifact,
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal exported event: %w", err)
	}

	if err := ns.conn.Publish(SubjectLecturesExported, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectLecturesExported, err)
	}

	logging.LogNATSEvent(SubjectLecturesExported, "published",
		zap.Int64("lecture_id", lectureID),
		zap.String("titulo", title),
	)
	return nil
}

// SubscribeToProcessed subscribes to lecture-processed events.
func (ns *NATSService) SubscribeToProcessed(handler func(*events.LectureEvent)) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	return ns.conn.Subscribe(SubjectLecturesProcessed, func(msg *nats.Msg) {
		var event events.LectureEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logging.LogError(err, "Error unmarshaling lecture event")
			return
		}
		handler(&event)
	})
}

// IsConnected reports whether the service holds a live connection.
func (ns *NATSService) IsConnected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}

// Close closes the NATS connection.
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
		ns.conn = nil
	}
}
