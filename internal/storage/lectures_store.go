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

package storage

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/lectures"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
	"github.com/eduvoxlabs/eduvox-hub/internal/security"
)

// sqliteTimeLayout is the format CURRENT_TIMESTAMP produces.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// LectureStore handles database operations for lecture records
type LectureStore struct {
	db *Database
}

// NewLectureStore creates a new lecture store
func NewLectureStore(db *Database) *LectureStore {
	return &LectureStore{db: db}
}

// Insert stores a new lecture record and returns the store-assigned id.
// The creation timestamp is assigned by the database at insert time.
// Inserts are append-only: a duplicate title still creates a new row.
func (s *LectureStore) Insert(rec *lectures.Record) (int64, error) {
	rec.Normalize()

	query := `
		INSERT INTO aulas (titulo, professor, topicos, resumo, notas)
		VALUES (?, ?, ?, ?, ?)`

	result, err := s.db.DB().Exec(query,
		rec.Title, rec.Presenter, rec.Topics, rec.Summary, rec.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lecture record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	rec.ID = id

	logging.LogDatabaseOperation("insert", "aulas",
		zap.Int64("id", id),
		zap.String("titulo", security.SanitizeLogInput(rec.Title)))
	return id, nil
}

// FindByTitle retrieves all lecture records whose title matches exactly,
// case-sensitive, in insertion order. An empty slice means no match; the
// caller decides how to signal not-found.
func (s *LectureStore) FindByTitle(title string) ([]*lectures.Record, error) {
	query := `
		SELECT id, titulo, professor, topicos, resumo, notas, data_criacao
		FROM aulas
		WHERE titulo = ?
		ORDER BY id ASC`

	rows, err := s.db.DB().Query(query, title)
	if err != nil {
		return nil, fmt.Errorf("failed to query lectures by title: %w", err)
	}
	defer rows.Close()

	var records []*lectures.Record
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lecture record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lecture records: %w", err)
	}

	logging.LogDatabaseOperation("query", "aulas",
		zap.String("titulo", security.SanitizeLogInput(title)),
		zap.Int("matches", len(records)))
	return records, nil
}

// Count returns the total number of stored lectures
func (s *LectureStore) Count() (int64, error) {
	var count int64
	err := s.db.DB().QueryRow("SELECT COUNT(*) FROM aulas").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lectures: %w", err)
	}
	return count, nil
}

// scanRecord scans a database row into a lecture record
func (s *LectureStore) scanRecord(rows *sql.Rows) (*lectures.Record, error) {
	var rec lectures.Record
	var createdAt string

	err := rows.Scan(
		&rec.ID, &rec.Title, &rec.Presenter, &rec.Topics,
		&rec.Summary, &rec.Notes, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	// CURRENT_TIMESTAMP stores UTC wall-clock text
	if ts, err := time.Parse(sqliteTimeLayout, createdAt); err == nil {
		rec.CreatedAt = ts
	} else if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = ts
	}

	return &rec, nil
}
