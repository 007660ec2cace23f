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

// Package export renders lecture notes into downloadable PDF documents.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/eduvoxlabs/eduvox-hub/internal/lectures"
	"github.com/eduvoxlabs/eduvox-hub/internal/logging"
	"github.com/eduvoxlabs/eduvox-hub/internal/security"
)

// PDFRenderer writes lecture summaries as single-page-flow A4 documents
// under a fixed output directory.
type PDFRenderer struct {
	outputDir string
}

// NewPDFRenderer creates a renderer rooted at outputDir, creating the
// directory if needed.
func NewPDFRenderer(outputDir string) (*PDFRenderer, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("pdf output directory is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create pdf output directory: %w", err)
	}
	return &PDFRenderer{outputDir: outputDir}, nil
}

// OutputDir returns the directory documents are written to.
func (r *PDFRenderer) OutputDir() string {
	return r.outputDir
}

// Render writes the lecture as a PDF named after its title and returns
// the file name of the generated document. Characters that are illegal
// in file names are stripped from the title first, and a lecture whose
// title strips down to nothing falls back to the placeholder title.
func (r *PDFRenderer) Render(rec *lectures.Record) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("lecture record is required")
	}

	name := security.SanitizeTitle(rec.Title)
	if name == "" {
		name = lectures.DefaultTitle
	}
	filename := name + ".pdf"
	path := filepath.Join(r.outputDir, filename)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// The core fonts are cp1252; translate so Portuguese accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Resumo da Aula"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeSection(pdf, tr, "Título", rec.Title)
	writeSection(pdf, tr, "Professor", rec.Presenter)
	writeSection(pdf, tr, "Tópicos", rec.Topics)
	writeSection(pdf, tr, "Resumo", rec.Summary)
	writeSection(pdf, tr, "Notas", rec.Notes)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}

	logging.LogExportOperation(filename, zap.String("path", path))
	return filename, nil
}

func writeSection(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr(label), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	if value == "" {
		value = "-"
	}
	pdf.MultiCell(0, 6, tr(value), "", "L", false)
	pdf.Ln(2)
}
