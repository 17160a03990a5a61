package extract

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.TextExtractor = (*PDF)(nil)

// PDF extracts the plain text of a PDF document.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Kind identifies the source kind this extractor produces.
func (e *PDF) Kind() domain.SourceKind {
	return domain.SourceKindPDF
}

// Extract reads the PDF and returns its concatenated page text with the
// base name (minus extension) as the display name.
func (e *PDF) Extract(_ context.Context, path string) (string, string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", "", &domain.ExtractionError{Ref: path, Err: err}
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", "", &domain.ExtractionError{Ref: path, Err: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", "", &domain.ExtractionError{Ref: path, Err: err}
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", "", &domain.ExtractionError{
			Ref: path,
			Err: errors.New("no extractable text (scanned or image-only PDF)"),
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return text, name, nil
}
