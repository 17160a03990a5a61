package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure PlainText implements the interface.
var _ driven.TextExtractor = (*PlainText)(nil)

// PlainText reads text and markdown files as-is.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Kind identifies the source kind this extractor produces.
func (e *PlainText) Kind() domain.SourceKind {
	return domain.SourceKindText
}

// Extract reads the file and returns its content with the base name as
// the display name.
func (e *PlainText) Extract(_ context.Context, path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", &domain.ExtractionError{Ref: path, Err: err}
	}

	if !utf8.Valid(data) {
		return "", "", &domain.ExtractionError{Ref: path, Err: errors.New("file is not valid UTF-8 text")}
	}

	return string(data), filepath.Base(path), nil
}
