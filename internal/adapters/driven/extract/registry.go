// Package extract provides text extraction adapters: plain text and
// markdown files, PDF documents, and web pages. Every extractor returns
// extracted plain text plus a display name; failures are wrapped in
// domain.ExtractionError so they are user-presentable.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry resolves extractors by file extension or input type.
type Registry struct {
	plaintext *PlainText
	pdf       *PDF
	url       *URL
}

// NewRegistry creates a registry with the default extractors.
func NewRegistry() *Registry {
	return &Registry{
		plaintext: NewPlainText(),
		pdf:       NewPDF(),
		url:       NewURL(),
	}
}

// ForFile returns the extractor for a local file path, chosen by
// extension.
func (r *Registry) ForFile(path string) (driven.TextExtractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", ".text":
		return r.plaintext, nil
	case ".pdf":
		return r.pdf, nil
	default:
		return nil, &domain.ExtractionError{
			Ref: path,
			Err: fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, filepath.Ext(path)),
		}
	}
}

// ForURL returns the web page extractor.
func (r *Registry) ForURL() driven.TextExtractor {
	return r.url
}
