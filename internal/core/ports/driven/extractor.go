package driven

import (
	"context"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// TextExtractor turns a raw input reference (file path or URL) into plain
// text plus a display name. Failures should be wrapped in
// domain.ExtractionError so the message is user-presentable.
type TextExtractor interface {
	// Kind identifies the source kind this extractor produces.
	Kind() domain.SourceKind

	// Extract reads the referenced input and returns its plain text and
	// a display name (file base name or page title).
	Extract(ctx context.Context, ref string) (text string, name string, err error)
}

// ExtractorRegistry resolves the extractor for a given input.
type ExtractorRegistry interface {
	// ForFile returns the extractor for a local file path, chosen by
	// extension. Returns domain.ErrInvalidInput for unsupported types.
	ForFile(path string) (TextExtractor, error)

	// ForURL returns the extractor for web pages.
	ForURL() TextExtractor
}
