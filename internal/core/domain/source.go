package domain

import "time"

// SourceKind identifies how a source's text was obtained.
type SourceKind string

// Available source kinds.
const (
	// SourceKindText is a plain text or markdown file.
	SourceKindText SourceKind = "text"

	// SourceKindPDF is a PDF document.
	SourceKindPDF SourceKind = "pdf"

	// SourceKindURL is a fetched web page.
	SourceKindURL SourceKind = "url"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindText, SourceKindPDF, SourceKindURL:
		return true
	default:
		return false
	}
}

// SourceStatus tracks a source through its ingestion lifecycle.
type SourceStatus string

// Source lifecycle states. Ingesting transitions to exactly one of
// Ready or Error; both are terminal.
const (
	SourceStatusIngesting SourceStatus = "ingesting"
	SourceStatusReady     SourceStatus = "ready"
	SourceStatusError     SourceStatus = "error"
)

// Source represents a user-added document or web page.
// It is tracked independently of the chunks derived from it; the ID is
// immutable and is the foreign key for every derived chunk.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable display name.
	Name string

	// Kind identifies the extraction path (text, pdf, url).
	Kind SourceKind

	// Ref is the original location (file path or URL).
	Ref string

	// Content is the full extracted plain text. When Status is
	// SourceStatusError it holds the error text instead.
	Content string

	// Status is the ingestion lifecycle state.
	Status SourceStatus

	// Excluded removes the source from retrieval and grounding without
	// deleting its chunks. Toggling back re-includes it without re-embedding.
	Excluded bool

	// Indexed reports whether the source's chunks are in the vector store.
	// A ready but unindexed source is still usable via full-context grounding.
	Indexed bool

	// Summary is the one-shot analysis produced at ingestion, if available.
	Summary *SourceSummary

	// AddedAt is when the source was added.
	AddedAt time.Time
}

// Usable returns true if the source can contribute to a grounding context.
func (s *Source) Usable() bool {
	return s.Status == SourceStatusReady && !s.Excluded
}

// SourceSummary is the structured analysis of a newly ingested source.
type SourceSummary struct {
	// Summary is a short prose description of the source.
	Summary string

	// KeyPoints are the main takeaways, in document order.
	KeyPoints []string
}
