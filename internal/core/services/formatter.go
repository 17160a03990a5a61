package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

// blockSeparator ends each source block in the grounding context.
const blockSeparator = "---"

// ContextFormatter renders retrieved chunks into a numbered,
// citation-ready grounding block. Citation numbers follow the order in
// which each distinct source first appears in the input, so the UI can
// derive identical numbering when resolving a citation marker back to a
// source.
type ContextFormatter struct{}

// NewContextFormatter creates a context formatter.
func NewContextFormatter() *ContextFormatter {
	return &ContextFormatter{}
}

// Format groups chunks by source, preserving first-encounter order, and
// renders one numbered block per source. Within a block, chunk texts keep
// their retrieval order (they are not re-sorted by chunk index). The
// returned citations are in numbering order: citations[0] is [1].
func (f *ContextFormatter) Format(chunks []domain.Chunk) (string, []domain.Citation) {
	if len(chunks) == 0 {
		return "", nil
	}

	var order []string
	grouped := make(map[string][]domain.Chunk)
	names := make(map[string]string)

	for _, ch := range chunks {
		if _, seen := grouped[ch.SourceID]; !seen {
			order = append(order, ch.SourceID)
			names[ch.SourceID] = ch.SourceName
		}
		grouped[ch.SourceID] = append(grouped[ch.SourceID], ch)
	}

	var b strings.Builder
	citations := make([]domain.Citation, 0, len(order))

	for i, sourceID := range order {
		number := i + 1
		citations = append(citations, domain.Citation{
			Number:     number,
			SourceID:   sourceID,
			SourceName: names[sourceID],
		})

		fmt.Fprintf(&b, "[%d] %s\n", number, names[sourceID])
		for _, ch := range grouped[sourceID] {
			b.WriteString(ch.Text)
			b.WriteString("\n\n")
		}
		b.WriteString(blockSeparator)
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n", citations
}

// FormatSources renders whole sources as the grounding context, used when
// retrieval is unavailable (no embedding provider, or no source indexed).
// Numbering follows the input order, same rule as Format.
func (f *ContextFormatter) FormatSources(sources []domain.Source) (string, []domain.Citation) {
	if len(sources) == 0 {
		return "", nil
	}

	var b strings.Builder
	citations := make([]domain.Citation, 0, len(sources))

	for i, src := range sources {
		number := i + 1
		citations = append(citations, domain.Citation{
			Number:     number,
			SourceID:   src.ID,
			SourceName: src.Name,
		})

		fmt.Fprintf(&b, "[%d] %s\n", number, src.Name)
		b.WriteString(src.Content)
		b.WriteString("\n\n")
		b.WriteString(blockSeparator)
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n", citations
}
