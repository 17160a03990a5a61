// Package chunker splits normalised document text into overlapping,
// sentence-boundary-aware segments for embedding and retrieval.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// boundaryWindow is how far around the tentative cut point we look for a
// sentence terminator, in characters, on each side.
const boundaryWindow = 100

// sentence terminators, searched including their trailing space so the
// terminator stays inside the chunk. Newline-terminated sentences become
// space-terminated during whitespace normalisation.
var terminators = []string{". ", "! ", "? "}

// Chunker splits text into fixed-size chunks, preferring to cut at the
// sentence boundary nearest to the target size.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// An overlap at or above the chunk size would stall the walk; clamp
	// before the loop ever runs.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk splits text into ordered, trimmed, non-empty segments. Whitespace
// runs are collapsed to single spaces first, so offsets below are over the
// normalised text. Consecutive chunks overlap by up to the configured
// overlap; less when a sentence break shifted the boundary.
func (c *Chunker) Chunk(text string) []string {
	normalised := normaliseWhitespace(text)
	if normalised == "" {
		return nil
	}

	length := len(normalised)
	var chunks []string

	start := 0
	for start < length {
		end := start + c.chunkSize
		if end >= length {
			end = length
		} else {
			end = nearestBoundary(normalised, start, end)
		}

		piece := strings.TrimSpace(normalised[start:end])
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end >= length {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Monotonic progress: never re-cover the same window.
			next = end
		}
		start = next
	}

	return chunks
}

// nearestBoundary searches a symmetric window around the tentative end for
// sentence terminators and returns the cut point whose distance to the
// tentative end is smallest. The terminator and its trailing space or
// newline stay inside the chunk. Only cuts past start are candidates, so
// the walk always advances even when the chunk size is smaller than the
// search window. Falls back to the raw tentative end when no terminator
// qualifies.
func nearestBoundary(text string, start, tentative int) int {
	lo := tentative - boundaryWindow
	if lo < 0 {
		lo = 0
	}
	hi := tentative + boundaryWindow
	if hi > len(text) {
		hi = len(text)
	}

	window := text[lo:hi]
	best := -1
	bestDist := boundaryWindow + 1

	for _, term := range terminators {
		offset := 0
		for {
			idx := strings.Index(window[offset:], term)
			if idx < 0 {
				break
			}
			// Cut just after the terminator and its trailing character.
			cut := lo + offset + idx + len(term)
			if cut <= start {
				offset += idx + 1
				continue
			}
			dist := cut - tentative
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				bestDist = dist
				best = cut
			}
			offset += idx + 1
		}
	}

	if best < 0 {
		return tentative
	}
	return best
}

// normaliseWhitespace collapses runs of whitespace to single spaces and
// trims the ends.
func normaliseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
