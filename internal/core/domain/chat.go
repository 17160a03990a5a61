package domain

import "time"

// Role identifies the author of a chat message.
type Role string

// Message roles. These match the wire roles of the conversational provider.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one turn's worth of text from either side of the
// conversation. A model message is mutable only while Streaming is true;
// once the stream finishes or is cancelled the message is frozen.
type ChatMessage struct {
	// ID is the unique identifier for the message.
	ID string

	// Role is who produced the message.
	Role Role

	// Text is the message content. For a streaming model message this is
	// the cumulative text received so far.
	Text string

	// Streaming is true while the model is still producing this message.
	Streaming bool

	// CitedSources is the snapshot of sources that made up the grounding
	// context for this message, in citation-number order. Citation [1]
	// resolves to CitedSources[0].
	CitedSources []Source

	// CreatedAt is when the message was first appended to history.
	CreatedAt time.Time
}

// Citation maps a 1-based citation number to the source it refers to
// within a single grounding context.
type Citation struct {
	Number     int
	SourceID   string
	SourceName string
}

// SynthesisFormat selects the shape of a cross-source synthesis.
type SynthesisFormat string

// Available synthesis formats.
const (
	SynthesisSummary    SynthesisFormat = "summary"
	SynthesisOutline    SynthesisFormat = "outline"
	SynthesisFlashcards SynthesisFormat = "flashcards"
)

// IsValid returns true if the synthesis format is recognised.
func (f SynthesisFormat) IsValid() bool {
	switch f {
	case SynthesisSummary, SynthesisOutline, SynthesisFlashcards:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the format.
func (f SynthesisFormat) Description() string {
	switch f {
	case SynthesisSummary:
		return "Summary (prose overview of all sources)"
	case SynthesisOutline:
		return "Outline (hierarchical bullet structure)"
	case SynthesisFlashcards:
		return "Flashcards (question/answer pairs)"
	default:
		return "Unknown"
	}
}
