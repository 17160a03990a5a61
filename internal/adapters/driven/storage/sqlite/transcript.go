package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

var _ driven.TranscriptStore = (*transcriptStore)(nil)

// transcriptStore persists chat messages through the shared Store
// connection.
type transcriptStore struct {
	store *Store
}

// citedSourceRow is the persisted snapshot of a cited source. Content is
// dropped; a citation only needs identity to resolve on replay.
type citedSourceRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Append stores a new message at the end of the transcript.
func (t *transcriptStore) Append(ctx context.Context, msg domain.ChatMessage) error {
	if msg.ID == "" {
		return domain.ErrInvalidInput
	}

	cited, err := marshalCited(msg.CitedSources)
	if err != nil {
		return err
	}

	_, err = t.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, role, text, cited_sources, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID, string(msg.Role), msg.Text, cited,
		msg.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Update rewrites an existing message by ID.
func (t *transcriptStore) Update(ctx context.Context, msg domain.ChatMessage) error {
	cited, err := marshalCited(msg.CitedSources)
	if err != nil {
		return err
	}

	res, err := t.store.db.ExecContext(ctx, `
		UPDATE messages SET text = ?, cited_sources = ? WHERE id = ?`,
		msg.Text, cited, msg.ID)
	if err != nil {
		return fmt.Errorf("updating message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all messages in append order.
func (t *transcriptStore) List(ctx context.Context) ([]domain.ChatMessage, error) {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT id, role, text, cited_sources, created_at
		FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var (
			msg              domain.ChatMessage
			role             string
			cited, createdAt string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Text, &cited, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.Role(role)

		var citedRows []citedSourceRow
		if err := json.Unmarshal([]byte(cited), &citedRows); err != nil {
			return nil, fmt.Errorf("decoding cited sources: %w", err)
		}
		for _, r := range citedRows {
			msg.CitedSources = append(msg.CitedSources, domain.Source{
				ID:   r.ID,
				Name: r.Name,
				Kind: domain.SourceKind(r.Kind),
			})
		}

		if msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing message timestamp: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Clear removes all messages.
func (t *transcriptStore) Clear(ctx context.Context) error {
	_, err := t.store.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return nil
}

// Close closes the shared database connection.
func (t *transcriptStore) Close() error {
	return t.store.Close()
}

func marshalCited(sources []domain.Source) (string, error) {
	rows := make([]citedSourceRow, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, citedSourceRow{ID: s.ID, Name: s.Name, Kind: string(s.Kind)})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encoding cited sources: %w", err)
	}
	return string(data), nil
}
