package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driven"
)

// Ensure sourceStore implements the interface.
var _ driven.SourceStore = (*sourceStore)(nil)

// sourceStore is the SQLite-backed SourceStore. Vectors are not
// persisted; the stored indexed flag is only a hint that the startup
// index rebuild confirms or corrects.
type sourceStore struct {
	store *Store
}

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	if source.ID == "" {
		return domain.ErrInvalidInput
	}

	summary, err := json.Marshal(source.Summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, kind, ref, content, status, excluded, indexed, summary, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, kind = excluded.kind, ref = excluded.ref,
			content = excluded.content, status = excluded.status,
			excluded = excluded.excluded, indexed = excluded.indexed,
			summary = excluded.summary`,
		source.ID, source.Name, string(source.Kind), source.Ref, source.Content,
		string(source.Status), boolToInt(source.Excluded), boolToInt(source.Indexed),
		string(summary), source.AddedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, kind, ref, content, status, excluded, indexed, summary, added_at
		FROM sources WHERE id = ?`, id)

	source, err := scanSource(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return source, nil
}

// List returns all sources in the order they were added.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, kind, ref, content, status, excluded, indexed, summary, added_at
		FROM sources ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		source, err := scanSource(rows.Scan)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}
	return sources, rows.Err()
}

// Delete removes a source. No-op if absent.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// Clear removes all sources.
func (s *sourceStore) Clear(ctx context.Context) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM sources`)
	if err != nil {
		return fmt.Errorf("clearing sources: %w", err)
	}
	return nil
}

// scanSource reads one source row via the given scan function.
func scanSource(scan func(dest ...any) error) (*domain.Source, error) {
	var (
		source            domain.Source
		kind, status      string
		excluded, indexed int
		summary, addedAt  string
	)

	err := scan(&source.ID, &source.Name, &kind, &source.Ref, &source.Content,
		&status, &excluded, &indexed, &summary, &addedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	source.Kind = domain.SourceKind(kind)
	source.Status = domain.SourceStatus(status)
	source.Excluded = excluded != 0
	source.Indexed = indexed != 0

	if summary != "" && summary != "null" {
		if err := json.Unmarshal([]byte(summary), &source.Summary); err != nil {
			return nil, fmt.Errorf("decoding summary for %s: %w", source.ID, err)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
		source.AddedAt = t
	}

	return &source, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
