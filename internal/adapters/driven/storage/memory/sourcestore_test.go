package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

func TestSourceStore_SaveAndGet(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	src := domain.Source{ID: "s1", Name: "Notes", Status: domain.SourceStatusReady}
	require.NoError(t, store.Save(ctx, src))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Name)

	// Save is an upsert.
	src.Excluded = true
	require.NoError(t, store.Save(ctx, src))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Excluded)
}

func TestSourceStore_GetMissing(t *testing.T) {
	store := NewSourceStore()

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_ListOrderedByAddedAt(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.Save(ctx, domain.Source{ID: "later", AddedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, domain.Source{ID: "earlier", AddedAt: base}))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "earlier", sources[0].ID)
	assert.Equal(t, "later", sources[1].ID)
}

func TestSourceStore_DeleteAndClear(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Source{ID: "s1"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.Source{ID: "s2"}))
	require.NoError(t, store.Clear(ctx))

	sources, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestTranscriptStore_AppendUpdateList(t *testing.T) {
	store := NewTranscriptStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.ChatMessage{ID: "m1", Role: domain.RoleUser, Text: "hi"}))
	require.NoError(t, store.Append(ctx, domain.ChatMessage{ID: "m2", Role: domain.RoleModel, Streaming: true}))

	require.NoError(t, store.Update(ctx, domain.ChatMessage{ID: "m2", Role: domain.RoleModel, Text: "hello"}))

	messages, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "hello", messages[1].Text)
	assert.False(t, messages[1].Streaming)
}

func TestTranscriptStore_UpdateMissing(t *testing.T) {
	store := NewTranscriptStore()

	err := store.Update(context.Background(), domain.ChatMessage{ID: "nope"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTranscriptStore_Clear(t *testing.T) {
	store := NewTranscriptStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, domain.ChatMessage{ID: "m1"}))
	require.NoError(t, store.Clear(ctx))

	messages, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
