package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

func newTestDB(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), dir)
}

func TestSourceStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	sources := db.SourceStore()
	ctx := context.Background()

	src := domain.Source{
		ID:      "s1",
		Name:    "Notes",
		Kind:    domain.SourceKindText,
		Ref:     "/tmp/notes.txt",
		Content: "full text",
		Status:  domain.SourceStatusReady,
		Indexed: true,
		Summary: &domain.SourceSummary{
			Summary:   "Short note.",
			KeyPoints: []string{"one", "two"},
		},
		AddedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, sources.Save(ctx, src))

	got, err := sources.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, src.Name, got.Name)
	assert.Equal(t, src.Kind, got.Kind)
	assert.Equal(t, src.Ref, got.Ref)
	assert.Equal(t, src.Content, got.Content)
	assert.Equal(t, src.Status, got.Status)
	assert.True(t, got.Indexed)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "Short note.", got.Summary.Summary)
	assert.Equal(t, []string{"one", "two"}, got.Summary.KeyPoints)
	assert.True(t, src.AddedAt.Equal(got.AddedAt))
}

func TestSourceStore_SaveWithoutID(t *testing.T) {
	db := newTestDB(t)

	err := db.SourceStore().Save(context.Background(), domain.Source{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSourceStore_SaveIsUpsert(t *testing.T) {
	db := newTestDB(t)
	sources := db.SourceStore()
	ctx := context.Background()

	src := domain.Source{ID: "s1", Name: "Notes", Kind: domain.SourceKindText,
		Status: domain.SourceStatusIngesting, AddedAt: time.Now()}
	require.NoError(t, sources.Save(ctx, src))

	src.Status = domain.SourceStatusReady
	src.Excluded = true
	require.NoError(t, sources.Save(ctx, src))

	got, err := sources.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceStatusReady, got.Status)
	assert.True(t, got.Excluded)

	all, err := sources.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSourceStore_GetMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.SourceStore().Get(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_ListOrderedByAddedAt(t *testing.T) {
	db := newTestDB(t)
	sources := db.SourceStore()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, sources.Save(ctx, domain.Source{ID: "later", Kind: domain.SourceKindText,
		Status: domain.SourceStatusReady, AddedAt: base.Add(time.Minute)}))
	require.NoError(t, sources.Save(ctx, domain.Source{ID: "earlier", Kind: domain.SourceKindText,
		Status: domain.SourceStatusReady, AddedAt: base}))

	all, err := sources.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "earlier", all[0].ID)
	assert.Equal(t, "later", all[1].ID)
}

func TestSourceStore_DeleteAndClear(t *testing.T) {
	db := newTestDB(t)
	sources := db.SourceStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "s1", Kind: domain.SourceKindText,
		Status: domain.SourceStatusReady, AddedAt: time.Now()}))

	require.NoError(t, sources.Delete(ctx, "s1"))
	_, err := sources.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting again is a no-op.
	require.NoError(t, sources.Delete(ctx, "s1"))

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "s2", Kind: domain.SourceKindText,
		Status: domain.SourceStatusReady, AddedAt: time.Now()}))
	require.NoError(t, sources.Clear(ctx))

	all, err := sources.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTranscriptStore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	transcript := db.TranscriptStore()
	ctx := context.Background()

	user := domain.ChatMessage{
		ID:        "m1",
		Role:      domain.RoleUser,
		Text:      "why is the sky blue?",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	reply := domain.ChatMessage{
		ID:        "m2",
		Role:      domain.RoleModel,
		Streaming: true,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, transcript.Append(ctx, user))
	require.NoError(t, transcript.Append(ctx, reply))

	reply.Text = "scattering [1]"
	reply.Streaming = false
	reply.CitedSources = []domain.Source{{ID: "s1", Name: "Physics notes", Kind: domain.SourceKindText}}
	require.NoError(t, transcript.Update(ctx, reply))

	messages, err := transcript.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "why is the sky blue?", messages[0].Text)
	assert.True(t, user.CreatedAt.Equal(messages[0].CreatedAt))

	assert.Equal(t, "scattering [1]", messages[1].Text)
	require.Len(t, messages[1].CitedSources, 1)
	assert.Equal(t, "s1", messages[1].CitedSources[0].ID)
	assert.Equal(t, "Physics notes", messages[1].CitedSources[0].Name)
	assert.Equal(t, domain.SourceKindText, messages[1].CitedSources[0].Kind)
}

func TestTranscriptStore_AppendWithoutID(t *testing.T) {
	db := newTestDB(t)

	err := db.TranscriptStore().Append(context.Background(), domain.ChatMessage{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTranscriptStore_UpdateMissing(t *testing.T) {
	db := newTestDB(t)

	err := db.TranscriptStore().Update(context.Background(), domain.ChatMessage{ID: "nope"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTranscriptStore_Clear(t *testing.T) {
	db := newTestDB(t)
	transcript := db.TranscriptStore()
	ctx := context.Background()

	require.NoError(t, transcript.Append(ctx, domain.ChatMessage{
		ID: "m1", Role: domain.RoleUser, Text: "hi", CreatedAt: time.Now()}))
	require.NoError(t, transcript.Clear(ctx))

	messages, err := transcript.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.SourceStore().Save(ctx, domain.Source{
		ID: "s1", Name: "Notes", Kind: domain.SourceKindText,
		Status: domain.SourceStatusReady, AddedAt: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.SourceStore().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Notes", got.Name)
}
