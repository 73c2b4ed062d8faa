package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory_CreateDefaults(t *testing.T) {
	t.Parallel()

	dir := NewMemoryDirectory()
	ctx := context.Background()

	tests := []struct {
		kind       RecordKind
		wantStatus string
	}{
		{KindEmployee, "active"},
		{KindCandidate, "new"},
		{KindJob, "active"},
		{KindInterview, "scheduled"},
		{KindReview, "scheduled"},
		{KindOnboarding, "in_progress"},
	}
	for _, tt := range tests {
		id, err := dir.Create(ctx, tt.kind, map[string]any{"name": "x"})
		require.NoError(t, err)
		rec, err := dir.Get(ctx, tt.kind, id)
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, rec["status"], "kind %s", tt.kind)
		assert.Equal(t, id, rec["id"])
	}
}

func TestMemoryDirectory_StatusNotOverwritten(t *testing.T) {
	t.Parallel()

	dir := NewMemoryDirectory()
	ctx := context.Background()

	id, err := dir.Create(ctx, KindCandidate, map[string]any{"status": "shortlisted"})
	require.NoError(t, err)
	rec, err := dir.Get(ctx, KindCandidate, id)
	require.NoError(t, err)
	assert.Equal(t, "shortlisted", rec["status"])
}

func TestMemoryDirectory_UpdateAndSearch(t *testing.T) {
	t.Parallel()

	dir := NewMemoryDirectory()
	ctx := context.Background()

	id, err := dir.Create(ctx, KindEmployee, map[string]any{
		"name":       "Sam Okafor",
		"department": "Sales",
		"title":      "Account Executive",
	})
	require.NoError(t, err)

	require.NoError(t, dir.Update(ctx, KindEmployee, id, map[string]any{"department": "Engineering"}))

	hits, err := dir.Search(ctx, KindEmployee, "engineering")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Sam Okafor", hits[0]["name"])

	none, err := dir.Search(ctx, KindEmployee, "sales")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.ErrorIs(t, dir.Update(ctx, KindEmployee, "missing", nil), ErrRecordNotFound)
	_, err = dir.Get(ctx, KindEmployee, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestMemoryDirectory_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	dir := NewMemoryDirectory()
	ctx := context.Background()

	id, err := dir.Create(ctx, KindEmployee, map[string]any{"name": "Ada"})
	require.NoError(t, err)

	rec, err := dir.Get(ctx, KindEmployee, id)
	require.NoError(t, err)
	rec["name"] = "mutated"

	again, err := dir.Get(ctx, KindEmployee, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again["name"])
}

func TestNewCheckpointStore_Factory(t *testing.T) {
	t.Parallel()

	store, err := NewCheckpointStore(StoreConfig{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, store)

	store, err = NewCheckpointStore(StoreConfig{Type: StoreTypeFile, BaseDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.NotNil(t, store)

	_, err = NewCheckpointStore(StoreConfig{Type: "mongodb"}, nil)
	assert.Error(t, err)
}
