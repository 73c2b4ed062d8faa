package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/hrflow/workflow"
)

func TestFileCheckpointStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileCheckpointStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	state := workflow.NewState("recruitment", "thread-1")
	state.CandidateID = "c-9"
	state.AddMessage("step", "screened")
	require.NoError(t, store.Save(ctx, workflow.NewCheckpoint(state)))

	cp, err := store.Load(ctx, "recruitment", "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "recruitment", cp.WorkflowType)
	assert.Equal(t, "c-9", cp.State.CandidateID)
	require.Len(t, cp.State.Messages, 1)
}

func TestFileCheckpointStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewFileCheckpointStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "recruitment", "nope")
	assert.ErrorIs(t, err, workflow.ErrCheckpointNotFound)
}

func TestFileCheckpointStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileCheckpointStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, workflow.NewCheckpoint(workflow.NewState("recruitment", "t-1"))))

	reopened, err := NewFileCheckpointStore(dir, nil)
	require.NoError(t, err)
	cp, err := reopened.Load(ctx, "recruitment", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", cp.ThreadID)
}

func TestFileCheckpointStore_DeleteAndThreads(t *testing.T) {
	t.Parallel()

	store, err := NewFileCheckpointStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, workflow.NewCheckpoint(workflow.NewState("recruitment", "a"))))
	require.NoError(t, store.Save(ctx, workflow.NewCheckpoint(workflow.NewState("recruitment", "b"))))
	require.NoError(t, store.Save(ctx, workflow.NewCheckpoint(workflow.NewState("employee_onboarding", "c"))))

	threads, err := store.Threads(ctx, "recruitment")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, threads)

	require.NoError(t, store.Delete(ctx, "recruitment", "a"))
	require.NoError(t, store.Delete(ctx, "recruitment", "never-existed"))

	threads, err = store.Threads(ctx, "recruitment")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, threads)

	none, err := store.Threads(ctx, "performance_review")
	require.NoError(t, err)
	assert.Empty(t, none)
}
