package workflow

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCheckpointStore_SaveLoad(t *testing.T) {
	t.Parallel()

	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	state := NewState("employee_onboarding", "t-1")
	state.EmployeeID = "emp-42"
	state.AddMessage("step", "welcome sent")
	require.NoError(t, store.Save(ctx, NewCheckpoint(state)))

	cp, err := store.Load(ctx, "employee_onboarding", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "employee_onboarding", cp.WorkflowType)
	assert.Equal(t, "t-1", cp.ThreadID)
	assert.Equal(t, "emp-42", cp.State.EmployeeID)
	require.Len(t, cp.State.Messages, 1)
}

func TestMemoryCheckpointStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryCheckpointStore()
	_, err := store.Load(context.Background(), "recruitment", "nope")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestMemoryCheckpointStore_SaveIsolatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	state := NewState("recruitment", "t-iso")
	state.Metadata["round"] = "first"
	require.NoError(t, store.Save(ctx, NewCheckpoint(state)))

	// Mutations after Save must not leak into the stored snapshot.
	state.Metadata["round"] = "second"
	state.AddError("late failure")

	cp, err := store.Load(ctx, "recruitment", "t-iso")
	require.NoError(t, err)
	assert.Equal(t, "first", cp.State.Metadata["round"])
	assert.Empty(t, cp.State.Errors)

	// And mutations of a loaded snapshot must not leak back.
	cp.State.Metadata["round"] = "third"
	again, err := store.Load(ctx, "recruitment", "t-iso")
	require.NoError(t, err)
	assert.Equal(t, "first", again.State.Metadata["round"])
}

func TestMemoryCheckpointStore_LatestWins(t *testing.T) {
	t.Parallel()

	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	first := NewState("recruitment", "t-1")
	first.CurrentStep = "screen_candidate"
	require.NoError(t, store.Save(ctx, NewCheckpoint(first)))

	second := NewState("recruitment", "t-1")
	second.CurrentStep = "schedule_interview"
	require.NoError(t, store.Save(ctx, NewCheckpoint(second)))

	cp, err := store.Load(ctx, "recruitment", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "schedule_interview", cp.State.CurrentStep)
}

func TestMemoryCheckpointStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "recruitment", "never-existed"))

	require.NoError(t, store.Save(ctx, NewCheckpoint(NewState("recruitment", "t-1"))))
	require.NoError(t, store.Delete(ctx, "recruitment", "t-1"))
	_, err := store.Load(ctx, "recruitment", "t-1")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestMemoryCheckpointStore_Threads(t *testing.T) {
	t.Parallel()

	store := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, NewCheckpoint(NewState("recruitment", "a"))))
	require.NoError(t, store.Save(ctx, NewCheckpoint(NewState("recruitment", "b"))))
	require.NoError(t, store.Save(ctx, NewCheckpoint(NewState("employee_onboarding", "c"))))

	threads, err := store.Threads(ctx, "recruitment")
	require.NoError(t, err)
	sort.Strings(threads)
	assert.Equal(t, []string{"a", "b"}, threads)

	none, err := store.Threads(ctx, "performance_review")
	require.NoError(t, err)
	assert.Empty(t, none)
}
