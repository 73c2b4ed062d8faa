package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCheckpointNotFound is returned by CheckpointStore.Load when no
// checkpoint exists for the given workflow type and thread id.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoint is the persisted snapshot of one execution, keyed by
// (workflow type, thread id). Only the latest snapshot per key is kept.
type Checkpoint struct {
	ID           string    `json:"id"`
	WorkflowType string    `json:"workflow_type"`
	ThreadID     string    `json:"thread_id"`
	State        *State    `json:"state"`
	SavedAt      time.Time `json:"saved_at"`
}

// NewCheckpoint snapshots state under its workflow type and thread id.
func NewCheckpoint(state *State) *Checkpoint {
	return &Checkpoint{
		ID:           uuid.NewString(),
		WorkflowType: state.WorkflowType,
		ThreadID:     state.ExecutionID,
		State:        state,
		SavedAt:      time.Now().UTC(),
	}
}

// CheckpointStore persists checkpoints. Implementations must be safe for
// concurrent writes to distinct (workflowType, threadID) keys.
type CheckpointStore interface {
	// Save stores cp as the latest snapshot for its key.
	Save(ctx context.Context, cp *Checkpoint) error

	// Load returns the latest snapshot, or ErrCheckpointNotFound.
	Load(ctx context.Context, workflowType, threadID string) (*Checkpoint, error)

	// Delete removes the snapshot for the key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, workflowType, threadID string) error

	// Threads lists the thread ids with a snapshot for the workflow type.
	Threads(ctx context.Context, workflowType string) ([]string, error)
}

// CloneState returns a deep copy of s via JSON round trip, so a stored
// snapshot cannot alias the state an execution keeps mutating.
func CloneState(s *State) (*State, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone state: %w", err)
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone state: %w", err)
	}
	return &out, nil
}

// MemoryCheckpointStore is the in-memory CheckpointStore, for development
// and tests.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*Checkpoint
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{checkpoints: make(map[string]*Checkpoint)}
}

func checkpointKey(workflowType, threadID string) string {
	return workflowType + "/" + threadID
}

func (s *MemoryCheckpointStore) Save(ctx context.Context, cp *Checkpoint) error {
	state, err := CloneState(cp.State)
	if err != nil {
		return err
	}
	stored := *cp
	stored.State = state

	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[checkpointKey(cp.WorkflowType, cp.ThreadID)] = &stored
	return nil
}

func (s *MemoryCheckpointStore) Load(ctx context.Context, workflowType, threadID string) (*Checkpoint, error) {
	s.mu.RLock()
	cp, ok := s.checkpoints[checkpointKey(workflowType, threadID)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCheckpointNotFound
	}

	state, err := CloneState(cp.State)
	if err != nil {
		return nil, err
	}
	out := *cp
	out.State = state
	return &out, nil
}

func (s *MemoryCheckpointStore) Delete(ctx context.Context, workflowType, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, checkpointKey(workflowType, threadID))
	return nil
}

func (s *MemoryCheckpointStore) Threads(ctx context.Context, workflowType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var threads []string
	for _, cp := range s.checkpoints {
		if cp.WorkflowType == workflowType {
			threads = append(threads, cp.ThreadID)
		}
	}
	return threads, nil
}
