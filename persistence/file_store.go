package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/workflow"
)

// FileCheckpointStore keeps one JSON file per (workflow type, thread id)
// under a base directory. Suitable for single-node deployments.
type FileCheckpointStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewFileCheckpointStore creates the base directory if needed.
func NewFileCheckpointStore(baseDir string, logger *zap.Logger) (*FileCheckpointStore, error) {
	dir := filepath.Join(baseDir, "checkpoints")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCheckpointStore{baseDir: dir, logger: logger}, nil
}

func (s *FileCheckpointStore) path(workflowType, threadID string) string {
	return filepath.Join(s.baseDir, sanitize(workflowType), sanitize(threadID)+".json")
}

// sanitize keeps key material from escaping the store directory.
func sanitize(part string) string {
	part = strings.ReplaceAll(part, string(os.PathSeparator), "_")
	part = strings.ReplaceAll(part, "..", "_")
	return part
}

func (s *FileCheckpointStore) Save(ctx context.Context, cp *workflow.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	path := s.path(cp.WorkflowType, cp.ThreadID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workflow directory: %w", err)
	}

	// Atomic write: temp file then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

func (s *FileCheckpointStore) Load(ctx context.Context, workflowType, threadID string) (*workflow.Checkpoint, error) {
	data, err := os.ReadFile(s.path(workflowType, threadID))
	if os.IsNotExist(err) {
		return nil, workflow.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp workflow.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

func (s *FileCheckpointStore) Delete(ctx context.Context, workflowType, threadID string) error {
	err := os.Remove(s.path(workflowType, threadID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

func (s *FileCheckpointStore) Threads(ctx context.Context, workflowType string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, sanitize(workflowType)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	var threads []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		threads = append(threads, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(threads)
	return threads, nil
}
