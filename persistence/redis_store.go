package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/workflow"
)

// RedisCheckpointStore keeps checkpoints in Redis, one string value per
// (workflow type, thread id) plus a set per workflow type for thread
// listing. Suitable for distributed deployments.
type RedisCheckpointStore struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisCheckpointStore connects to Redis and verifies the connection.
func NewRedisCheckpointStore(config RedisConfig, logger *zap.Logger) (*RedisCheckpointStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "hrflow:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCheckpointStore{
		client:    client,
		keyPrefix: prefix + "checkpoint:",
		logger:    logger,
	}, nil
}

// Close closes the underlying connection pool.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

// Ping checks store health.
func (s *RedisCheckpointStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisCheckpointStore) dataKey(workflowType, threadID string) string {
	return s.keyPrefix + "data:" + workflowType + ":" + threadID
}

func (s *RedisCheckpointStore) threadsKey(workflowType string) string {
	return s.keyPrefix + "threads:" + workflowType
}

func (s *RedisCheckpointStore) Save(ctx context.Context, cp *workflow.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.dataKey(cp.WorkflowType, cp.ThreadID), data, 0)
	pipe.SAdd(ctx, s.threadsKey(cp.WorkflowType), cp.ThreadID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *RedisCheckpointStore) Load(ctx context.Context, workflowType, threadID string) (*workflow.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.dataKey(workflowType, threadID)).Bytes()
	if err == redis.Nil {
		return nil, workflow.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp workflow.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

func (s *RedisCheckpointStore) Delete(ctx context.Context, workflowType, threadID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.dataKey(workflowType, threadID))
	pipe.SRem(ctx, s.threadsKey(workflowType), threadID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

func (s *RedisCheckpointStore) Threads(ctx context.Context, workflowType string) ([]string, error) {
	threads, err := s.client.SMembers(ctx, s.threadsKey(workflowType)).Result()
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return threads, nil
}
