// Package persistence provides durable checkpoint and interaction-log
// backends behind the interfaces the router and workflow engine consume.
//
// Supported backends:
//   - Memory: for development and testing (default)
//   - File: for single-node deployments
//   - Redis: for distributed deployments
//   - SQLite: for single-node deployments that also need queryable
//     interaction history
package persistence

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/workflow"
)

// StoreType selects the storage backend.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeSQLite StoreType = "sqlite"
)

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	PoolSize  int    `json:"pool_size" yaml:"pool_size"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// SQLiteConfig holds settings for the SQLite backend.
type SQLiteConfig struct {
	Path string `json:"path" yaml:"path"`
}

// StoreConfig selects and configures a storage backend.
type StoreConfig struct {
	Type    StoreType     `json:"type" yaml:"type"`
	BaseDir string        `json:"base_dir" yaml:"base_dir"`
	Redis   RedisConfig   `json:"redis" yaml:"redis"`
	SQLite  SQLiteConfig  `json:"sqlite" yaml:"sqlite"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// NewCheckpointStore creates a checkpoint store for the configured
// backend. An empty type defaults to memory.
func NewCheckpointStore(config StoreConfig, logger *zap.Logger) (workflow.CheckpointStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch config.Type {
	case StoreTypeMemory, "":
		return workflow.NewMemoryCheckpointStore(), nil
	case StoreTypeFile:
		return NewFileCheckpointStore(config.BaseDir, logger)
	case StoreTypeRedis:
		return NewRedisCheckpointStore(config.Redis, logger)
	case StoreTypeSQLite:
		store, err := OpenSQLiteStore(config.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported checkpoint store type: %s", config.Type)
	}
}
