package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BaSui01/hrflow/routing"
	"github.com/BaSui01/hrflow/workflow"
)

type checkpointRow struct {
	ID           uint   `gorm:"primaryKey"`
	WorkflowType string `gorm:"size:64;uniqueIndex:idx_checkpoint_key"`
	ThreadID     string `gorm:"size:128;uniqueIndex:idx_checkpoint_key"`
	CheckpointID string `gorm:"size:64"`
	State        []byte
	SavedAt      time.Time
}

func (checkpointRow) TableName() string { return "checkpoints" }

type interactionRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Request   string
	Handler   string `gorm:"size:64;index"`
	Composed  bool
	Scores    []byte
	UserID    string `gorm:"size:64"`
	SessionID string `gorm:"size:64"`
	CreatedAt time.Time
}

func (interactionRow) TableName() string { return "interactions" }

type directoryRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Kind      string `gorm:"size:32;index"`
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (directoryRow) TableName() string { return "directory_records" }

// SQLiteStore backs checkpoints, the interaction log and the HR
// directory with a single SQLite database. Suitable for single-node
// deployments that need queryable history.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQLiteStore opens (or creates) the database and migrates its
// schema. An empty path defaults to hrflow.db in the working directory.
func OpenSQLiteStore(config SQLiteConfig, logger *zap.Logger) (*SQLiteStore, error) {
	path := config.Path
	if path == "" {
		path = "hrflow.db"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&checkpointRow{}, &interactionRow{}, &directoryRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, cp *workflow.Checkpoint) error {
	state, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("marshal checkpoint state: %w", err)
	}
	row := checkpointRow{
		WorkflowType: cp.WorkflowType,
		ThreadID:     cp.ThreadID,
		CheckpointID: cp.ID,
		State:        state,
		SavedAt:      cp.SavedAt,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workflow_type"}, {Name: "thread_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"checkpoint_id", "state", "saved_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, workflowType, threadID string) (*workflow.Checkpoint, error) {
	var row checkpointRow
	err := s.db.WithContext(ctx).
		Where("workflow_type = ? AND thread_id = ?", workflowType, threadID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workflow.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var state workflow.State
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("decode checkpoint state: %w", err)
	}
	return &workflow.Checkpoint{
		ID:           row.CheckpointID,
		WorkflowType: row.WorkflowType,
		ThreadID:     row.ThreadID,
		State:        &state,
		SavedAt:      row.SavedAt,
	}, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, workflowType, threadID string) error {
	err := s.db.WithContext(ctx).
		Where("workflow_type = ? AND thread_id = ?", workflowType, threadID).
		Delete(&checkpointRow{}).Error
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Threads(ctx context.Context, workflowType string) ([]string, error) {
	var threads []string
	err := s.db.WithContext(ctx).
		Model(&checkpointRow{}).
		Where("workflow_type = ?", workflowType).
		Order("thread_id").
		Pluck("thread_id", &threads).Error
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return threads, nil
}

// LogInteraction records a routing decision for later analysis.
func (s *SQLiteStore) LogInteraction(ctx context.Context, rec *routing.Interaction) error {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		return fmt.Errorf("marshal interaction scores: %w", err)
	}
	row := interactionRow{
		ID:        rec.ID,
		Request:   rec.Request,
		Handler:   rec.Handler,
		Composed:  rec.Composed,
		Scores:    scores,
		UserID:    rec.UserID,
		SessionID: rec.SessionID,
		CreatedAt: rec.CreatedAt,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	return nil
}

// Interactions returns up to limit records, newest first.
func (s *SQLiteStore) Interactions(ctx context.Context, limit int) ([]*routing.Interaction, error) {
	var rows []interactionRow
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	out := make([]*routing.Interaction, 0, len(rows))
	for _, row := range rows {
		rec := &routing.Interaction{
			ID:        row.ID,
			Request:   row.Request,
			Handler:   row.Handler,
			Composed:  row.Composed,
			UserID:    row.UserID,
			SessionID: row.SessionID,
			CreatedAt: row.CreatedAt,
		}
		if len(row.Scores) > 0 {
			if err := json.Unmarshal(row.Scores, &rec.Scores); err != nil {
				return nil, fmt.Errorf("decode interaction scores: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQLiteStore) Create(ctx context.Context, kind RecordKind, data map[string]any) (string, error) {
	id := uuid.NewString()
	rec := stampRecord(kind, id, data)
	blob, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal directory record: %w", err)
	}
	row := directoryRow{ID: id, Kind: string(kind), Data: blob}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create directory record: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, kind RecordKind, id string) (map[string]any, error) {
	var row directoryRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND kind = ?", id, string(kind)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load directory record: %w", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return nil, fmt.Errorf("decode directory record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Update(ctx context.Context, kind RecordKind, id string, update map[string]any) error {
	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	for k, v := range update {
		rec[k] = v
	}
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal directory record: %w", err)
	}
	err = s.db.WithContext(ctx).
		Model(&directoryRow{}).
		Where("id = ? AND kind = ?", id, string(kind)).
		Update("data", blob).Error
	if err != nil {
		return fmt.Errorf("update directory record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Search(ctx context.Context, kind RecordKind, term string) ([]map[string]any, error) {
	var rows []directoryRow
	err := s.db.WithContext(ctx).
		Where("kind = ?", string(kind)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search directory: %w", err)
	}

	var out []map[string]any
	for _, row := range rows {
		var rec map[string]any
		if err := json.Unmarshal(row.Data, &rec); err != nil {
			return nil, fmt.Errorf("decode directory record: %w", err)
		}
		if matchesTerm(rec, term) {
			out = append(out, rec)
		}
	}
	return out, nil
}
