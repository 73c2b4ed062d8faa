package routing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Interaction is one routed request, recorded for analytics.
type Interaction struct {
	ID        string             `json:"id"`
	Request   string             `json:"request"`
	Handler   string             `json:"handler"`
	Composed  bool               `json:"composed"`
	Scores    map[string]float64 `json:"scores"`
	UserID    string             `json:"user_id,omitempty"`
	SessionID string             `json:"session_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// InteractionLog records routing decisions. Logging is best effort: the
// router swallows errors from it and never lets them block a response.
type InteractionLog interface {
	LogInteraction(ctx context.Context, rec *Interaction) error
}

// MemoryInteractionLog keeps interactions in memory, for development and
// tests.
type MemoryInteractionLog struct {
	mu      sync.RWMutex
	records []*Interaction
}

// NewMemoryInteractionLog creates an empty in-memory log.
func NewMemoryInteractionLog() *MemoryInteractionLog {
	return &MemoryInteractionLog{}
}

func (l *MemoryInteractionLog) LogInteraction(ctx context.Context, rec *Interaction) error {
	stored := *rec
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, &stored)
	return nil
}

// Recent returns up to n interactions, newest last.
func (l *MemoryInteractionLog) Recent(n int) []*Interaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}
	out := make([]*Interaction, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}
