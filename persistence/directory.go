package persistence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned by Directory lookups for unknown ids.
var ErrRecordNotFound = errors.New("record not found")

// RecordKind partitions the HR directory.
type RecordKind string

const (
	KindEmployee   RecordKind = "employee"
	KindCandidate  RecordKind = "candidate"
	KindJob        RecordKind = "job"
	KindInterview  RecordKind = "interview"
	KindReview     RecordKind = "performance_review"
	KindOnboarding RecordKind = "onboarding"
)

// defaultStatus is the status a freshly created record gets when the
// caller did not set one.
var defaultStatus = map[RecordKind]string{
	KindEmployee:   "active",
	KindCandidate:  "new",
	KindJob:        "active",
	KindInterview:  "scheduled",
	KindReview:     "scheduled",
	KindOnboarding: "in_progress",
}

// Directory stores the HR records workflow nodes and handlers operate
// on. Records are schemaless maps; Create fills in id, created_at and a
// kind-specific default status.
type Directory interface {
	Create(ctx context.Context, kind RecordKind, data map[string]any) (string, error)
	Get(ctx context.Context, kind RecordKind, id string) (map[string]any, error)
	Update(ctx context.Context, kind RecordKind, id string, update map[string]any) error
	Search(ctx context.Context, kind RecordKind, term string) ([]map[string]any, error)
}

// stampRecord returns a copy of data with identity and bookkeeping
// fields set.
func stampRecord(kind RecordKind, id string, data map[string]any) map[string]any {
	rec := make(map[string]any, len(data)+3)
	for k, v := range data {
		rec[k] = v
	}
	rec["id"] = id
	rec["created_at"] = time.Now().UTC().Format(time.RFC3339)
	if _, ok := rec["status"]; !ok {
		rec["status"] = defaultStatus[kind]
	}
	return rec
}

// matchesTerm reports whether any string field contains the lower-cased
// search term.
func matchesTerm(rec map[string]any, term string) bool {
	lower := strings.ToLower(term)
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), lower) {
			return true
		}
	}
	return false
}

// MemoryDirectory is the in-memory Directory, for development and tests.
type MemoryDirectory struct {
	mu      sync.RWMutex
	records map[RecordKind]map[string]map[string]any
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{records: make(map[RecordKind]map[string]map[string]any)}
}

func (d *MemoryDirectory) Create(ctx context.Context, kind RecordKind, data map[string]any) (string, error) {
	id := uuid.NewString()
	rec := stampRecord(kind, id, data)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.records[kind] == nil {
		d.records[kind] = make(map[string]map[string]any)
	}
	d.records[kind][id] = rec
	return id, nil
}

func (d *MemoryDirectory) Get(ctx context.Context, kind RecordKind, id string) (map[string]any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.records[kind][id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}

func (d *MemoryDirectory) Update(ctx context.Context, kind RecordKind, id string, update map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.records[kind][id]
	if !ok {
		return ErrRecordNotFound
	}
	for k, v := range update {
		rec[k] = v
	}
	rec["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return nil
}

func (d *MemoryDirectory) Search(ctx context.Context, kind RecordKind, term string) ([]map[string]any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []map[string]any
	for _, rec := range d.records[kind] {
		if matchesTerm(rec, term) {
			cp := make(map[string]any, len(rec))
			for k, v := range rec {
				cp[k] = v
			}
			out = append(out, cp)
		}
	}
	return out, nil
}
