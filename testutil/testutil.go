// Package testutil provides shared helpers for hrflow tests: a
// scripted oracle, bounded test contexts and directory fixtures.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/hrflow/oracle"
	"github.com/BaSui01/hrflow/persistence"
)

// TestContext returns a context bounded to 30 seconds, cancelled on
// test cleanup.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ScriptedOracle replays a fixed sequence of replies and records the
// prompts it saw. After the script is exhausted the last entry repeats.
type ScriptedOracle struct {
	mu      sync.Mutex
	script  []ScriptEntry
	prompts []string
}

// ScriptEntry is one scripted oracle turn.
type ScriptEntry struct {
	Reply string
	Err   error
}

// NewScriptedOracle creates an oracle that replies with the given
// strings in order.
func NewScriptedOracle(replies ...string) *ScriptedOracle {
	s := &ScriptedOracle{}
	for _, r := range replies {
		s.script = append(s.script, ScriptEntry{Reply: r})
	}
	return s
}

// Script appends an entry to the script.
func (s *ScriptedOracle) Script(reply string, err error) *ScriptedOracle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, ScriptEntry{Reply: reply, Err: err})
	return s
}

// Complete implements oracle.Oracle.
func (s *ScriptedOracle) Complete(ctx context.Context, prompt string, opts *oracle.Options) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)

	if len(s.script) == 0 {
		return "", nil
	}
	idx := len(s.prompts) - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	entry := s.script[idx]
	return entry.Reply, entry.Err
}

// Prompts returns the prompts seen so far.
func (s *ScriptedOracle) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// CallCount returns how many completions were requested.
func (s *ScriptedOracle) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// SeedCandidate creates a candidate record and returns its id.
func SeedCandidate(t *testing.T, dir persistence.Directory, name, email string) string {
	t.Helper()
	id, err := dir.Create(context.Background(), persistence.KindCandidate, map[string]any{
		"name":   name,
		"email":  email,
		"skills": "Go, distributed systems",
	})
	if err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return id
}

// SeedEmployee creates an employee record and returns its id.
func SeedEmployee(t *testing.T, dir persistence.Directory, name, email string) string {
	t.Helper()
	id, err := dir.Create(context.Background(), persistence.KindEmployee, map[string]any{
		"name":       name,
		"email":      email,
		"department": "engineering",
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return id
}
