package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_LinearChainVisitsEveryNode(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("a linear chain executes every node exactly once, in order", prop.ForAll(
		func(length int) bool {
			var trace []string
			b := NewGraphBuilder("chain")
			names := make([]string, length)
			for i := 0; i < length; i++ {
				name := fmt.Sprintf("step_%d", i)
				names[i] = name
				b.AddNode(name, func(ctx context.Context, s *State) error {
					trace = append(trace, name)
					return nil
				})
			}
			for i := 0; i < length-1; i++ {
				b.AddEdge(names[i], names[i+1])
			}
			b.AddEdge(names[length-1], Terminal)
			b.SetEntry(names[0])

			g, err := b.Build()
			if err != nil {
				t.Logf("Build failed: %v", err)
				return false
			}

			engine, err := NewEngine(nil, []*Graph{g})
			if err != nil {
				t.Logf("NewEngine failed: %v", err)
				return false
			}
			state, err := engine.Execute(context.Background(), "chain", nil, "t")
			if err != nil {
				t.Logf("Execute failed: %v", err)
				return false
			}

			if state.Status != StatusCompleted || state.CompletedAt == nil {
				t.Logf("unexpected final state: %s", state.Status)
				return false
			}
			if len(trace) != length {
				t.Logf("visited %d of %d nodes", len(trace), length)
				return false
			}
			for i, name := range names {
				if trace[i] != name {
					t.Logf("node %d out of order: %s", i, trace[i])
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

func TestProperty_FailedIffAnyNodeFailed(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("final status is failed exactly when some node failed, and every failure is recorded", prop.ForAll(
		func(failures []bool) bool {
			if len(failures) == 0 {
				return true
			}

			anyFailed := false
			b := NewGraphBuilder("mask")
			names := make([]string, len(failures))
			for i, fail := range failures {
				name := fmt.Sprintf("step_%d", i)
				names[i] = name
				if fail {
					anyFailed = true
					b.AddNode(name, func(ctx context.Context, s *State) error {
						return errors.New("deliberate failure")
					})
				} else {
					b.AddNode(name, func(ctx context.Context, s *State) error {
						return nil
					})
				}
			}
			for i := 0; i < len(names)-1; i++ {
				b.AddEdge(names[i], names[i+1])
			}
			b.AddEdge(names[len(names)-1], Terminal)
			b.SetEntry(names[0])

			g, err := b.Build()
			if err != nil {
				t.Logf("Build failed: %v", err)
				return false
			}
			engine, err := NewEngine(nil, []*Graph{g})
			if err != nil {
				t.Logf("NewEngine failed: %v", err)
				return false
			}
			state, err := engine.Execute(context.Background(), "mask", nil, "t")
			if err != nil {
				t.Logf("Execute failed: %v", err)
				return false
			}

			if anyFailed {
				if state.Status != StatusFailed {
					t.Logf("expected failed, got %s", state.Status)
					return false
				}
			} else if state.Status != StatusCompleted {
				t.Logf("expected completed, got %s", state.Status)
				return false
			}

			recorded := make(map[string]bool, len(state.Errors))
			for _, e := range state.Errors {
				recorded[e] = true
			}
			for i, fail := range failures {
				want := fmt.Sprintf("step_%d: deliberate failure", i)
				if fail != recorded[want] {
					t.Logf("failure record mismatch for node %d", i)
					return false
				}
			}
			return len(state.Errors) == countTrue(failures)
		},
		gen.SliceOfN(6, gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestProperty_ConditionalBranchExclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("exactly the chosen branch executes and the decision is recorded", prop.ForAll(
		func(proceed bool) bool {
			var proceedRan, rejectRan bool
			g, err := NewGraphBuilder("branch").
				AddNode("decide", func(ctx context.Context, s *State) error { return nil }).
				AddNode("go_on", func(ctx context.Context, s *State) error {
					proceedRan = true
					return nil
				}).
				AddNode("turn_back", func(ctx context.Context, s *State) error {
					rejectRan = true
					return nil
				}).
				AddConditionalEdge("decide", func(*State) string {
					if proceed {
						return "proceed"
					}
					return "reject"
				}, map[string]string{
					"proceed": "go_on",
					"reject":  "turn_back",
				}).
				AddEdge("go_on", Terminal).
				AddEdge("turn_back", Terminal).
				SetEntry("decide").
				Build()
			if err != nil {
				t.Logf("Build failed: %v", err)
				return false
			}

			engine, err := NewEngine(nil, []*Graph{g})
			if err != nil {
				t.Logf("NewEngine failed: %v", err)
				return false
			}
			state, err := engine.Execute(context.Background(), "branch", nil, "t")
			if err != nil {
				t.Logf("Execute failed: %v", err)
				return false
			}

			if proceed != proceedRan || proceed == rejectRan {
				t.Logf("branch mix-up: proceed=%v proceedRan=%v rejectRan=%v", proceed, proceedRan, rejectRan)
				return false
			}
			want := "reject"
			if proceed {
				want = "proceed"
			}
			return state.Decisions["decide"] == want
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
